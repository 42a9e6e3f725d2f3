package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlHandler routes each GraphQL request to a response function by
// inspecting the query document.
func graphqlHandler(respond func(req graphqlRequest) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, respond(req))
	}
}

func newEnv(srv *httptest.Server) (*probe.ExecContext, *client.Client) {
	tc, err := client.New(srv.URL)
	if err != nil {
		panic(err)
	}
	env := &probe.ExecContext{
		Target:      srv.URL,
		GraphQLPath: "/graphql",
		Timeout:     5 * time.Second,
	}
	return env, tc
}

func titles(findings []finding.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Title
	}
	return out
}

func hasTitle(findings []finding.Finding, title string) bool {
	for _, f := range findings {
		if f.Title == title {
			return true
		}
	}
	return false
}

func TestDefaultRegistryCoversAllCategories(t *testing.T) {
	reg := DefaultRegistry()
	cats := reg.Categories()
	if len(cats) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(cats))
	}
	if cats[0] != finding.CategoryAccessControl || cats[9] != finding.CategorySSRF {
		t.Errorf("unexpected category order: %v", cats)
	}
	if reg.Len() != 10 {
		t.Errorf("expected 10 probes, got %d", reg.Len())
	}
}

func TestAccessControlDetectsVerticalEscalation(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "moderateReview") {
			return `{"data":{"moderateReview":{"id":"770e8400","moderationStatus":"APPROVED"}}}`
		}
		return `{"data":{}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (AccessControlProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !hasTitle(found, "Vertical Privilege Escalation") {
		t.Errorf("expected escalation finding, got %v", titles(found))
	}
	for _, f := range found {
		if f.Title == "Vertical Privilege Escalation" && f.Severity != finding.SeverityCritical {
			t.Errorf("escalation severity = %s, want CRITICAL", f.Severity)
		}
	}
}

func TestAccessControlSilentOnHardenedTarget(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		return `{"errors":[{"message":"unauthorized"}]}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (AccessControlProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("hardened target produced findings: %v", titles(found))
	}
}

func TestInjectionDetectsSQLErrorLeak(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if id, ok := req.Variables["id"].(string); ok && strings.Contains(id, "'") {
			return `{"errors":[{"message":"PostgreSQL: syntax error at or near \"'\""}]}`
		}
		return `{"data":{}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (InjectionProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "SQL Injection Vulnerability") {
		t.Errorf("expected SQL injection finding, got %v", titles(found))
	}
}

func TestInjectionDetectsStoredXSS(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "createReview") {
			input, _ := req.Variables["input"].(map[string]any)
			text, _ := input["text"].(string)
			body, _ := json.Marshal(map[string]any{
				"data": map[string]any{
					"createReview": map[string]any{"id": "r1", "rating": 5, "text": text},
				},
			})
			return string(body)
		}
		return `{"data":{}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (InjectionProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	stored := 0
	for _, f := range found {
		if f.Title == "Stored XSS Vulnerability" {
			stored++
		}
	}
	if stored != len(xssPayloads) {
		t.Errorf("expected %d stored XSS findings, got %d (%v)", len(xssPayloads), stored, titles(found))
	}
}

func TestMisconfigReportsIntrospectionBothWays(t *testing.T) {
	exposed := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "__schema") {
			return `{"data":{"__schema":{"queryType":{"name":"Query"},"types":[{"name":"Query"},{"name":"User"}]}}}`
		}
		return `{"errors":[{"message":"Cannot query field"}]}`
	}))
	defer exposed.Close()

	env, tc := newEnv(exposed)
	found, err := (MisconfigProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "GraphQL Introspection Enabled") {
		t.Errorf("expected introspection finding, got %v", titles(found))
	}

	locked := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		return `{"errors":[{"message":"introspection is disabled"}]}`
	}))
	defer locked.Close()

	env, tc = newEnv(locked)
	found, err = (MisconfigProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "GraphQL Introspection Disabled") {
		t.Errorf("expected INFO confirmation, got %v", titles(found))
	}
	for _, f := range found {
		if f.Title == "GraphQL Introspection Disabled" && f.Severity != finding.SeverityInfo {
			t.Errorf("confirmation severity = %s, want INFO", f.Severity)
		}
	}
}

func TestMisconfigDetectsDefaultCredentials(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "login") {
			user, _ := req.Variables["username"].(string)
			pass, _ := req.Variables["password"].(string)
			if user == "admin" && pass == "admin" {
				return `{"data":{"login":{"token":"tok","user":{"id":"1","roles":["ADMIN"]}}}}`
			}
			return `{"errors":[{"message":"invalid credentials"}]}`
		}
		return `{"errors":[{"message":"Cannot query field"}]}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (MisconfigProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "Default Credentials") {
		t.Errorf("expected default credentials finding, got %v", titles(found))
	}
}

func TestComponentsDetectsVersionedServerHeader(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx/1.14.0 (Ubuntu)")
		if r.URL.Path == "/debug" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (ComponentsProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "Server Version Disclosure") {
		t.Errorf("expected version disclosure, got %v", titles(found))
	}

	exposed := 0
	for _, f := range found {
		if f.Title == "Exposed Development Endpoint" {
			exposed++
		}
	}
	if exposed != 1 {
		t.Errorf("expected exactly /debug flagged, got %d exposed endpoint findings", exposed)
	}
}

func TestAuthFailureFlagsMissingLockout(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "login") {
			return `{"errors":[{"message":"invalid credentials"}]}`
		}
		if strings.Contains(req.Query, "createReview") {
			return `{"errors":[{"message":"authentication required"}]}`
		}
		return `{"data":{}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (AuthFailureProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "No Brute Force Protection") {
		t.Errorf("expected lockout finding, got %v", titles(found))
	}
	if !hasTitle(found, "Authentication Required") {
		t.Errorf("expected auth enforcement confirmation, got %v", titles(found))
	}
}

func TestIntegrityDetectsForgedTokenAcceptance(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "__typename") {
			return `{"data":{"__typename":"Query"}}`
		}
		return `{"errors":[{"message":"unknown"}]}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	// Any three-part token works; the probe replaces the signature.
	env.Token = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.c2ln"

	found, err := (IntegrityProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "JWT Signature Not Verified") {
		t.Errorf("expected signature finding, got %v", titles(found))
	}
}

func TestIntegrityDetectsRatingBypass(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "createReview") {
			input, _ := req.Variables["input"].(map[string]any)
			body, _ := json.Marshal(map[string]any{
				"data": map[string]any{
					"createReview": map[string]any{"id": "r1", "rating": input["rating"], "text": "x"},
				},
			})
			return string(body)
		}
		return `{"errors":[{"message":"unknown"}]}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (IntegrityProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "Data Validation Bypass") {
		t.Errorf("expected validation finding, got %v", titles(found))
	}
}

func TestLoggingDetectsRateLimiting(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) > 5 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"__typename":"Query"}}`)
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (LoggingProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "Rate Limiting Detected") {
		t.Fatalf("expected rate limit confirmation, got %v", titles(found))
	}
	if found[0].Severity != finding.SeverityInfo {
		t.Errorf("severity = %s, want INFO", found[0].Severity)
	}
}

func TestLoggingFlagsMissingRateLimit(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		return `{"data":{"__typename":"Query"}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (LoggingProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "No Rate Limiting Detected") {
		t.Errorf("expected missing rate limit finding, got %v", titles(found))
	}
}

func TestSSRFDetectsFetchErrors(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "updateProfile") {
			return `{"errors":[{"message":"fetch failed: connection refused"}]}`
		}
		return `{"data":{}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (SSRFProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ssrf := 0
	for _, f := range found {
		if f.Title == "Server-Side Request Forgery (SSRF)" {
			ssrf++
			if f.Severity != finding.SeverityHigh {
				t.Errorf("SSRF severity = %s, want HIGH", f.Severity)
			}
		}
	}
	if ssrf != len(ssrfPayloads) {
		t.Errorf("expected %d SSRF findings, got %d", len(ssrfPayloads), ssrf)
	}
}

func TestInsecureDesignDetectsMissingLimits(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "createReview") {
			return `{"errors":[{"message":"authentication required"}]}`
		}
		// Deep and complex queries both come back with data.
		return `{"data":{"offers":{"edges":[]}}}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (InsecureDesignProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "No Query Depth Limiting") {
		t.Errorf("expected depth finding, got %v", titles(found))
	}
	if !hasTitle(found, "No Query Complexity Limiting") {
		t.Errorf("expected complexity finding, got %v", titles(found))
	}
	// Rejected creates must not look like a business logic flaw.
	if hasTitle(found, "Business Logic Flaw") || hasTitle(found, "Race Condition Vulnerability") {
		t.Errorf("rejected creates were miscounted: %v", titles(found))
	}
}

func TestInsecureDesignDetectsRaceCondition(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		if strings.Contains(req.Query, "createReview") {
			return `{"data":{"createReview":{"id":"r1","rating":4}}}`
		}
		return `{"errors":[{"message":"depth limit exceeded"}]}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	found, err := (InsecureDesignProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "Business Logic Flaw") {
		t.Errorf("expected duplicate review finding, got %v", titles(found))
	}
	if !hasTitle(found, "Race Condition Vulnerability") {
		t.Errorf("expected race finding, got %v", titles(found))
	}
}

func TestCryptoFlagsPlainHTTPAndWeakJWT(t *testing.T) {
	srv := httptest.NewServer(graphqlHandler(func(req graphqlRequest) string {
		return `{"errors":[{"message":"unknown operation"}]}`
	}))
	defer srv.Close()

	env, tc := newEnv(srv)
	// {"alg":"HS256"} header, arbitrary payload and signature.
	env.Token = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.c2ln"

	found, err := (CryptoProbe{}).Execute(context.Background(), env, tc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !hasTitle(found, "Unencrypted Communication") {
		t.Errorf("expected plain HTTP finding, got %v", titles(found))
	}
	if !hasTitle(found, "Weak JWT Algorithm") {
		t.Errorf("expected weak algorithm finding, got %v", titles(found))
	}
}
