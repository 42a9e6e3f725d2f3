package client

import (
	"encoding/json"
	"strings"
)

// GraphQLError is one entry of a GraphQL error payload.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResult is the decoded envelope of a GraphQL response.
type GraphQLResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors"`
}

// GraphQL decodes the response body as a GraphQL envelope. A non-JSON
// body yields a nil result and no error: probes treat it as "no
// detection", never as a fault.
func (r *Response) GraphQL() *GraphQLResult {
	var result GraphQLResult
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil
	}
	return &result
}

// HasData reports whether the named root field is present and non-null.
func (g *GraphQLResult) HasData(field string) bool {
	if g == nil {
		return false
	}
	raw, ok := g.Data[field]
	if !ok {
		return false
	}
	return len(raw) > 0 && string(raw) != "null"
}

// Object decodes the named root field into a generic map, or nil when the
// field is absent, null, or not an object.
func (g *GraphQLResult) Object(field string) map[string]any {
	if !g.HasData(field) {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(g.Data[field], &obj); err != nil {
		return nil
	}
	return obj
}

// ErrorMessages returns every error message, lowercased for matching.
func (g *GraphQLResult) ErrorMessages() []string {
	if g == nil {
		return nil
	}
	msgs := make([]string, 0, len(g.Errors))
	for _, e := range g.Errors {
		msgs = append(msgs, strings.ToLower(e.Message))
	}
	return msgs
}
