package probe

import "strings"

// Signature vocabularies shared by the interpretation logic. Keeping the
// indicator strings in one table per weakness class stops each probe from
// growing its own drifting copy.

// SQLErrorSignatures are database engine fingerprints that betray an
// unparameterized query behind the resolver.
var SQLErrorSignatures = []string{
	"syntax error",
	"mysql",
	"postgresql",
	"ora-",
	"microsoft",
	"driver",
	"odbc",
	"jdbc",
	"sql server",
	"pg_",
}

// SensitiveErrorSignatures are terms that should never surface in a
// production error message.
var SensitiveErrorSignatures = []string{
	"database",
	"sql",
	"connection",
	"server",
	"internal",
	"stack trace",
	"file path",
	"password",
	"secret",
	"token",
}

// SSRFErrorSignatures indicate the backend attempted to reach an
// attacker-supplied address.
var SSRFErrorSignatures = []string{
	"connection refused",
	"timeout",
	"unreachable",
	"internal server",
	"network error",
}

// AuthRejectionSignatures mark an error message as an authentication
// rejection, i.e. the control working as intended.
var AuthRejectionSignatures = []string{
	"unauthorized",
	"authentication",
	"token",
}

// RateLimitSignatures mark a 403 body as rate limiting rather than a
// plain permission denial.
var RateLimitSignatures = []string{
	"rate",
	"limit",
}

// VersionedServerSignatures are Server header values that expose a
// framework or a known-dated release line.
var VersionedServerSignatures = []string{
	"nginx/1.14",
	"apache/2.2",
	"express",
}

// MatchSignature reports the first vocabulary entry found in text,
// matching case-insensitively.
func MatchSignature(text string, vocabulary []string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, sig := range vocabulary {
		if strings.Contains(lowered, sig) {
			return sig, true
		}
	}
	return "", false
}

// MatchAnySignature runs MatchSignature over several texts.
func MatchAnySignature(texts []string, vocabulary []string) (string, bool) {
	for _, text := range texts {
		if sig, ok := MatchSignature(text, vocabulary); ok {
			return sig, true
		}
	}
	return "", false
}
