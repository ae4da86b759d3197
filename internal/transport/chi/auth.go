package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader is an alternative to the Authorization header for clients
// that cannot set a bearer scheme.
const APIKeyHeader = "X-API-Key"

// exemptPaths bypass authentication so probes and scrapers need no key.
var exemptPaths = map[string]struct{}{
	"/":        {},
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware checks the API key of every non-exempt request. The
// key is read from "Authorization: Bearer <key>" (scheme is
// case-insensitive) or from X-API-Key. Empty apiKeys disables auth.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			validKeys = append(validKeys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key, problem := apiKeyFrom(r)
			if problem == "" && !validKey(validKeys, []byte(key)) {
				problem = "invalid api key"
			}
			if problem != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="wsdlab"`)
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, problem)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// apiKeyFrom extracts the presented key. problem is non-empty when the
// request carries no usable credential.
func apiKeyFrom(r *http.Request) (key, problem string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", "authorization header must use Bearer scheme"
		}
		if token = strings.TrimSpace(token); token == "" {
			return "", "empty bearer token"
		}
		return token, ""
	}
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, ""
	}
	return "", "missing api key"
}

func validKey(keys [][]byte, token []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, token)
	}
	return found == 1
}
