package opsgate

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/opsgate/opsgate/internal/enforce"
)

// Middleware returns an http.Handler that runs each request through the
// oversight pipeline before passing to the next handler.
// Denied requests receive a 403 with a JSON body.
func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operation, octx := operationFromRequest(r)

		decision, err := c.Check(r.Context(), operation, nil, octx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := enforce.Check(decision); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{
				"blocked":     true,
				"error":       err.Error(),
				"decision_id": decision.ID,
				"risk_level":  decision.Impact.RiskLevel,
				"guidance":    decision.Guidance,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// operationFromRequest maps an HTTP request to an operation and context.
func operationFromRequest(r *http.Request) (string, Context) {
	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		path = "root"
	}
	operation := strings.ToLower(r.Method) + "_" + strings.ReplaceAll(path, "/", "_")

	return operation, Context{
		"purpose":           "http: " + r.Method + " " + r.URL.Path,
		"responsible_party": r.RemoteAddr,
	}
}
