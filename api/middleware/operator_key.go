package middleware

import (
	"net/http"
	"strings"

	"github.com/forkful/forkful-backend/api/responses"
	"github.com/forkful/forkful-backend/pkg/config"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/forkful/forkful-backend/pkg/security"
)

const operatorKeyHeader = "X-Operator-Key"

// OperatorKey gates manual operator endpoints behind the shared key.
func OperatorKey(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(operatorKeyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator key required"))
				return
			}
			if err := security.VerifyOperatorKey(cfg.OperatorKeyHash, key); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "operator key rejected"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
