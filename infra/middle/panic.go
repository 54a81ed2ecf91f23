package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/armagangokce/arpay-go/infra/logger"
	"github.com/armagangokce/arpay-go/infra/response"
)

// PanicRecovery converts panics into HTTP 500 responses
func PanicRecovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						zap.Any("panic", err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", r.Header.Get("X-Request-ID")),
						zap.ByteString("stack", debug.Stack()),
					)

					w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
					response.Error(w, http.StatusInternalServerError, "Internal server error", fmt.Errorf("an unexpected error occurred"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
