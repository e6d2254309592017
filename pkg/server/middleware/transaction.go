package middleware

import (
	"net/http"

	"github.com/Avi18971911/Herald/pkg/agent"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(status int) {
	if !sr.wroteHeader {
		sr.status = status
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

// Transaction wraps every request in a transaction named "<METHOD> <route>"
// and ends it with the response status. A panicking handler ends the
// transaction with 500 before the panic continues.
func Transaction(starter agent.TransactionStarter, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, txn := starter.StartTransaction(r.Context(), r.Method+" "+routeName(r))
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if p := recover(); p != nil {
					logger.Error("Handler panicked", zap.String("transaction", txn.Name), zap.Any("panic", p))
					txn.End(http.StatusInternalServerError)
					panic(p)
				}
				txn.End(recorder.status)
			}()
			next.ServeHTTP(recorder, r.WithContext(ctx))
		})
	}
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}
