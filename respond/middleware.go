package respond

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/next-trace/scg-respond/sink"
)

type ctxKey struct{}

// ginKey is the gin context key holding the bound Func.
const ginKey = "scg-respond.func"

// Middleware binds a respond Func to every request. Handlers retrieve it with
// FromContext. The next handler is always invoked.
func (r *Responder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fn := r.bind(req.Context(), sink.Writer(w, req))
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), ctxKey{}, fn)))
	})
}

// GinMiddleware is Middleware for gin. Handlers retrieve the Func with FromGin.
func (r *Responder) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ginKey, r.bind(c.Request.Context(), sink.Gin(c)))
		c.Next()
	}
}

// Middleware binds the default Responder, see Responder.Middleware.
func Middleware(next http.Handler) http.Handler { return std.Middleware(next) }

// FromContext returns the Func installed by Middleware.
func FromContext(ctx context.Context) (Func, bool) {
	fn, ok := ctx.Value(ctxKey{}).(Func)
	return fn, ok
}

// FromGin returns the Func installed by GinMiddleware.
func FromGin(c *gin.Context) (Func, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return nil, false
	}

	fn, ok := v.(Func)

	return fn, ok
}
