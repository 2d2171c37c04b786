package sink

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ginSink struct {
	c *gin.Context
}

// Gin adapts a gin context. The body is encoded before anything is written,
// and the handler chain is aborted afterwards so later handlers cannot write
// a second response.
func Gin(c *gin.Context) Sink {
	return &ginSink{c: c}
}

func (s *ginSink) Send(status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		s.c.Abort()
		s.c.Data(http.StatusInternalServerError, "application/json", fallbackBody)
		return fmt.Errorf("sink: encode body: %w", err)
	}

	before := len(s.c.Errors)

	s.c.Abort()
	s.c.Data(status, "application/json", append(b, '\n'))

	if len(s.c.Errors) > before {
		return fmt.Errorf("sink: write body: %w", s.c.Errors.Last())
	}

	return nil
}
