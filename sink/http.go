package sink

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// fallbackBody is written when a body cannot be encoded, so the response is
// still a single, well-formed JSON error.
var fallbackBody = []byte(`{"type":"InternalServerError","message":"Internal Server Error","code":500}` + "\n")

type writerSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Writer adapts an http.ResponseWriter. Bodies are encoded as JSON before the
// status is written. When r is a HEAD request only the headers are written.
func Writer(w http.ResponseWriter, r *http.Request) Sink {
	return &writerSink{w: w, r: r}
}

func (s *writerSink) Send(status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		_ = s.write(http.StatusInternalServerError, fallbackBody)
		return fmt.Errorf("sink: encode body: %w", err)
	}

	return s.write(status, append(b, '\n'))
}

func (s *writerSink) write(status int, b []byte) error {
	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(status)

	if s.r != nil && s.r.Method == http.MethodHead {
		return nil
	}

	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("sink: write body: %w", err)
	}

	return nil
}
