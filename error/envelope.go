package error

import (
	"encoding/json"

	"github.com/next-trace/scg-respond/contract"
)

// Envelope is the current wire shape of an error response:
//
//	{"type": "...", "message": "...", "code": 400, "data": ...}
//
// "data" is omitted when there is no payload.
type Envelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
}

// LegacyEnvelope is the older wire shape:
//
//	{"type": "...", "data": ["message", detail], "code": 400}
type LegacyEnvelope struct {
	Type string `json:"type"`
	Data []any  `json:"data"`
	Code int    `json:"code"`
}

// ResponseObjecter is implemented by failures that know their own response.
// The resolver uses it before consulting any translator.
type ResponseObjecter interface {
	ResponseObject() *Envelope
}

// EnvelopeOf builds the current-shape envelope of a canonical error.
func EnvelopeOf(e contract.Error) *Envelope {
	return &Envelope{
		Type:    e.TypeTag(),
		Message: e.Message(),
		Code:    StatusOr500(e.HTTPStatus()),
		Data:    e.Payload(),
	}
}

// Status returns the HTTP status the envelope is written with.
func (e *Envelope) Status() int { return StatusOr500(e.Code) }

// Legacy converts e to the legacy shape. The message is always the first data
// element; the detail follows only when present.
func (e *Envelope) Legacy() LegacyEnvelope {
	data := []any{e.Message}
	if e.Data != nil {
		data = append(data, e.Data)
	}

	return LegacyEnvelope{Type: e.Type, Data: data, Code: e.Status()}
}

// MarshalJSON pins the field order and normalizes a missing code.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	type wire Envelope

	w := wire(*e)
	w.Code = e.Status()

	return json.Marshal(w)
}
