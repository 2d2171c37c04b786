// Package respond resolves a pending computation into exactly one HTTP response.
//
// A Responder awaits the computation, classifies its outcome and writes a single
// status and body to the sink:
//
//   - a present value is written as-is with the success status (default 200)
//   - a nil value is written as the NotFound error (404)
//   - a canonical error (see package error) is logged through its own Log hook and
//     written with its status
//   - an error implementing error.ResponseObjecter writes its own envelope
//   - any other error goes through the translator chain, then falls back to
//     UnknownError (500)
//   - a failure reason that is not an error is logged unconditionally and written
//     as InternalServerError (500)
//
// Configuration is a Config value passed to New. The package-level functions
// operate on a default Responder; its setters must only be called during
// start-up, before requests are served.
package respond
