// Package error provides the canonical application errors reported by scg-respond.
//
// It exposes a single concrete type Error that implements contract.Error and integrates
// with the standard library's errors helpers (Is/As) via Unwrap. Error kinds are
// described by a Kind value; the predefined kinds cover the usual HTTP failure classes
// and NewKind builds project-specific ones.
//
// Key characteristics:
//   - Stable, machine-facing TypeTag per kind
//   - HTTPStatus for transport adapters, overridable per instance
//   - CaptureDiagnostics controls stack capture and error-level logging
//   - Optional structured Payload, defensively cloned on read/write
//   - Optional underlying cause preserved for errors.Is / errors.As
//
// Two wire shapes are available: Envelope (current) and LegacyEnvelope. Ensure and Wrap
// adapt arbitrary errors.
package error
