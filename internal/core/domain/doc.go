// Package domain defines the core domain models for bil.
//
// Domain models are pure value objects without any IO dependencies.
// This package contains:
//
//   - Project, PayGroup, Payment: the three-level resource hierarchy
//   - Currency codec: fixed-point conversion between persisted integer
//     amounts and decimal values (Precision = 10^8)
//   - Request payloads sent to the API (typed, never merged maps)
//   - Errors: Domain-specific error definitions
package domain
