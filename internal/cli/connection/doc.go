// Package connection provides the HTTP transport for the bil CLI.
//
// This package talks to the bil API:
//
//   - http.go: JSON and multipart client with request ids, rate limiting
//     and Prometheus instrumentation
//   - baseurl.go: API base URL resolution
//   - errors.go: non-2xx response decoding
//
// HTTPClient satisfies the transport the session service depends on.
package connection
