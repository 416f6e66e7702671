// Package routes wires the controllers into a gin engine.
//
// Layout:
//   - api.go: the /v1 API and health probes
//   - web.go: banner and route overview
//   - middleware.go: recovery, request id, access log, rate limit
package routes
