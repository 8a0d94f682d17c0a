// Package httpserver provides the shared HTTP server shell of the ATP
// service binaries.
//
// Every long-running component (directory, supplier, gateway) hosts its
// routes inside a BaseServer, which adds the operational surface the
// routes themselves should not care about:
//
//   - request id, real ip and panic-recovery middleware
//   - structured request logging
//   - liveness (/livez) and readiness (/readyz) endpoints
//   - drain control (/drain, /undrain) for load-balancer rotation
//   - optional pprof under /debug
//   - graceful shutdown with a bounded wait for in-flight requests
//
// Components implement RouteRegistrar (or wrap a closure in RegistrarFunc
// when they need route-group middleware such as CORS) and hand themselves
// to New.
package httpserver
