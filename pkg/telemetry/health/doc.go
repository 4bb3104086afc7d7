// Package health provides liveness, readiness and version endpoints.
//
// Components register checks by name; readiness runs them concurrently with
// a per-check timeout:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("store", store.Ping)
//	mux.HandleFunc("GET /healthz", checker.ReadinessHandler())
//	mux.HandleFunc("GET /livez", checker.LivenessHandler())
package health
