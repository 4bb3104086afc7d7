// Package server provides the admin HTTP API of "radsweep serve".
//
// # Routes
//
//   - GET  /healthz: readiness; pings the accounting store (503 when unreachable)
//   - GET  /livez: liveness
//   - GET  /version: build information
//   - GET  /jobs: registered jobs with parameters, schedule, next and last run
//   - GET  /jobs/{name}: a single job
//   - POST /jobs/{name}/run: run a job now; query parameters are job parameters
//   - GET  /runs?limit=N&job=NAME: recent run outcomes, newest first
//   - GET  /metrics: Prometheus metrics (path configurable)
//
// A manual run answers with the run outcome. Failed runs use the status
// that matches their error kind: 400 invalid_argument, 404 unknown_job,
// 503 store_unavailable, 504 timeout and 500 internal.
//
//	curl -X POST 'http://127.0.0.1:9812/jobs/delete_unverified_users/run?age_threshold_days=3&dry_run=true'
//
// Requests carry an X-Request-ID header, generated when the client sends none.
package server
