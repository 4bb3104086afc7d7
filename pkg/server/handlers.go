package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"radsweep-hq/radsweep/pkg/jobs"
)

// JobInfo is one entry of GET /jobs.
type JobInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Params      []jobs.ParamSpec `json:"params"`
	Schedule    string           `json:"schedule,omitempty"`
	NextRun     *time.Time       `json:"next_run,omitempty"`
	LastRun     *jobs.Outcome    `json:"last_run,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) jobInfo(j jobs.Job) JobInfo {
	info := JobInfo{
		Name:        j.Name(),
		Description: j.Description(),
		Params:      j.Params(),
		LastRun:     s.opts.Runner.History().Last(j.Name()),
	}
	info.Schedule, info.NextRun = s.lookupNextRun(j.Name())
	return info
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	all := s.opts.Runner.Registry().All()
	infos := make([]JobInfo, 0, len(all))
	for _, j := range all {
		infos = append(infos, s.jobInfo(j))
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.opts.Runner.Registry().Get(r.PathValue("name"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, jobs.KindUnknownJob, err)
		return
	}
	writeJSON(w, http.StatusOK, s.jobInfo(j))
}

// handleRunJob runs a job synchronously. Query parameters become job
// parameters; a repeated parameter is an error.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.opts.Runner.Registry().Get(name); err != nil {
		writeError(w, r, http.StatusNotFound, jobs.KindUnknownJob, err)
		return
	}

	params := make(jobs.Params)
	for key, values := range r.URL.Query() {
		if len(values) != 1 {
			writeError(w, r, http.StatusBadRequest, jobs.KindInvalidArgument,
				errors.New("parameter "+key+" given more than once"))
			return
		}
		params[key] = values[0]
	}

	outcome := s.opts.Runner.RunWithTrigger(r.Context(), name, params, "http")
	if outcome.Succeeded() {
		writeJSON(w, http.StatusOK, outcome)
		return
	}

	writeJSON(w, statusForKind(outcome.ErrorKind), outcome)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, jobs.KindInvalidArgument,
				errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs := s.opts.Runner.History().Recent(0)
	if job := r.URL.Query().Get("job"); job != "" {
		filtered := runs[:0:0]
		for _, o := range runs {
			if o.Job == job {
				filtered = append(filtered, o)
			}
		}
		runs = filtered
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	writeJSON(w, http.StatusOK, runs)
}

// statusForKind maps a failed run to an HTTP status.
func statusForKind(kind jobs.ErrorKind) int {
	switch kind {
	case jobs.KindInvalidArgument:
		return http.StatusBadRequest
	case jobs.KindUnknownJob:
		return http.StatusNotFound
	case jobs.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case jobs.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, kind jobs.ErrorKind, err error) {
	writeJSON(w, code, ErrorResponse{
		Error:     err.Error(),
		Kind:      string(kind),
		RequestID: GetRequestID(r.Context()),
	})
}
