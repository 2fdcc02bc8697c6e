package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copyleftdev/nlsearch/internal/config"
	apperrors "github.com/copyleftdev/nlsearch/internal/errors"
	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/logging"
	"github.com/copyleftdev/nlsearch/internal/objective"
	"github.com/copyleftdev/nlsearch/internal/optimization"
)

const component = "server"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// JobStatus is the lifecycle state of a search job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// SearchRequest describes a search job. Missing fields take the configured
// defaults.
type SearchRequest struct {
	Method    string      `json:"method,omitempty"`
	Objective string      `json:"objective,omitempty"`
	Start     *[2]float64 `json:"start,omitempty"`
	// Bounds overrides the objective's domain as [[minX, maxX], [minY, maxY]].
	Bounds        *[2][2]float64 `json:"bounds,omitempty"`
	Tolerance     *float64       `json:"tolerance,omitempty"`
	StepFactor    *float64       `json:"step_factor,omitempty"`
	Steps         *int           `json:"steps,omitempty"`
	MaxIterations *int           `json:"max_iterations,omitempty"`
}

// SearchState represents the state of a search job.
// Every field is guarded by the owning Server's searchesMu.
type SearchState struct {
	ID          string
	Status      JobStatus
	Method      optimization.Method
	Objective   string
	Start       geometry.Point
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time
	// Result is set once the minimizer returns, including partial results of
	// failed runs.
	Result     *optimization.Result
	Err        error
	CancelFunc context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics makes every job's minimizer report to m.
func WithMetrics(m *optimization.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server implements the HTTP and JSON-RPC server for search jobs.
// At most cfg.Optimization.WorkerCount jobs run at once; the rest wait as
// pending. Finished jobs stay queryable until they age past
// cfg.Optimization.JobRetention or are evicted to keep the job table under
// cfg.Optimization.MaxJobs.
type Server struct {
	cfg     *config.Config
	logger  Logger
	metrics *optimization.Metrics
	now     func() time.Time

	workers chan struct{}
	wg      sync.WaitGroup

	searches   map[string]*SearchState
	searchesMu sync.RWMutex
	closed     bool
}

// NewServer creates a new server instance with the given config and logger
// The logger parameter accepts any type that implements the Logger interface
func NewServer(cfg *config.Config, logger Logger, opts ...Option) *Server {
	workers := cfg.Optimization.WorkerCount
	if workers < 1 {
		workers = 1
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		workers:  make(chan struct{}, workers),
		searches: make(map[string]*SearchState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/search/{id}", s.handleCancel)
		r.Get("/objectives", s.handleObjectives)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

func badRequest(err error, msg string) *apperrors.Error {
	return apperrors.Wrap(err, msg).WithComponent(component).WithStatus(http.StatusBadRequest)
}

// prepare resolves req against the configured defaults and builds the job's
// minimizer.
func (s *Server) prepare(id string, req SearchRequest) (optimization.Minimizer, objective.Objective, geometry.Point, error) {
	defaults := s.cfg.Search
	var none geometry.Point

	methodName := defaults.Method
	if req.Method != "" {
		methodName = req.Method
	}
	method, err := optimization.ParseMethod(methodName)
	if err != nil {
		return nil, nil, none, badRequest(err, "invalid method")
	}

	objectiveName := defaults.Objective
	if req.Objective != "" {
		objectiveName = req.Objective
	}
	obj, err := objective.Lookup(objectiveName)
	if err != nil {
		return nil, nil, none, badRequest(err, "invalid objective")
	}
	if b := req.Bounds; b != nil {
		d, err := geometry.NewDomain(geometry.Pt(b[0][0], b[1][0]), geometry.Pt(b[0][1], b[1][1]))
		if err != nil {
			return nil, nil, none, badRequest(err, "invalid bounds")
		}
		obj = objective.WithDomain(obj, d)
	}

	start := geometry.Pt(defaults.StartX, defaults.StartY)
	if req.Start != nil {
		start = geometry.Pt(req.Start[0], req.Start[1])
	}
	if !obj.Domain().Contains(start) {
		err := apperrors.Errorf("start point %s outside domain %s", start, obj.Domain())
		return nil, nil, none, err.WithComponent(component).WithStatus(http.StatusBadRequest)
	}

	settings := optimization.Settings{
		Tolerance:     defaults.Tolerance,
		StepFactor:    defaults.StepFactor,
		Steps:         defaults.Steps,
		MaxIterations: defaults.MaxIterations,
	}
	if req.Tolerance != nil {
		settings.Tolerance = *req.Tolerance
	}
	if req.StepFactor != nil {
		settings.StepFactor = *req.StepFactor
	}
	if req.Steps != nil {
		settings.Steps = *req.Steps
	}
	if req.MaxIterations != nil {
		settings.MaxIterations = *req.MaxIterations
	}

	jobLogger := logging.NewZapLogger(s.logger.WithFields(map[string]interface{}{"search_id": id}))
	minimizer, err := optimization.New(method, settings,
		optimization.WithLogger(jobLogger),
		optimization.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, nil, none, badRequest(err, "invalid settings")
	}
	return minimizer, obj, start, nil
}

// startSearch validates req and queues a new search job.
// Returns: {"search_id": "<uuid>", "status": "pending"}
func (s *Server) startSearch(req SearchRequest) (map[string]interface{}, error) {
	id := uuid.NewString()

	minimizer, obj, start, err := s.prepare(id, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := s.now()
	state := &SearchState{
		ID:          id,
		Status:      StatusPending,
		Method:      minimizer.Method(),
		Objective:   obj.Name(),
		Start:       start,
		StartTime:   now,
		LastUpdated: now,
		CancelFunc:  cancel,
	}

	s.searchesMu.Lock()
	if s.closed {
		s.searchesMu.Unlock()
		cancel()
		return nil, apperrors.New("server is shutting down").WithComponent(component).WithStatus(http.StatusServiceUnavailable)
	}
	if !s.prune(now) {
		s.searchesMu.Unlock()
		cancel()
		return nil, apperrors.Errorf("too many active searches (limit %d)", s.cfg.Optimization.MaxJobs).
			WithComponent(component).WithStatus(http.StatusServiceUnavailable)
	}
	s.searches[id] = state
	s.wg.Add(1)
	s.searchesMu.Unlock()

	s.logger.Info("Search queued", map[string]interface{}{
		"search_id": id,
		"method":    state.Method.String(),
		"objective": state.Objective,
		"start":     start.String(),
	})

	go s.runSearch(ctx, state, minimizer, obj)

	return map[string]interface{}{
		"search_id": id,
		"status":    StatusPending,
	}, nil
}

// prune drops finished jobs that ended more than JobRetention before now,
// then evicts the oldest finished jobs while the table is full. It reports
// whether there is room for another job. Callers hold searchesMu.
func (s *Server) prune(now time.Time) bool {
	retention := s.cfg.Optimization.JobRetention
	var finished []*SearchState
	for id, state := range s.searches {
		if !state.Status.terminal() || state.EndTime == nil {
			continue
		}
		if retention > 0 && now.Sub(*state.EndTime) > retention {
			delete(s.searches, id)
			continue
		}
		finished = append(finished, state)
	}

	limit := s.cfg.Optimization.MaxJobs
	if limit <= 0 || len(s.searches) < limit {
		return true
	}
	slices.SortFunc(finished, func(a, b *SearchState) int {
		return a.EndTime.Compare(*b.EndTime)
	})
	for _, state := range finished {
		if len(s.searches) < limit {
			break
		}
		delete(s.searches, state.ID)
	}
	return len(s.searches) < limit
}

// runSearch waits for a worker slot and runs the job's minimizer.
func (s *Server) runSearch(ctx context.Context, state *SearchState, minimizer optimization.Minimizer, obj objective.Objective) {
	defer s.wg.Done()
	defer state.CancelFunc()

	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		s.finishSearch(state, nil, ctx.Err())
		return
	}

	s.searchesMu.Lock()
	if state.Status == StatusPending {
		state.Status = StatusRunning
		state.LastUpdated = s.now()
	}
	start := state.Start
	s.searchesMu.Unlock()

	runCtx := ctx
	if timeout := s.cfg.Search.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := minimizer.Minimize(runCtx, obj, start)
	s.finishSearch(state, result, err)
}

func (s *Server) finishSearch(state *SearchState, result *optimization.Result, err error) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	now := s.now()
	state.Result = result
	state.LastUpdated = now
	if state.Status == StatusCancelled {
		return
	}
	state.EndTime = &now

	switch {
	case err == nil:
		state.Status = StatusCompleted
		s.logger.Info("Search completed", map[string]interface{}{
			"search_id":  state.ID,
			"minimum":    result.Minimum.String(),
			"iterations": result.Iterations,
		})
	case apperrors.Is(err, context.Canceled):
		state.Status = StatusCancelled
	default:
		state.Status = StatusFailed
		state.Err = err
		s.logger.Error("Search failed", map[string]interface{}{
			"search_id": state.ID,
			"error":     err.Error(),
		})
	}
}

func notFound(id string) *apperrors.Error {
	return apperrors.Errorf("search %q not found", id).WithComponent(component).WithStatus(http.StatusNotFound)
}

func pair(x, y float64) [2]float64 { return [2]float64{x, y} }

// searchStatus returns the current status and result of a search job.
func (s *Server) searchStatus(id string) (map[string]interface{}, error) {
	s.searchesMu.RLock()
	defer s.searchesMu.RUnlock()

	state, exists := s.searches[id]
	if !exists {
		return nil, notFound(id)
	}

	response := map[string]interface{}{
		"search_id":   state.ID,
		"status":      state.Status,
		"method":      state.Method,
		"objective":   state.Objective,
		"start":       pair(state.Start.X, state.Start.Y),
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Err != nil {
		response["error"] = state.Err.Error()
	}
	if res := state.Result; res != nil {
		response["result"] = map[string]interface{}{
			"minimum":              pair(res.Minimum.X, res.Minimum.Y),
			"value":                res.Value,
			"gradient":             pair(res.Gradient.X, res.Gradient.Y),
			"iterations":           res.Iterations,
			"evaluations":          res.Evaluations,
			"gradient_evaluations": res.GradientEvaluations,
			"converged":            res.Converged,
			"history_length":       len(res.History),
			"elapsed_ms":           float64(res.Elapsed.Microseconds()) / 1000.0,
		}
	}
	return response, nil
}

// cancelSearch cancels a pending or running search job.
func (s *Server) cancelSearch(id string) error {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	state, exists := s.searches[id]
	if !exists {
		return notFound(id)
	}
	if state.Status.terminal() {
		return apperrors.Errorf("cannot cancel search with status: %s", state.Status).
			WithComponent(component).WithStatus(http.StatusConflict)
	}

	state.CancelFunc()
	now := s.now()
	state.Status = StatusCancelled
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Search cancelled", map[string]interface{}{
		"search_id": id,
	})
	return nil
}

// objectiveList describes every registered objective and its default domain.
func objectiveList() []map[string]interface{} {
	names := objective.Names()
	list := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		obj, err := objective.Lookup(name)
		if err != nil {
			continue
		}
		d := obj.Domain()
		list = append(list, map[string]interface{}{
			"name": name,
			"domain": map[string]interface{}{
				"min": pair(d.Min.X, d.Min.Y),
				"max": pair(d.Max.X, d.Max.Y),
			},
		})
	}
	return list
}

// Close cancels every job and waits for their goroutines to return.
func (s *Server) Close() error {
	s.searchesMu.Lock()
	s.closed = true
	for _, state := range s.searches {
		state.CancelFunc()
	}
	s.searchesMu.Unlock()

	s.wg.Wait()
	return nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      interface{}       `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, codeParseError, "Parse error", nil)
		return
	}

	if request.JSONRPC != "2.0" {
		s.respondWithError(w, codeInvalidRequest, "Invalid Request", request.ID)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "search.start":
		var req SearchRequest
		if len(request.Params) > 0 {
			if err := json.Unmarshal(request.Params[0], &req); err != nil {
				s.respondWithError(w, codeInvalidParams, "Invalid params", request.ID)
				return
			}
		}
		result, err = s.startSearch(req)
	case "search.status", "search.cancel":
		id, ok := searchIDParam(request.Params)
		if !ok {
			s.respondWithError(w, codeInvalidParams, "search_id is required", request.ID)
			return
		}
		if request.Method == "search.status" {
			result, err = s.searchStatus(id)
		} else if err = s.cancelSearch(id); err == nil {
			result = map[string]interface{}{"search_id": id, "status": StatusCancelled}
		}
	case "objective.list":
		result = objectiveList()
	default:
		s.respondWithError(w, codeMethodNotFound, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := codeServerError
		if apperrors.StatusOf(err) == http.StatusBadRequest {
			code = codeInvalidParams
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	})
}

func searchIDParam(params []json.RawMessage) (string, bool) {
	if len(params) == 0 {
		return "", false
	}
	var p struct {
		SearchID string `json:"search_id"`
	}
	if err := json.Unmarshal(params[0], &p); err != nil || p.SearchID == "" {
		return "", false
	}
	return p.SearchID, true
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Warn("RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.StatusOf(err), map[string]interface{}{
		"error": err.Error(),
	})
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest(err, "invalid request body"))
		return
	}

	result, err := s.startSearch(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// handleStatus handles GET /api/v1/status/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.searchStatus(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCancel handles DELETE /api/v1/search/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.cancelSearch(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "cancellation requested",
	})
}

// handleObjectives handles GET /api/v1/objectives.
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, objectiveList())
}
