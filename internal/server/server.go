// Package server exposes the plan tracker of one session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tracker"
	"github.com/pablasso/plantrack/internal/util"
)

// CallIDHeader lets clients supply the tool call id; one is generated otherwise.
const CallIDHeader = "X-Call-Id"

// Config wires the handler to a tracker.
type Config struct {
	Tracker *tracker.Tracker
	Session string
	Logger  *zap.Logger
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	Error apiErrorBody `json:"error"`
}

// PlanResponse is the body of GET /plan.
type PlanResponse struct {
	Session string           `json:"session,omitempty"`
	Tasks   []plan.Task      `json:"tasks"`
	Widget  *plan.WidgetData `json:"widget"`
	Report  string           `json:"report"`
}

type handler struct {
	// mu serializes tracker access; the tracker is single-writer.
	mu      sync.Mutex
	tracker *tracker.Tracker
	session string
	logger  *zap.Logger
}

// New returns an HTTP handler for the tracker in cfg.
func New(cfg Config) (http.Handler, error) {
	if cfg.Tracker == nil {
		return nil, errors.New("server: tracker is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{
		tracker: cfg.Tracker,
		session: cfg.Session,
		logger:  logger,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(h.logRequests)

	router.Get("/healthz", h.health)
	router.Get("/tool", h.toolSpec)
	router.Get("/plan", h.currentPlan)
	router.Post("/tool", h.executeTool)
	router.Post("/events/{event}", h.sessionEvent)

	return router, nil
}

// ListenAndServe serves handler on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) toolSpec(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tracker.Spec{})
}

func (h *handler) currentPlan(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	tasks := h.tracker.Tasks()
	h.mu.Unlock()

	resp := PlanResponse{
		Session: h.session,
		Tasks:   tasks,
		Report:  plan.FormatStatus(tasks),
	}
	if len(tasks) > 0 {
		widget := plan.FormatWidget(tasks)
		resp.Widget = &widget
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) executeTool(w http.ResponseWriter, r *http.Request) {
	var params tracker.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	callID := r.Header.Get(CallIDHeader)
	if callID == "" {
		id, err := util.GenerateCallID()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		callID = id
	}

	h.mu.Lock()
	result, err := h.tracker.Execute(r.Context(), callID, params)
	h.mu.Unlock()

	if err != nil {
		var schemaErr *tracker.SchemaError
		if errors.As(err, &schemaErr) {
			writeError(w, http.StatusBadRequest, "invalid_params", schemaErr.Error())
			return
		}
		h.logger.Error("tool call failed", zap.String("call_id", callID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) sessionEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := tracker.ParseEvent(chi.URLParam(r, "event"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_event", err.Error())
		return
	}

	h.mu.Lock()
	err = h.tracker.HandleEvent(r.Context(), ev)
	h.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: apiErrorBody{Code: code, Message: message}})
}
