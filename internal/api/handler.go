package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/command"
	"github.com/whisperengine-ai/ai-research/internal/journal"
	"github.com/whisperengine-ai/ai-research/internal/memory"
	"github.com/whisperengine-ai/ai-research/internal/session"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	mgr      *session.Manager
	registry *command.Registry
	memory   *memory.Store
	journal  *journal.Journal
	logger   *zap.Logger
}

// NewHandler creates a new API handler. Memory and journal are
// optional; the routes that need them answer 503 when absent.
func NewHandler(mgr *session.Manager, reg *command.Registry, mem *memory.Store, j *journal.Journal, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mgr:      mgr,
		registry: reg,
		memory:   mem,
		journal:  j,
		logger:   logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Post("/chat", h.chat)
		r.Get("/sessions", h.listSessions)

		// Flat aliases resolving the session from ?session_id=.
		r.Get("/workspace", h.getWorkspace)
		r.Get("/attention", h.getAttention)
		r.Get("/stream", h.getStream)
		r.Get("/metrics", h.getMetrics)
		r.Get("/chemistry", h.getChemistry)
		r.Post("/reset", h.resetSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/workspace", h.getWorkspace)
			r.Get("/attention", h.getAttention)
			r.Get("/stream", h.getStream)
			r.Get("/metrics", h.getMetrics)
			r.Get("/chemistry", h.getChemistry)
			r.Get("/history", h.getHistory)
			r.Get("/memories", h.getMemories)
			r.Get("/replay", h.getReplay)
			r.Post("/reset", h.resetSession)
		})
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.mgr.Len(),
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chat processes one message through the full cognitive loop. Messages
// starting with "/" are dispatched as introspection commands instead.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	s, err := h.mgr.GetOrCreate(r.Context(), req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if strings.HasPrefix(req.Message, "/") && h.registry != nil {
		cc := &command.CommandContext{SessionID: s.ID(), Session: s, Manager: h.mgr}
		result, err := h.registry.Dispatch(r.Context(), req.Message, cc)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id": s.ID(),
			"response":   result.Content,
			"data":       result.Data,
		})
		return
	}

	turn, err := s.ProcessTurn(r.Context(), req.Message)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.mgr.List(),
		"count":    h.mgr.Len(),
	})
}

// sessionFrom resolves the session from the {id} URL param or the
// session_id query parameter, answering 404 on a miss.
func (h *Handler) sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		id = r.URL.Query().Get("session_id")
	}
	s, ok := h.mgr.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func (h *Handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.WorkspaceView())
}

func (h *Handler) getAttention(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"focus": s.WorkspaceView().Focus})
}

func (h *Handler) getStream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	n := queryInt(r, "n", 20)
	writeJSON(w, http.StatusOK, s.StreamView(n))
}

func (h *Handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	n := queryInt(r, "n", 10)
	writeJSON(w, http.StatusOK, s.MetricsView(n))
}

func (h *Handler) getChemistry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.ChemistryView())
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"turns":   s.TurnCount(),
		"history": s.History(),
	})
}

// getMemories runs spreading activation over the concept graph for the
// given trigger terms.
func (h *Handler) getMemories(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	if h.memory == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "memory store not configured"})
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	result, err := h.memory.Activate(r.Context(), s.ID(), strings.Fields(q), memory.DefaultActivationOpts())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getReplay reads the persisted thought journal back from Redis.
func (h *Handler) getReplay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	if h.journal == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "journal not configured"})
		return
	}
	n := queryInt(r, "n", 50)
	thoughts, err := h.journal.Replay(r.Context(), s.ID(), int64(n))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"thoughts": thoughts})
}

func (h *Handler) resetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	s.Reset(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
