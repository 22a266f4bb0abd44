package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/vecedit/internal/auth"
	"github.com/inamate/vecedit/internal/collab"
	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/engine"
	"github.com/inamate/vecedit/internal/export"
)

const maxBodySize = 10 << 20 // 10MB

type Handler struct {
	service *Service
	auth    *auth.Service
	hub     *collab.Hub
	origins []string
}

func NewHandler(service *Service, authService *auth.Service, hub *collab.Hub, origins []string) *Handler {
	return &Handler{service: service, auth: authService, hub: hub, origins: origins}
}

// Register mounts the session routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/sessions", h.Create).Methods("POST")
	r.HandleFunc("/ws/sessions/{id}", h.WebSocket).Methods("GET")

	api := r.PathPrefix("/api/sessions/{id}").Subrouter()
	api.Use(h.auth.SessionMiddleware)

	api.HandleFunc("", h.Close).Methods("DELETE")
	api.HandleFunc("/document", h.GetDocument).Methods("GET")
	api.HandleFunc("/document", h.PutDocument).Methods("PUT")
	api.HandleFunc("/events", h.PostEvents).Methods("POST")
	api.HandleFunc("/tool", h.SetTool).Methods("POST")
	api.HandleFunc("/mode", h.SetMode).Methods("POST")
	api.HandleFunc("/attributes", h.SetAttributes).Methods("POST")
	api.HandleFunc("/selection", h.GetSelection).Methods("GET")
	api.HandleFunc("/selection", h.SetSelection).Methods("PUT")
	api.HandleFunc("/undo", h.command(engine.CmdUndo)).Methods("POST")
	api.HandleFunc("/redo", h.command(engine.CmdRedo)).Methods("POST")
	api.HandleFunc("/commands/{name}", h.Command).Methods("POST")
	api.HandleFunc("/status", h.Status).Methods("GET")
	api.HandleFunc("/render", h.Render).Methods("GET")
	api.HandleFunc("/render.png", h.RenderPNG).Methods("GET")
	api.HandleFunc("/tokens", auth.NewHandler(h.auth).Invite).Methods("POST")
}

type createResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type toolRequest struct {
	Name string `json:"name"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type revisionResponse struct {
	Revision int64 `json:"revision"`
}

type commandResponse struct {
	Changed  bool  `json:"changed"`
	Revision int64 `json:"revision"`
}

// Create opens a session on the posted document, or an empty sheet when
// the body is empty, and returns a token for it.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request too large"})
		return
	}

	var doc *document.Document
	if len(body) > 0 {
		doc, err = document.Parse(body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	sess, err := h.service.Create(r.Context(), doc)
	if err != nil {
		slog.Error("create session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "owner"
	}
	token, err := h.auth.IssueToken(sess.ID, name)
	if err != nil {
		slog.Error("issue token failed", "session", sess.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{ID: sess.ID, Token: token})
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), mux.Vars(r)["id"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	var doc string
	if !h.do(w, r, func(e *engine.Engine) error {
		doc = e.GetDocument()
		return nil
	}) {
		return
	}
	writeRaw(w, doc)
}

func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	doc, err := document.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var rev int64
	if !h.do(w, r, func(e *engine.Engine) error {
		err := e.Load(doc)
		rev = e.Revision()
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, revisionResponse{Revision: rev})
}

// PostEvents takes one event or an array of them.
func (h *Handler) PostEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var rev int64
	if !h.do(w, r, func(e *engine.Engine) error {
		err := e.Dispatch(string(body))
		rev = e.Revision()
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, revisionResponse{Revision: rev})
}

func (h *Handler) SetTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.statusAfter(w, r, func(e *engine.Engine) error { return e.SetTool(req.Name) })
}

func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.statusAfter(w, r, func(e *engine.Engine) error { return e.SetMode(req.Mode) })
}

func (h *Handler) SetAttributes(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	h.statusAfter(w, r, func(e *engine.Engine) error { return e.SetAttributes(string(body)) })
}

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	var sel string
	if !h.do(w, r, func(e *engine.Engine) error {
		sel = e.GetSelection()
		return nil
	}) {
		return
	}
	writeRaw(w, sel)
}

func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.statusAfter(w, r, func(e *engine.Engine) error {
		e.SetSelection(ids)
		return nil
	})
}

func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	h.command(mux.Vars(r)["name"])(w, r)
}

func (h *Handler) command(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp commandResponse
		if !h.do(w, r, func(e *engine.Engine) error {
			changed, err := e.Execute(name)
			resp = commandResponse{Changed: changed, Revision: e.Revision()}
			return err
		}) {
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.statusAfter(w, r, func(*engine.Engine) error { return nil })
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var cmds string
	if !h.do(w, r, func(e *engine.Engine) error {
		cmds = e.Render()
		return nil
	}) {
		return
	}
	writeRaw(w, cmds)
}

// RenderPNG rasterizes the document. Query parameters scale, width and
// height select the resolution; width and height bound a thumbnail.
func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts export.Options
	var err error
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scale"})
			return
		}
	}
	if opts.MaxWidth, err = intParam(q.Get("width")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid width"})
		return
	}
	if opts.MaxHeight, err = intParam(q.Get("height")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid height"})
		return
	}

	doc, err := h.service.Document(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	img, err := export.Render(doc, opts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := export.EncodePNG(w, img); err != nil {
		slog.Error("write png", "error", err)
	}
}

// WebSocket authorizes the token query parameter and streams the session.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.auth.Authorize(token, sessionID)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if _, err := h.service.Get(r.Context(), sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		slog.Error("open session for websocket", "session", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.hub.ServeWS(w, r, sessionID, claims.Name, h.origins)
}

// do runs fn on the session named in the route. Errors returned by fn are
// the client's fault and answered with 400.
func (h *Handler) do(w http.ResponseWriter, r *http.Request, fn func(*engine.Engine) error) bool {
	var inputErr error
	err := h.service.Do(r.Context(), mux.Vars(r)["id"], func(e *engine.Engine) error {
		inputErr = fn(e)
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return false
	}
	if inputErr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": inputErr.Error()})
		return false
	}
	return true
}

// statusAfter runs fn and answers with the editor status.
func (h *Handler) statusAfter(w http.ResponseWriter, r *http.Request, fn func(*engine.Engine) error) {
	var st engine.Status
	if !h.do(w, r, func(e *engine.Engine) error {
		err := fn(e)
		st = e.Status()
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request too large"})
		return nil, false
	}
	return body, true
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, ErrClosed):
		writeJSON(w, http.StatusGone, map[string]string{"error": "session closed"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "request cancelled"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRaw(w http.ResponseWriter, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, data)
}
