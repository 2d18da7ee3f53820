// Package api exposes the HTTP surface of the task service.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Maleek6526/TaskManagerApplication/internal/auth"
	"github.com/Maleek6526/TaskManagerApplication/internal/domain"
)

// Handler coordinates HTTP requests with the mutation pipeline.
type Handler struct {
	service  *domain.Service
	authCfg  auth.Config
	tokenTTL time.Duration
	started  time.Time
}

// NewHandler builds a Handler. tokenTTL bounds the lifetime of tokens
// issued at login.
func NewHandler(service *domain.Service, authCfg auth.Config, tokenTTL time.Duration) *Handler {
	return &Handler{
		service:  service,
		authCfg:  authCfg,
		tokenTTL: tokenTTL,
		started:  time.Now(),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/tasks", h.tasks)
	mux.HandleFunc("/tasks/", h.taskByID)
	mux.HandleFunc("/activity", h.activity)
	mux.HandleFunc("/healthz", h.healthz)
}

// healthz reports readiness and process uptime.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Seconds(),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.writeServiceError(w, err)
		return
	}

	token, err := auth.Issue(*user, h.authCfg, h.tokenTTL)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Role:     string(user.Role),
		Username: user.Username,
	})
}

func (h *Handler) tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) taskByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/tasks/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateTask(w, r, id)
	case http.MethodDelete:
		h.deleteTask(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), ident)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, toTaskView(task))
	}
	writeJSON(w, http.StatusOK, views)
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Title and description required")
		return
	}

	task, err := h.service.CreateTask(r.Context(), ident, domain.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskView(*task))
}

// updateTaskRequest keeps each field raw so that absent and wrong-typed
// values can be told apart from real ones. A field only makes it into the
// patch when it decodes as the expected type; `completed: "yes"` is
// silently ignored rather than rejected.
type updateTaskRequest struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Completed   json.RawMessage `json:"completed"`
}

func (r updateTaskRequest) patch() domain.TaskPatch {
	p := domain.TaskPatch{
		Touched: len(r.Title) > 0 || len(r.Description) > 0 || len(r.Completed) > 0,
	}
	if s, ok := decodeString(r.Title); ok {
		p.Title = &s
	}
	if s, ok := decodeString(r.Description); ok {
		p.Description = &s
	}
	if b, ok := decodeBool(r.Completed); ok {
		p.Completed = &b
	}
	return p
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request, id int64) {
	ident, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}

	task, err := h.service.UpdateTask(r.Context(), ident, id, req.patch())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskView(*task))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, id int64) {
	ident, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	if _, err := h.service.DeleteTask(r.Context(), ident, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func (h *Handler) activity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ident, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	events, err := h.service.ListActivity(r.Context(), ident)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, event := range events {
		views = append(views, toEventView(event))
	}
	writeJSON(w, http.StatusOK, views)
}

// writeServiceError maps pipeline errors onto the HTTP taxonomy. An
// AuditError means a mutation committed without an audit row; it is
// logged loudly and answered distinctly from an ordinary store failure.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var auditErr *domain.AuditError
	switch {
	case errors.As(err, &auditErr):
		log.Printf("AUDIT FAILURE: %v", auditErr)
		writeError(w, http.StatusInternalServerError, "Mutation committed but audit log write failed")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, inputMessage(err))
	default:
		log.Printf("unhandled service error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func inputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func identityFrom(r *http.Request) (domain.Identity, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.Identity{}, false
	}
	return claims.Identity(), true
}

// taskView is the wire shape of a task, matching the persisted model.
type taskView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedByID int64     `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toTaskView(task domain.Task) taskView {
	return taskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedByID: task.CreatedByID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// eventView is the wire shape of one audit trail entry.
type eventView struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	UserID    int64     `json:"userId"`
	TaskID    *int64    `json:"taskId"`
	Details   *string   `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEventView(event domain.ActivityEvent) eventView {
	return eventView{
		ID:        event.ID,
		Action:    string(event.Action),
		UserID:    event.UserID,
		TaskID:    event.TaskID,
		Details:   event.Details,
		CreatedAt: event.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
