package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/taskplane/taskplane/internal/auth"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/server"
)

// Config wires the router to the guarded services and the authentication
// collaborator.
type Config struct {
	Tasks    *server.TaskService
	Audits   *server.AuditService
	Verifier *auth.Verifier
}

// NewRouter builds the HTTP surface. Every /api route passes through, in
// order: client IP capture, bearer authentication, audit recording, role
// gating, handler. The audit middleware sits outside the role gate so a
// role denial is still recorded as a denied entry.
func NewRouter(cfg Config) *mux.Router {
	readRoles := []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleViewer}
	writeRoles := []models.Role{models.RoleOwner, models.RoleAdmin}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	guarded := func(entityType string, roles []models.Role, h http.HandlerFunc) http.Handler {
		return audit(cfg.Audits, entityType)(requireRoles(roles...)(h))
	}

	tasks := &taskHandler{tasks: cfg.Tasks}
	audits := &auditHandler{audits: cfg.Audits}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(ClientIPMiddleware())
	apiRouter.Use(cfg.Verifier.Middleware())

	apiRouter.Handle("/tasks", guarded("tasks", readRoles, tasks.list)).Methods(http.MethodGet)
	apiRouter.Handle("/tasks", guarded("tasks", writeRoles, tasks.create)).Methods(http.MethodPost)
	apiRouter.Handle("/tasks/{id}", guarded("tasks", readRoles, tasks.get)).Methods(http.MethodGet)
	apiRouter.Handle("/tasks/{id}", guarded("tasks", writeRoles, tasks.update)).Methods(http.MethodPut)
	apiRouter.Handle("/tasks/{id}", guarded("tasks", writeRoles, tasks.delete)).Methods(http.MethodDelete)

	apiRouter.Handle("/audit-log", guarded("audit-log", writeRoles, audits.list)).Methods(http.MethodGet)

	return r
}
