package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taskplane/taskplane/internal/auth"
	"github.com/taskplane/taskplane/internal/authz"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/server"
)

// statusWriter captures the status code written by downstream handlers so
// the audit middleware can classify the outcome.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// requireRoles gates a route on a required-role set. An empty set admits
// any authenticated principal. The gate runs before the handler touches
// any storage; denials are still observed by the audit middleware wrapped
// outside it.
func requireRoles(required ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				// Authentication is handled upstream; reaching here without
				// a principal means the route was wired without it.
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !authz.CheckRoles(required, principal) {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// audit wraps a guarded route and records exactly one audit entry per
// request: allowed when the response status is below 400, denied
// otherwise. A panic in the handler is recorded as a denied entry before
// propagating.
func audit(audits *server.AuditService, entityType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}

			rec := server.AuditRecord{
				Principal:  auth.PrincipalFromContext(r.Context()),
				Action:     actionForMethod(r.Method),
				EntityType: entityType,
				IPAddress:  ClientIPFromContext(r.Context()),
			}
			if idStr, ok := mux.Vars(r)["id"]; ok {
				if id, err := uuid.Parse(idStr); err == nil {
					rec.EntityID = &id
				}
			}

			defer func() {
				if p := recover(); p != nil {
					rec.Allowed = false
					audits.Record(r.Context(), rec)
					panic(p)
				}

				status := sw.status
				if status == 0 {
					status = http.StatusOK
				}
				rec.Allowed = status < http.StatusBadRequest
				audits.Record(r.Context(), rec)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// actionForMethod maps an HTTP method to the audit action it represents.
func actionForMethod(method string) models.AuditAction {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate
	case http.MethodDelete:
		return models.AuditActionDelete
	default:
		return models.AuditActionRead
	}
}
