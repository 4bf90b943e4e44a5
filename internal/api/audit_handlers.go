package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/taskplane/taskplane/internal/auth"
	"github.com/taskplane/taskplane/internal/server"
)

type auditHandler struct {
	audits *server.AuditService
}

func (h *auditHandler) list(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		// Unparseable limits fall back to the default rather than erroring
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	entries, err := h.audits.ListForPrincipal(r.Context(), *principal, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to list audit entries")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
