package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/taskplane/taskplane/internal/auth"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/server"
	"github.com/taskplane/taskplane/internal/store"
)

// Whether the task is missing or merely out of scope, callers get the same
// response. Existence of entities in other organizations must not leak.
const taskNotFoundMsg = "Task not found or access denied"

type taskHandler struct {
	tasks *server.TaskService
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Category    *string `json:"category"`
	Position    *int    `json:"position"`
}

func (h *taskHandler) list(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var filter store.TaskFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := models.ParseTaskStatus(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}
	if c := r.URL.Query().Get("category"); c != "" {
		category, err := models.ParseTaskCategory(c)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Category = &category
	}

	tasks, err := h.tasks.List(r.Context(), *principal, filter)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to list tasks")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

func (h *taskHandler) get(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.Get(r.Context(), *principal, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, taskNotFoundMsg)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to get task")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *taskHandler) create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	in := server.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Category != nil {
		category, err := models.ParseTaskCategory(*req.Category)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Category = &category
	}

	task, err := h.tasks.Create(r.Context(), *principal, in)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to create task")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (h *taskHandler) update(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := server.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	}
	if req.Status != nil {
		status, err := models.ParseTaskStatus(*req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Status = &status
	}
	if req.Category != nil {
		category, err := models.ParseTaskCategory(*req.Category)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Category = &category
	}

	task, err := h.tasks.Update(r.Context(), *principal, taskID, patch)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, taskNotFoundMsg)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to update task")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *taskHandler) delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.tasks.Delete(r.Context(), *principal, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, taskNotFoundMsg)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to delete task")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
