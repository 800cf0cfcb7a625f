package handler

import (
	"net/http"
	"time"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// List godoc
// @Summary List tasks
// @Description Get paginated list of tasks. The due filter narrows to tasks due today or this week.
// @Tags Tasks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search title or description"
// @Param status query string false "Filter by status" Enums(todo, in_progress, review, completed, cancelled)
// @Param priority query string false "Filter by priority" Enums(low, medium, high, urgent)
// @Param type query string false "Filter by type" Enums(design, development, content, meeting, other)
// @Param assignedTo query int false "Filter by assignee"
// @Param projectId query int false "Filter by project"
// @Param mine query bool false "Only tasks assigned to the caller"
// @Param pending query bool false "Only todo and in progress tasks"
// @Param overdue query bool false "Only overdue tasks"
// @Param due query string false "Due window" Enums(today, week)
// @Param sortBy query string false "Sort field" Enums(createdAt, dueDate, priority, status, title)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TaskDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	query := r.URL.Query()
	now := time.Now().UTC()

	filters := &repository.TaskFilters{
		Search:     query.Get("search"),
		Status:     queryEnum[domain.TaskStatus](r, "status"),
		Priority:   queryEnum[domain.Priority](r, "priority"),
		Type:       queryEnum[domain.TaskType](r, "type"),
		AssignedTo: queryUint(r, "assignedTo"),
		ProjectID:  queryUint(r, "projectId"),
	}
	if mine := queryBool(r, "mine"); mine != nil && *mine {
		if user, ok := auth.FromContext(r.Context()); ok {
			filters.AssignedTo = &user.UserID
		}
	}
	if pending := queryBool(r, "pending"); pending != nil {
		filters.Pending = *pending
	}
	if overdue := queryBool(r, "overdue"); overdue != nil && *overdue {
		filters.OverdueAt = &now
	}
	switch query.Get("due") {
	case "today":
		from := repository.StartOfDay(now)
		to := from.AddDate(0, 0, 1)
		filters.DueFrom, filters.DueBefore = &from, &to
	case "week":
		from := repository.StartOfWeek(now)
		to := from.AddDate(0, 0, 7)
		filters.DueFrom, filters.DueBefore = &from, &to
	case "":
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid due filter: must be today or week")
		return
	}

	result, err := h.taskService.List(r.Context(), page, pageSize, filters, parseSort(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get task by ID
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "task")
	if !ok {
		return
	}
	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Create godoc
// @Summary Create task
// @Description Requires create_tasks or assign_tasks
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	task, err := h.taskService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// Update godoc
// @Summary Update task
// @Description Requires edit_tasks, or the caller must be the assignee
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body domain.UpdateTaskRequest true "Task data"
// @Success 200 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "task")
	if !ok {
		return
	}
	var req domain.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	task, err := h.taskService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Delete godoc
// @Summary Delete task
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "task")
	if !ok {
		return
	}
	if err := h.taskService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Start godoc
// @Summary Start task
// @Description Moves a todo task to in_progress. Only the assignee may start it.
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Task is not in todo"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id}/start [post]
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "task")
	if !ok {
		return
	}
	task, err := h.taskService.Start(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Complete godoc
// @Summary Complete task
// @Description Moves an in_progress or review task to completed. Only the assignee may complete it.
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "task")
	if !ok {
		return
	}
	task, err := h.taskService.Complete(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// BulkComplete godoc
// @Summary Complete several tasks
// @Description Best-effort. Ineligible tasks are skipped with a reason.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Task IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/bulk-complete [post]
func (h *TaskHandler) BulkComplete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.taskService.BulkComplete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// BulkDelete godoc
// @Summary Delete several tasks
// @Description Best-effort delete. Missing records are skipped, failures are reported.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Task IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tasks/bulk-delete [post]
func (h *TaskHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.taskService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
