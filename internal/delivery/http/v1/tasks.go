package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/services"
)

type taskResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	ProjectID   any       `json:"projectId"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type projectSummaryResponse struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		ProjectID:   newProjectRefResponse(task.Project),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// newProjectRefResponse renders an expanded reference as an object
// and a bare one as its id.
func newProjectRefResponse(ref models.ProjectRef) any {
	switch ref := ref.(type) {
	case models.ProjectSummary:
		return projectSummaryResponse{
			ID:    ref.ID,
			Title: ref.Title,
		}
	case models.ProjectID:
		return string(ref)
	default:
		return nil
	}
}

type listTasksQuery struct {
	ProjectID string `form:"projectId"`
	Status    string `form:"status"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      *string `json:"status,omitempty"`
	DueDate     string  `json:"dueDate"`
	ProjectID   string  `json:"projectId"`
}

// status returns nil when the client left the status out.
func (r *taskRequest) status() *models.TaskStatus {
	if r.Status == nil || *r.Status == "" {
		return nil
	}
	status := models.TaskStatus(*r.Status)
	return &status
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	user := currentUser(c)

	var query listTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError("Invalid query parameters"))
		return
	}

	tasks, err := h.tasks.ListTasks(c, services.ListTasksParams{
		UserID:    user.ID,
		ProjectID: query.ProjectID,
		Status:    models.TaskStatus(query.Status),
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, serviceError(err))
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	c.JSON(http.StatusOK, gin.H{"tasks": response})
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	user := currentUser(c)

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("due_date", req.DueDate).
			Msg("failed to parse due date")
		abort(c, newBadRequestError(msgInvalidDueDate))
		return
	}

	params := services.CreateTaskParams{
		UserID:      user.ID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	}
	if status := req.status(); status != nil {
		params.Status = *status
	}

	task, err := h.tasks.CreateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	user := currentUser(c)

	task, err := h.tasks.GetTask(c, user.ID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task)})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	user := currentUser(c)

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("due_date", req.DueDate).
			Msg("failed to parse due date")
		abort(c, newBadRequestError(msgInvalidDueDate))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:          c.Param("id"),
		UserID:      user.ID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.status(),
		DueDate:     dueDate,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	user := currentUser(c)

	err := h.tasks.DeleteTask(c, user.ID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// parseDueDate accepts a calendar date or an RFC 3339 timestamp.
// An empty value yields the zero time, which the task service rejects.
func parseDueDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	date, err := time.Parse(time.DateOnly, value)
	if err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, value)
}
