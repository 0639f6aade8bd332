package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avdeenkov/go-task-manager/internal/models"
	"github.com/avdeenkov/go-task-manager/internal/services"
)

type taskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Status:      models.TaskStatus(task.Completed),
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	UserID      string `json:"userId"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	if req.UserID == "" {
		h.logger.Error().Msg("create task request without user id")
		abort(c, newBadRequestError(services.ErrMissingOwner.Error()))
		return
	}
	if !h.authorizedFor(c, req.UserID) {
		abort(c, newUnauthorizedError("token does not match user"))
		return
	}

	completed := false
	if req.Status != "" {
		var known bool
		completed, known = models.CompletedFromStatus(req.Status)
		if !known {
			h.logger.Error().
				Str("status", req.Status).
				Msg("unknown task status")
			abort(c, newBadRequestError(services.ErrInvalidStatus.Error()))
			return
		}
	}

	task, err := h.tasks.Create(c, services.CreateTaskParams{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Completed:   completed,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		switch {
		case errors.Is(err, services.ErrMissingOwner),
			errors.Is(err, services.ErrEmptyTitle),
			errors.Is(err, services.ErrInvalidCategory):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "task created successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID := c.Param("userId")
	if !h.authorizedFor(c, userID) {
		abort(c, newUnauthorizedError("token does not match user"))
		return
	}

	tasks, err := h.tasks.ListByUser(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		switch {
		case errors.Is(err, services.ErrMissingOwner):
			abort(c, newBadRequestError(services.ErrMissingOwner.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	// Always an array in the response, never null.
	responses := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, newTaskResponse(task))
	}

	c.JSON(http.StatusOK, gin.H{"tasks": responses})
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	UserID      string  `json:"userId"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID := c.Param("taskId")

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	if req.UserID == "" {
		h.logger.Error().Msg("update task request without user id")
		abort(c, newBadRequestError(services.ErrMissingOwner.Error()))
		return
	}
	if !h.authorizedFor(c, req.UserID) {
		abort(c, newUnauthorizedError("token does not match user"))
		return
	}

	var completed *bool
	if req.Status != nil {
		value, known := models.CompletedFromStatus(*req.Status)
		if !known {
			h.logger.Error().
				Str("status", *req.Status).
				Msg("unknown task status")
			abort(c, newBadRequestError(services.ErrInvalidStatus.Error()))
			return
		}
		completed = &value
	}

	task, err := h.tasks.Update(c, services.UpdateTaskParams{
		ID:          taskID,
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Completed:   completed,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		case errors.Is(err, services.ErrEmptyTitle),
			errors.Is(err, services.ErrInvalidCategory):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "task updated successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("taskId")
	userID := c.Param("userId")
	if !h.authorizedFor(c, userID) {
		abort(c, newUnauthorizedError("token does not match user"))
		return
	}

	err := h.tasks.Delete(c, taskID, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}
