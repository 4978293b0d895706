package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avdeyev/taskboard/internal/models"
	"github.com/avdeyev/taskboard/internal/services"
)

const dateLayout = "2006-01-02"

type taskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Position    int     `json:"position"`
	DueDate     *string `json:"due_date"`
	Important   bool    `json:"important"`
}

func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Position:    task.Position,
		Important:   task.Important,
	}
	if task.DueDate != nil {
		formatted := task.DueDate.Format(dateLayout)
		resp.DueDate = &formatted
	}
	return resp
}

// optionalDate distinguishes an absent due_date field from an explicit
// null: the unmarshaler only runs when the key is present.
type optionalDate struct {
	set   bool
	value *string
}

func (o *optionalDate) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Important   bool    `json:"important"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(errTokenInvalid.Error()))
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		abort(c, newBadRequestError("title is required"))
		return
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			abort(c, newBadRequestError("invalid date format, use YYYY-MM-DD"))
			return
		}
		dueDate = &parsed
	}

	task, err := h.tasks.Create(c, services.CreateTaskParams{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Important:   req.Important,
		DueDate:     dueDate,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(errTokenInvalid.Error()))
		return
	}

	tasks, err := h.tasks.List(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, newTaskResponse(task))
	}

	c.JSON(http.StatusOK, response)
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Completed   *bool        `json:"completed"`
	Position    *int         `json:"position"`
	Important   *bool        `json:"important"`
	DueDate     optionalDate `json:"due_date"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(errTokenInvalid.Error()))
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return
	}

	var req updateTaskRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.UpdateTaskParams{
		ID:          taskID,
		UserID:      userID,
		Description: req.Description,
		Completed:   req.Completed,
		Position:    req.Position,
		Important:   req.Important,
	}

	if req.Title != nil {
		// An empty title keeps the previous one instead of erroring.
		trimmed := strings.TrimSpace(*req.Title)
		params.Title = &trimmed
	}

	if req.DueDate.set {
		params.DueDateSet = true
		if req.DueDate.value != nil && *req.DueDate.value != "" {
			parsed, err := time.Parse(dateLayout, *req.DueDate.value)
			if err != nil {
				abort(c, newBadRequestError("invalid date format, use YYYY-MM-DD"))
				return
			}
			params.DueDate = &parsed
		}
	}

	task, err := h.tasks.Update(c, params)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(errTokenInvalid.Error()))
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return
	}

	err = h.tasks.Delete(c, taskID, userID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

type reorderTasksRequest struct {
	Order []int64 `json:"order"`
}

func (h *handlerImpl) HandleReorderTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(errTokenInvalid.Error()))
		return
	}

	var req reorderTasksRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || req.Order == nil {
		h.logger.Warn().
			Err(err).
			Msg("order list required")
		abort(c, newBadRequestError("order list required"))
		return
	}

	err = h.tasks.Reorder(c, userID, req.Order)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to reorder tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reordered"})
}
