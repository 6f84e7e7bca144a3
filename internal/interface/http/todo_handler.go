package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/application"
	"github.com/oksasatya/todo-organizer/internal/interface/middleware"
	"github.com/oksasatya/todo-organizer/pkg/response"
	"github.com/oksasatya/todo-organizer/pkg/validation"
)

const (
	msgInvalidData    = "Invalid data"
	msgNotFound       = "Not found"
	msgParentNotFound = "Parent not found"
	msgDeleted        = "Deleted"
	msgQueryRequired  = "Query is required"
)

// TodoHandler serves /api/for_authorized_users. Every route runs behind
// BearerAuth and RequireConfirmedEmail.
type TodoHandler struct {
	Todos  *application.TodoService
	Logger *logrus.Logger
}

func NewTodoHandler(todos *application.TodoService, logger *logrus.Logger) *TodoHandler {
	return &TodoHandler{Todos: todos, Logger: logger}
}

type groupRequest struct {
	Title string `json:"title" binding:"required,title"`
}

type listRequest struct {
	Title   string  `json:"title" binding:"required,title"`
	GroupID *string `json:"groupId"`
}

type taskRequest struct {
	Title     string     `json:"title" binding:"required,title"`
	ListID    string     `json:"listId"`
	Note      string     `json:"note" binding:"max=10000"`
	Completed bool       `json:"completed"`
	Important bool       `json:"important"`
	DueDate   *time.Time `json:"dueDate"`
}

type stepRequest struct {
	Title     string `json:"title" binding:"required,title"`
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
}

// optionalID maps an empty or blank id to nil.
func optionalID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func (h *TodoHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Invalid(c, msgInvalidData, validation.ToErrors(err))
		return false
	}
	return true
}

// requireField reports a missing parent id in the same shape as binding errors.
func requireField(c *gin.Context, name, value string) bool {
	if strings.TrimSpace(value) != "" {
		return true
	}
	response.Invalid(c, msgInvalidData, []validation.FieldError{{Msg: name + " is required", Param: name, Location: "body"}})
	return false
}

func (h *TodoHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Message(c, http.StatusNotFound, msgNotFound)
	case errors.Is(err, application.ErrParentNotFound):
		response.Message(c, http.StatusBadRequest, msgParentNotFound)
	case errors.Is(err, application.ErrUserNotFound):
		response.Message(c, http.StatusUnauthorized, middleware.MsgUserNoLongerHere)
	default:
		response.Internal(c, h.Logger, err)
	}
}

func (h *TodoHandler) reply(c *gin.Context, status int, v any, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, v)
}

func (h *TodoHandler) deleted(c *gin.Context, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, msgDeleted)
}

// GetAll GET /get_all
func (h *TodoHandler) GetAll(c *gin.Context) {
	snap, err := h.Todos.Snapshot(c.Request.Context(), middleware.UserID(c))
	h.reply(c, http.StatusOK, snap, err)
}

// Search GET /search?q=
func (h *TodoHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Message(c, http.StatusBadRequest, msgQueryRequired)
		return
	}
	tasks, err := h.Todos.SearchTasks(c.Request.Context(), middleware.UserID(c), q)
	h.reply(c, http.StatusOK, gin.H{"tasks": tasks}, err)
}

// ---- groups ----

func (h *TodoHandler) CreateGroup(c *gin.Context) {
	var req groupRequest
	if !h.bind(c, &req) {
		return
	}
	g, err := h.Todos.CreateGroup(c.Request.Context(), middleware.UserID(c), req.Title)
	h.reply(c, http.StatusCreated, g, err)
}

func (h *TodoHandler) UpdateGroup(c *gin.Context) {
	var req groupRequest
	if !h.bind(c, &req) {
		return
	}
	g, err := h.Todos.UpdateGroup(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Title)
	h.reply(c, http.StatusOK, g, err)
}

func (h *TodoHandler) DeleteGroup(c *gin.Context) {
	h.deleted(c, h.Todos.DeleteGroup(c.Request.Context(), middleware.UserID(c), c.Param("id")))
}

// ---- lists ----

func (h *TodoHandler) CreateList(c *gin.Context) {
	var req listRequest
	if !h.bind(c, &req) {
		return
	}
	l, err := h.Todos.CreateList(c.Request.Context(), middleware.UserID(c), application.ListInput{
		Title:   req.Title,
		GroupID: optionalID(req.GroupID),
	})
	h.reply(c, http.StatusCreated, l, err)
}

func (h *TodoHandler) UpdateList(c *gin.Context) {
	var req listRequest
	if !h.bind(c, &req) {
		return
	}
	l, err := h.Todos.UpdateList(c.Request.Context(), middleware.UserID(c), c.Param("id"), application.ListInput{
		Title:   req.Title,
		GroupID: optionalID(req.GroupID),
	})
	h.reply(c, http.StatusOK, l, err)
}

func (h *TodoHandler) DeleteList(c *gin.Context) {
	h.deleted(c, h.Todos.DeleteList(c.Request.Context(), middleware.UserID(c), c.Param("id")))
}

// ---- tasks ----

func (r taskRequest) input() application.TaskInput {
	return application.TaskInput{
		Title:     r.Title,
		ListID:    strings.TrimSpace(r.ListID),
		Note:      r.Note,
		Completed: r.Completed,
		Important: r.Important,
		DueDate:   r.DueDate,
	}
}

func (h *TodoHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if !h.bind(c, &req) || !requireField(c, "listId", req.ListID) {
		return
	}
	t, err := h.Todos.CreateTask(c.Request.Context(), middleware.UserID(c), req.input())
	h.reply(c, http.StatusCreated, t, err)
}

func (h *TodoHandler) UpdateTask(c *gin.Context) {
	var req taskRequest
	if !h.bind(c, &req) {
		return
	}
	t, err := h.Todos.UpdateTask(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.input())
	h.reply(c, http.StatusOK, t, err)
}

func (h *TodoHandler) DeleteTask(c *gin.Context) {
	h.deleted(c, h.Todos.DeleteTask(c.Request.Context(), middleware.UserID(c), c.Param("id")))
}

// ---- steps ----

func (h *TodoHandler) CreateStep(c *gin.Context) {
	var req stepRequest
	if !h.bind(c, &req) || !requireField(c, "taskId", req.TaskID) {
		return
	}
	st, err := h.Todos.CreateStep(c.Request.Context(), middleware.UserID(c), application.StepInput{
		Title:     req.Title,
		TaskID:    strings.TrimSpace(req.TaskID),
		Completed: req.Completed,
	})
	h.reply(c, http.StatusCreated, st, err)
}

func (h *TodoHandler) UpdateStep(c *gin.Context) {
	var req stepRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := h.Todos.UpdateStep(c.Request.Context(), middleware.UserID(c), c.Param("id"), application.StepInput{
		Title:     req.Title,
		Completed: req.Completed,
	})
	h.reply(c, http.StatusOK, st, err)
}

func (h *TodoHandler) DeleteStep(c *gin.Context) {
	h.deleted(c, h.Todos.DeleteStep(c.Request.Context(), middleware.UserID(c), c.Param("id")))
}
