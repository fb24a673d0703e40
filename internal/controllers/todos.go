package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknest/internal/middleware"
	"tasknest/internal/services"
	"tasknest/internal/validation"
)

// TodoController serves the todo routes. The owner is always the session's
// user, never a field of the request.
type TodoController struct {
	todos  *services.TodoService
	logger *slog.Logger
}

func NewTodoController(todos *services.TodoService, logger *slog.Logger) *TodoController {
	return &TodoController{todos: todos, logger: logger}
}

func (h *TodoController) List(c *gin.Context) {
	list, err := h.todos.ListFor(c.Request.Context(), middleware.CurrentSession(c).Email)
	if err != nil {
		fail(c, h.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "todos": list})
}

type addTodoPayload struct {
	Todo string `json:"todo" form:"todo"`
}

func (h *TodoController) Add(c *gin.Context) {
	var p addTodoPayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, h.logger, "", &validation.Error{Message: msgBadInput})
		return
	}
	todo, err := h.todos.Add(c.Request.Context(), middleware.CurrentSession(c).Email, p.Todo)
	if err != nil {
		fail(c, h.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Todo added successfully",
		"id":        todo.ID,
		"todo_text": todo.Text,
	})
}

type editTodoPayload struct {
	ID   uint   `json:"id" form:"id" binding:"required"`
	Text string `json:"todo_text" form:"todo_text"`
}

func (h *TodoController) Edit(c *gin.Context) {
	var p editTodoPayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, h.logger, "", &validation.Error{Message: msgBadInput})
		return
	}
	if err := h.todos.Edit(c.Request.Context(), middleware.CurrentSession(c).Email, p.ID, p.Text); err != nil {
		fail(c, h.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Todo updated successfully"})
}

type deleteTodoPayload struct {
	ID uint `json:"id" form:"id" binding:"required"`
}

func (h *TodoController) Delete(c *gin.Context) {
	var p deleteTodoPayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, h.logger, "", &validation.Error{Message: msgBadInput})
		return
	}
	if err := h.todos.Remove(c.Request.Context(), middleware.CurrentSession(c).Email, p.ID); err != nil {
		fail(c, h.logger, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Todo deleted successfully"})
}
