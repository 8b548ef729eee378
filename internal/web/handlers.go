package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/model"
)

func (s *Server) handleGetTasks(c *gin.Context) {
	tasks, err := s.backend.GetTasks(c)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	s.log.Debug().Int("count", len(tasks)).Msg("fetched tasks")
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req model.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	t, err := s.backend.CreateTask(c, req)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id := c.Param("id")
	var req model.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	t, err := s.backend.UpdateTask(c, id, req)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	if t == nil {
		abortNotFound(c, "task", id)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id := c.Param("id")
	ok, err := s.backend.DeleteTask(c, id)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	if !ok {
		abortNotFound(c, "task", id)
		return
	}
	c.Status(http.StatusNoContent)
}

type bulkUpdateRequest struct {
	Updates []model.TaskUpdate `json:"updates"`
}

func (s *Server) handleBulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	tasks, err := s.backend.BulkUpdateTasks(c, req.Updates)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type subtaskRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddSubtask(c *gin.Context) {
	var req subtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	s.respondTask(c, func() (*model.Task, error) {
		return s.backend.AddSubtask(c, c.Param("id"), req.Title)
	})
}

func (s *Server) handleUpdateSubtask(c *gin.Context) {
	var req subtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	s.respondTask(c, func() (*model.Task, error) {
		return s.backend.UpdateSubtask(c, c.Param("id"), c.Param("sid"), req.Title)
	})
}

func (s *Server) handleToggleSubtask(c *gin.Context) {
	s.respondTask(c, func() (*model.Task, error) {
		return s.backend.ToggleSubtask(c, c.Param("id"), c.Param("sid"))
	})
}

func (s *Server) handleDeleteSubtask(c *gin.Context) {
	s.respondTask(c, func() (*model.Task, error) {
		return s.backend.DeleteSubtask(c, c.Param("id"), c.Param("sid"))
	})
}

// respondTask writes the task returned by a subtask edit; nil means the task is gone.
func (s *Server) respondTask(c *gin.Context, call func() (*model.Task, error)) {
	t, err := call()
	if err != nil {
		s.abortErr(c, err)
		return
	}
	if t == nil {
		abortNotFound(c, "task", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleGetCategories(c *gin.Context) {
	cats, err := s.backend.GetCategories(c)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req model.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	cat, err := s.backend.CreateCategory(c, req)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id := c.Param("id")
	var req model.CategoryPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	cat, err := s.backend.UpdateCategory(c, id, req)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	if cat == nil {
		abortNotFound(c, "category", id)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id := c.Param("id")
	ok, err := s.backend.DeleteCategory(c, id)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	if !ok {
		abortNotFound(c, "category", id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListReminders(c *gin.Context) {
	rems, err := s.backend.ListReminders(c)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rems)
}

func (s *Server) handleCreateReminder(c *gin.Context) {
	var req model.ReminderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	r, err := s.backend.CreateReminder(c, req)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) handleDeleteReminder(c *gin.Context) {
	id := c.Param("id")
	ok, err := s.backend.DeleteReminder(c, id)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	if !ok {
		abortNotFound(c, "reminder", id)
		return
	}
	c.Status(http.StatusNoContent)
}

type sentRequest struct {
	SentAt time.Time `json:"sentAt"`
}

func (s *Server) handleMarkReminderSent(c *gin.Context) {
	var req sentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, errInvalidRequestBody)
		return
	}
	if req.SentAt.IsZero() {
		req.SentAt = time.Now().UTC()
	}
	if err := s.backend.MarkReminderSent(c, c.Param("id"), req.SentAt); err != nil {
		s.abortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
