package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stoik/emailapi/internal/models"
	"github.com/stoik/emailapi/services/email-api/internal/store"
)

const (
	IndexBody      = "main index"
	DeletedMessage = "Item successfully deleted"
)

// createEmailRequest uses pointers so a missing field can be told apart from an empty one
type createEmailRequest struct {
	Subject *string `json:"subject" binding:"required"`
	Message *string `json:"message" binding:"required"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, IndexBody)
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListEmails(c *gin.Context) {
	emails, err := s.store.FindAll(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, emails)
}

func (s *Server) handleGetEmail(c *gin.Context) {
	id, ok := emailID(c)
	if !ok {
		return
	}

	email, err := s.store.FindByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, email)
}

func (s *Server) handleCreateEmail(c *gin.Context) {
	var req createEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	email, err := s.store.Create(c.Request.Context(), models.NewEmail{
		Subject: *req.Subject,
		Message: *req.Message,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.requestLogger(c).WithField("email_id", email.ID).Info("Email created")
	c.JSON(http.StatusOK, email)
}

func (s *Server) handleUpdateEmail(c *gin.Context) {
	id, ok := emailID(c)
	if !ok {
		return
	}

	var patch models.EmailPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	email, err := s.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.requestLogger(c).WithField("email_id", email.ID).Info("Email updated")
	c.JSON(http.StatusOK, email)
}

func (s *Server) handleDeleteEmail(c *gin.Context) {
	id, ok := emailID(c)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}

	s.requestLogger(c).WithField("email_id", id).Info("Email deleted")
	c.JSON(http.StatusOK, gin.H{"msg": DeletedMessage})
}

// emailID parses the :id path parameter, writing a 400 when it is not a positive integer
func emailID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return 0, false
	}
	return id, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": store.ErrNotFound.Error()})
		return
	}

	s.requestLogger(c).WithError(err).Error("Store operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
