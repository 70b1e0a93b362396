package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-modsynth/dsp/patch"
	"github.com/cwbudde/algo-modsynth/internal/assistant"
	"github.com/cwbudde/algo-modsynth/internal/logger"
)

var errAssistantDisabled = errors.New("assistant is not configured")

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type applyRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) requireAssistant(c *gin.Context) bool {
	if s.assistant == nil {
		errorJSON(c, http.StatusServiceUnavailable, errAssistantDisabled)
		return false
	}
	return true
}

func (s *Server) getChat(c *gin.Context) {
	if !s.requireAssistant(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversationId": s.assistant.ConversationID(),
		"model":          s.assistant.Model(),
		"messages":       s.assistant.History(),
	})
}

func (s *Server) postChat(c *gin.Context) {
	if !s.requireAssistant(c) {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	reply := s.assistant.Ask(c.Request.Context(), req.Message)
	if reply.Err != nil {
		fields := logger.WithContext(c)
		fields["conversation_id"] = reply.ConversationID
		logger.Warn("chat request failed", fields)

		status := http.StatusBadGateway
		switch {
		case errors.Is(reply.Err, assistant.ErrNoProvider), errors.Is(reply.Err, assistant.ErrClosed):
			status = http.StatusServiceUnavailable
		case errors.Is(reply.Err, patch.ErrInvalidDocument):
			// The reply arrived; only its patch was unusable.
			c.JSON(http.StatusOK, gin.H{"reply": reply, "error": reply.Err.Error()})
			return
		}
		errorJSON(c, status, reply.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (s *Server) clearChat(c *gin.Context) {
	if !s.requireAssistant(c) {
		return
	}
	s.assistant.ClearHistory()
	c.JSON(http.StatusOK, gin.H{"conversationId": s.assistant.ConversationID()})
}

// applyChat imports the patch contained in an assistant reply.
func (s *Server) applyChat(c *gin.Context) {
	if !s.requireAssistant(c) {
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	res, err := s.assistant.ApplyReply(req.Text)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getModels(c *gin.Context) {
	if !s.requireAssistant(c) {
		return
	}
	models, err := s.assistant.Models(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, assistant.ErrNoProvider) {
			status = http.StatusServiceUnavailable
		}
		errorJSON(c, status, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models, "selected": s.assistant.Model()})
}
