package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/tool"
)

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content" binding:"required"`
}

type calculatorRequest struct {
	Expression string `json:"expression" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMetricsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.recorder.Snapshot())
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "user"
	}
	if role != "user" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be \"user\""})
		return
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	result, err := s.engine.HandleTurn(c.Request.Context(), contractx.Turn{
		ConversationID: conversationID,
		Role:           role,
		Content:        req.Content,
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := "something went wrong handling your message"
		if errors.Is(err, contractx.ErrValidation) ||
			errors.Is(err, contractx.ErrInvalidConversation) ||
			errors.Is(err, contractx.ErrInvalidMessage) {
			status = http.StatusBadRequest
			message = err.Error()
		} else {
			log.Error().Err(err).Str("conversation_id", conversationID).Msg("chat turn failed")
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCalculatorTool(c *gin.Context) {
	var req calculatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expression is required"})
		return
	}
	s.runTool(c, "calculator", tool.Request{Query: req.Expression})
}

func (s *Server) handleProductsTool(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	s.runTool(c, "products", tool.Request{Query: query})
}

func (s *Server) handleOutletsTool(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	s.runTool(c, "outlets", tool.Request{Query: query})
}

func (s *Server) runTool(c *gin.Context, name string, req tool.Request) {
	t, ok := s.tools[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool is not configured"})
		return
	}

	resp, err := t.Run(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("tool", name).Msg("direct tool call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tool call failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": resp.Success,
		"message": resp.Content,
		"data":    resp.Data,
	})
}
