package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type ChatHandler struct {
	sessions *application.SessionService
}

func NewChatHandler(sessions *application.SessionService) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

func sessionJSON(s *domain.Session) gin.H {
	out := gin.H{
		"sessionId":        s.SessionID,
		"status":           s.Status,
		"remainingSeconds": s.RemainingSeconds,
		"createdAt":        s.CreatedAt,
	}
	if s.TherapistID != "" {
		out["therapistId"] = s.TherapistID
	}
	if s.LastActiveTimestamp != nil {
		out["lastActiveTimestamp"] = s.LastActiveTimestamp
	}
	return out
}

func messageJSON(m *domain.Message) gin.H {
	return gin.H{
		"messageId": m.MessageID,
		"sessionId": m.SessionID,
		"sender":    m.Sender,
		"text":      m.Text,
		"createdAt": m.CreatedAt,
	}
}

// StartSession returns the ongoing session, or creates/resumes one.
func (h *ChatHandler) StartSession(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := h.sessions.Start(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionJSON(session)})
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := h.sessions.GetActive(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionJSON(session)})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		SessionID string `json:"sessionId"`
		Text      string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.sessions.SendUserMessage(c.Request.Context(), req.SessionID, userID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": messageJSON(msg)})
}

func (h *ChatHandler) PauseSession(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	session, err := h.sessions.Pause(c.Request.Context(), req.SessionID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionJSON(session)})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	msgs, err := h.sessions.History(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, len(msgs))
	for i, m := range msgs {
		out[i] = messageJSON(m)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out, "total": len(out)})
}
