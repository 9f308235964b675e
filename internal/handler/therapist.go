package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type TherapistHandler struct {
	sessions   *application.SessionService
	therapists domain.TherapistRepository
}

func NewTherapistHandler(sessions *application.SessionService, therapists domain.TherapistRepository) *TherapistHandler {
	return &TherapistHandler{sessions: sessions, therapists: therapists}
}

// Reply claims the session for the caller and posts the reply. A losing
// race for an unowned session is a 409; a drained session is a 403.
func (h *TherapistHandler) Reply(c *gin.Context) {
	therapistID := c.GetString("therapist_id")

	var req struct {
		SessionID string `json:"sessionId"`
		Text      string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, session, err := h.sessions.ReplyAsTherapist(c.Request.Context(), req.SessionID, therapistID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": messageJSON(msg),
		"session": sessionJSON(session),
	})
}

func (h *TherapistHandler) ListSessions(c *gin.Context) {
	therapistID := c.GetString("therapist_id")

	assigned, unassigned, err := h.sessions.TherapistSessions(c.Request.Context(), therapistID)
	if err != nil {
		writeError(c, err)
		return
	}

	toJSON := func(sessions []*domain.Session) []gin.H {
		out := make([]gin.H, len(sessions))
		for i, s := range sessions {
			out[i] = sessionJSON(s)
		}
		return out
	}
	c.JSON(http.StatusOK, gin.H{
		"assigned":   toJSON(assigned),
		"unassigned": toJSON(unassigned),
	})
}

func (h *TherapistHandler) GetHistory(c *gin.Context) {
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

// Subscribe registers a browser push subscription for the caller.
func (h *TherapistHandler) Subscribe(c *gin.Context) {
	therapistID := c.GetString("therapist_id")

	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription"})
		return
	}

	sub := domain.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.therapists.AddSubscription(c.Request.Context(), therapistID, sub); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscribed": true})
}
