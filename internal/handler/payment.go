package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// SignatureVerifier checks a webhook body against its provider signature.
type SignatureVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

type PaymentHandler struct {
	payments *application.PaymentService
	users    domain.UserRepository
	verifier SignatureVerifier
}

func NewPaymentHandler(payments *application.PaymentService, users domain.UserRepository, verifier SignatureVerifier) *PaymentHandler {
	return &PaymentHandler{payments: payments, users: users, verifier: verifier}
}

func (h *PaymentHandler) Initialize(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Amount    int64  `json:"amount"`
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	authorizationURL, reference, err := h.payments.Initialize(c.Request.Context(), user, req.Amount, req.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authorizationUrl": authorizationURL,
		"reference":        reference,
	})
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")

	payment, err := h.payments.Verify(c.Request.Context(), reference)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment": gin.H{
			"reference":       payment.Reference,
			"status":          payment.Status,
			"amount":          payment.Amount,
			"creditedSeconds": payment.CreditedSeconds,
		},
	})
}

// Webhook handles provider callbacks. The signature covers the raw body, so
// the body is read before any JSON binding. An unverifiable signature is a
// 401; everything past verification answers 200 so the provider stops
// retrying events we have already recorded.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !h.verifier.VerifySignature(body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad signature"})
		return
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	if event.Event == "charge.success" && event.Data.Reference != "" {
		if err := h.payments.ConfirmAsync(c.Request.Context(), event.Data.Reference); err != nil {
			log.Printf("[ERROR] webhook credit %s: %v", event.Data.Reference, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
