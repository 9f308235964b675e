package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kingsley-codes/we-listen/internal/application"
)

type AuthHandler struct {
	auth *application.AuthService
}

func NewAuthHandler(auth *application.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) SignupUser(c *gin.Context) {
	var req struct {
		Username     string `json:"username"`
		Password     string `json:"password"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, user, err := h.auth.SignupUser(c.Request.Context(), req.Username, req.Password, req.ReferralCode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"userId":            user.UserID,
			"username":          user.Username,
			"freeCreditSeconds": user.FreeCreditSeconds,
			"paidCreditSeconds": user.PaidCreditSeconds,
			"unlimitedPlan":     user.UnlimitedPlan,
		},
	})
}

func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, user, err := h.auth.LoginUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"userId":            user.UserID,
			"username":          user.Username,
			"freeCreditSeconds": user.FreeCreditSeconds,
			"paidCreditSeconds": user.PaidCreditSeconds,
			"unlimitedPlan":     user.UnlimitedPlan,
		},
	})
}

func (h *AuthHandler) SignupTherapist(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	therapist, err := h.auth.SignupTherapist(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"therapist": gin.H{
			"therapistId": therapist.TherapistID,
			"name":        therapist.Name,
		},
	})
}

func (h *AuthHandler) LoginTherapist(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, therapist, err := h.auth.LoginTherapist(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"therapist": gin.H{
			"therapistId": therapist.TherapistID,
			"name":        therapist.Name,
		},
	})
}
