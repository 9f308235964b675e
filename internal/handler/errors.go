package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped is
// a 500 and gets logged; sentinel errors are the client's fault and are not.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTherapistNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionClaimed),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionLocked),
		errors.Is(err, domain.ErrNotSessionOwner):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrBadCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrMissingText),
		errors.Is(err, domain.ErrNegativeSeconds),
		errors.Is(err, domain.ErrInvalidPackage),
		errors.Is(err, domain.ErrInvalidReferral),
		errors.Is(err, domain.ErrReferralUsedUp),
		errors.Is(err, domain.ErrPaymentNotSuccessful),
		errors.Is(err, domain.ErrSessionNotActive):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
