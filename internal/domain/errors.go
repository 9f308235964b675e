package domain

import "errors"

// validation
var (
	ErrInvalidUsername = errors.New("username must be 2-50 alphanumeric characters")
	ErrInvalidPassword = errors.New("invalid password")
	ErrMissingText     = errors.New("sessionId and text are required")
	ErrNegativeSeconds = errors.New("seconds must be a non-negative integer")
	ErrInvalidPackage  = errors.New("invalid package amount")
	ErrInvalidReferral = errors.New("invalid referral code")
	ErrReferralUsedUp  = errors.New("referral code has exceeded usage limit")
)

// not found
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrPaymentNotFound   = errors.New("payment not found")
)

// payments
var (
	ErrPaymentNotSuccessful = errors.New("payment not successful")
)

// state machine
var (
	ErrSessionClaimed   = errors.New("session already claimed by another therapist")
	ErrSessionLocked    = errors.New("session locked or expired, payment required")
	ErrSessionNotActive = errors.New("session is not active")
	ErrNotSessionOwner  = errors.New("not your session")
	ErrVersionConflict  = errors.New("session modified concurrently")
)

// auth
var (
	ErrUserAlreadyExists = errors.New("username taken")
	ErrBadCredentials    = errors.New("invalid credentials")
)
