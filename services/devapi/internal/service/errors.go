package service

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPastDateTime    = errors.New("start time is in the past")
	ErrSlotUnavailable = errors.New("time slot is not available")
	ErrQueueClosed     = errors.New("queue is closed")
	ErrNotInQueue      = errors.New("not in queue")
	ErrInvalidOTP      = errors.New("invalid or expired code")
	ErrForbidden       = errors.New("forbidden")
)
