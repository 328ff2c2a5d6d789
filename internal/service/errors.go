package service

import (
	"errors"

	"github.com/shinyyama/uniforme-store/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrPaymentProvider  = errors.New("payment provider error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnknownAction    = errors.New("unknown action")
)

// translate maps repository errors onto service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrNotPending):
		return ErrAlreadyProcessed
	default:
		return err
	}
}
