// Package service holds the application use cases that sit between the HTTP
// handlers and the repositories.
package service

import (
	"errors"

	"devhub/internal/models"
)

// storeError passes AppErrors through and wraps anything else as an internal error.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
