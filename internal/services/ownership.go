package services

import (
	"errors"

	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/store"
)

// authorize is the ownership gate. Callers run it only after the resource
// has been found, so a missing id is NotFound and a foreign one Forbidden.
func authorize(ownerID, callerID, msg string) error {
	if ownerID != callerID {
		return apperror.Forbidden(msg)
	}
	return nil
}

// storeError maps a store failure to NotFound with msg, or Internal.
func storeError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}
