// Package store defines the error taxonomy shared by the data stores. The
// admin API maps these to HTTP statuses; the bot renders them as chat
// messages. Storage failures are a separate kind, storage.ErrUnavailable.
package store

import "errors"

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrInsufficientFunds = errors.New("insufficient funds") // 402
)
