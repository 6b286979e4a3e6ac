package contract

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidConversation = errors.New("conversation id is empty")
	ErrInvalidMessage      = errors.New("message is empty")
)
