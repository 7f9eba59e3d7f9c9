package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrLanguageNotTracked  = errors.New("language not tracked for this user")
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrQuizAlreadyAnswered = errors.New("quiz already answered")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	ErrQuizGeneration      = errors.New("failed to generate quiz questions")
	ErrChatNotFound        = errors.New("chat not found")
	ErrProgressConflict    = errors.New("progress record was modified concurrently")
)
