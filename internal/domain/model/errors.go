package model

import "errors"

// Sentinel kinds shared by the pick engine. Callers match them with errors.Is.
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionSetNotFound = errors.New("question set not found")
	ErrQuestionSetNotReady = errors.New("no question set is ready")
	ErrImageNotFound       = errors.New("image not found")
	ErrPickNotFound        = errors.New("pick not found")
	ErrDuplicatePick       = errors.New("pick already exists for question")
	ErrAccessDenied        = errors.New("access denied")
	ErrAlreadyOpened       = errors.New("pick item already opened")
	ErrInvalidRevealItem   = errors.New("invalid reveal item")
	ErrInsufficientFunds   = errors.New("insufficient coin balance")
	ErrInvalidAmount       = errors.New("invalid coin amount")
	ErrAccountExists       = errors.New("coin account already exists")
)
