package service

import "errors"

var (
	ErrInvalidPage         = errors.New("invalid page request")
	ErrQuestionNotInSet    = errors.New("question is not part of the question set")
	ErrInvalidPickTarget   = errors.New("invalid pick target")
	ErrMissingCollaborator = errors.New("service collaborator not configured")
)
