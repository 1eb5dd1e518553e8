package model

import "time"

// Question is one prompt members answer by picking someone.
type Question struct {
	ID           QuestionID
	Content      string
	EmojiImageID ImageID
}

// QuestionSetStatus tracks where a question set is in its rotation.
type QuestionSetStatus string

const (
	QuestionSetReady    QuestionSetStatus = "READY"
	QuestionSetActive   QuestionSetStatus = "ACTIVE"
	QuestionSetTerminal QuestionSetStatus = "TERMINATED"
)

// QuestionSet is a published round of questions.
type QuestionSet struct {
	ID          QuestionSetID
	Status      QuestionSetStatus
	QuestionIDs []QuestionID
	PublishedAt time.Time
}

// Image is a resolved image reference.
type Image struct {
	ID  ImageID
	URL string
}
