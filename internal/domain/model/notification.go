package model

import "time"

// PickedNotification tells a member they were picked. It never names the picker.
type PickedNotification struct {
	PickID     PickID
	PickedID   MemberID
	QuestionID QuestionID
	CreatedAt  time.Time
}
