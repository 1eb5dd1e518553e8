// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// SkipMemberID is the target recorded when a picker explicitly skips a question.
const SkipMemberID MemberID = "SKIP"

// UnknownMemberID replaces the picker id in views where the identity is still hidden.
const UnknownMemberID MemberID = "UNKNOWN"

type (
	PickID          string
	QuestionID      string
	QuestionSetID   string
	QuestionSheetID string
)

// RevealItem is one attribute of the picker that the picked member can unlock.
type RevealItem uint8

const (
	RevealGender RevealItem = iota + 1
	RevealPlatform
	RevealMidInitialName
	RevealFullName
)

// RevealItems lists every item in presentation order.
var RevealItems = []RevealItem{RevealGender, RevealPlatform, RevealMidInitialName, RevealFullName}

var revealItemNames = map[RevealItem]string{
	RevealGender:         "GENDER",
	RevealPlatform:       "PLATFORM",
	RevealMidInitialName: "MID_INITIAL_NAME",
	RevealFullName:       "FULL_NAME",
}

func (i RevealItem) String() string {
	if name, ok := revealItemNames[i]; ok {
		return name
	}
	return fmt.Sprintf("RevealItem(%d)", uint8(i))
}

// Valid reports whether i is one of the known reveal items.
func (i RevealItem) Valid() bool {
	_, ok := revealItemNames[i]
	return ok
}

// ParseRevealItem parses the wire name of a reveal item, case-insensitively.
func ParseRevealItem(s string) (RevealItem, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for item, name := range revealItemNames {
		if name == want {
			return item, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRevealItem, s)
}

// OpenSet is the set of opened reveal items, one bit per item.
type OpenSet uint8

// allOpen has a bit for every known reveal item.
var allOpen = func() OpenSet {
	var s OpenSet
	for _, item := range RevealItems {
		s = s.With(item)
	}
	return s
}()

func bit(item RevealItem) OpenSet { return OpenSet(1) << (item - 1) }

// Has reports whether item is open.
func (s OpenSet) Has(item RevealItem) bool { return item.Valid() && s&bit(item) != 0 }

// With returns s with item opened. Bits are never cleared.
func (s OpenSet) With(item RevealItem) OpenSet {
	if !item.Valid() {
		return s
	}
	return s | bit(item)
}

// All reports whether every reveal item is open.
func (s OpenSet) All() bool { return s&allOpen == allOpen }

// Items returns the opened items in presentation order.
func (s OpenSet) Items() []RevealItem {
	items := make([]RevealItem, 0, len(RevealItems))
	for _, item := range RevealItems {
		if s.Has(item) {
			items = append(items, item)
		}
	}
	return items
}

// Pick is one anonymous selection of PickedID by PickerID in answer to a question.
// Reference ids are fixed at creation; only Opened and UpdatedAt change.
type Pick struct {
	ID              PickID
	QuestionID      QuestionID
	QuestionSetID   QuestionSetID
	QuestionSheetID QuestionSheetID
	PickerID        MemberID
	PickedID        MemberID
	Opened          OpenSet
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPick constructs a pick with nothing opened.
func NewPick(id PickID, question QuestionID, set QuestionSetID, sheet QuestionSheetID, picker, picked MemberID, now time.Time) Pick {
	return Pick{
		ID:              id,
		QuestionID:      question,
		QuestionSetID:   set,
		QuestionSheetID: sheet,
		PickerID:        picker,
		PickedID:        picked,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsSkip reports whether the pick records a skipped question.
func (p Pick) IsSkip() bool { return p.PickedID == SkipMemberID }

// IsOpened reports whether item was already revealed.
func (p Pick) IsOpened(item RevealItem) bool { return p.Opened.Has(item) }

// PickerIDOpen reports whether every item is open, which discloses the picker id.
func (p Pick) PickerIDOpen() bool { return p.Opened.All() }

// Authorize fails with ErrAccessDenied unless requester received the pick.
func (p Pick) Authorize(requester MemberID) error {
	if p.IsSkip() || p.PickedID != requester {
		return fmt.Errorf("%w: member %s is not the target of pick %s", ErrAccessDenied, requester, p.ID)
	}
	return nil
}

// Open returns a copy of p with item revealed.
func (p Pick) Open(item RevealItem, now time.Time) (Pick, error) {
	if !item.Valid() {
		return p, fmt.Errorf("%w: %d", ErrInvalidRevealItem, uint8(item))
	}
	if p.Opened.Has(item) {
		return p, fmt.Errorf("%w: %s on pick %s", ErrAlreadyOpened, item, p.ID)
	}
	p.Opened = p.Opened.With(item)
	p.UpdatedAt = now
	return p, nil
}
