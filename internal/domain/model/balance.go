package model

import "time"

// Reason codes attached to every ledger mutation.
type Reason string

const (
	ReasonInitialGrant Reason = "INITIAL_GRANT"
	ReasonSolvedPick   Reason = "SOLVED_PICK"
	ReasonOpenPick     Reason = "OPEN_PICK"
)

// Balance is a member's current coin amount. Amount is never negative.
type Balance struct {
	MemberID  MemberID
	Amount    int64
	UpdatedAt time.Time
}

// LedgerEntry records one applied balance mutation.
type LedgerEntry struct {
	ID        string
	MemberID  MemberID
	Delta     int64 // positive for earn, negative for spend
	Balance   int64 // balance after the mutation
	Reason    Reason
	CreatedAt time.Time
}
