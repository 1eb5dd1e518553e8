// Package repository persists picks and coin balances.
package repository

import (
	"context"

	"github.com/okian/dojo/internal/domain/model"
)

// ReceivedFilter selects picks that targeted one member.
type ReceivedFilter struct {
	PickedID   model.MemberID
	QuestionID model.QuestionID // optional
}

// Store provides transactional access to picks and the coin ledger.
//
// Reads outside InTx see committed state only. A transaction's writes become
// visible all at once when fn returns nil.
type Store interface {
	// InTx runs fn as one atomic unit. Any error from fn discards every write
	// it staged.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Pick returns ErrPickNotFound if id is unknown.
	Pick(ctx context.Context, id model.PickID) (model.Pick, error)
	// ReceivedPicks returns matching picks, newest first.
	ReceivedPicks(ctx context.Context, filter ReceivedFilter) ([]model.Pick, error)
	// PickedCount returns how many picks targeted member.
	PickedCount(ctx context.Context, member model.MemberID) (int, error)

	// Balance returns ErrMemberNotFound if the member has no account.
	Balance(ctx context.Context, member model.MemberID) (model.Balance, error)
	// LedgerEntries returns the member's coin history, newest first.
	LedgerEntries(ctx context.Context, member model.MemberID) ([]model.LedgerEntry, error)
}

// Tx is the write side of one transaction. The *ForUpdate methods serialise
// concurrent transactions touching the same pick or the same balance until
// commit. Callers take pick locks before balance locks.
type Tx interface {
	// InsertPick stores a new pick; ErrDuplicatePick if the picker already
	// answered this question in this set.
	InsertPick(ctx context.Context, p model.Pick) error
	PickForUpdate(ctx context.Context, id model.PickID) (model.Pick, error)
	UpdatePick(ctx context.Context, p model.Pick) error

	// OpenAccount stages the member's balance row. ErrAccountExists if present.
	OpenAccount(ctx context.Context, b model.Balance) error
	BalanceForUpdate(ctx context.Context, member model.MemberID) (model.Balance, error)
	SaveBalance(ctx context.Context, b model.Balance) error
	AppendEntry(ctx context.Context, e model.LedgerEntry) error
}
