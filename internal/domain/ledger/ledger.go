// Package ledger applies earn and spend operations to member coin balances.
//
// The ledger never holds state itself. Every operation runs against an
// Accounts view, which is expected to be a transaction that has locked the
// member's balance row, so read-modify-write is atomic per member.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/dojo/internal/domain/model"
)

// Accounts is the persistence view the ledger mutates.
type Accounts interface {
	// BalanceForUpdate loads and locks a member balance for the rest of the
	// enclosing transaction. Returns model.ErrMemberNotFound if no account exists.
	BalanceForUpdate(ctx context.Context, memberID model.MemberID) (model.Balance, error)
	SaveBalance(ctx context.Context, b model.Balance) error
	AppendEntry(ctx context.Context, e model.LedgerEntry) error
}

// IDGenerator produces ledger entry ids.
type IDGenerator func() string

// Ledger earns and spends coins.
type Ledger struct {
	newID IDGenerator
	now   func() time.Time
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithIDGenerator overrides how ledger entry ids are produced.
func WithIDGenerator(gen IDGenerator) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a Ledger.
func New(newID IDGenerator, opts ...Option) *Ledger {
	l := &Ledger{
		newID: newID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Earn adds amount to the member's balance. Amount must not be negative.
func (l *Ledger) Earn(ctx context.Context, acc Accounts, memberID model.MemberID, amount int64, reason model.Reason) (model.Balance, error) {
	if amount < 0 {
		return model.Balance{}, fmt.Errorf("%w: earn %d", model.ErrInvalidAmount, amount)
	}
	return l.apply(ctx, acc, memberID, amount, reason)
}

// Spend subtracts amount from the member's balance, failing with
// model.ErrInsufficientFunds when the balance is lower than amount.
func (l *Ledger) Spend(ctx context.Context, acc Accounts, memberID model.MemberID, amount int64, reason model.Reason) (model.Balance, error) {
	if amount < 0 {
		return model.Balance{}, fmt.Errorf("%w: spend %d", model.ErrInvalidAmount, amount)
	}
	return l.apply(ctx, acc, memberID, -amount, reason)
}

func (l *Ledger) apply(ctx context.Context, acc Accounts, memberID model.MemberID, delta int64, reason model.Reason) (model.Balance, error) {
	current, err := acc.BalanceForUpdate(ctx, memberID)
	if err != nil {
		return model.Balance{}, err
	}
	next := current.Amount + delta
	if next < 0 {
		return current, fmt.Errorf("%w: member %s has %d, needs %d", model.ErrInsufficientFunds, memberID, current.Amount, -delta)
	}

	now := l.now()
	updated := model.Balance{MemberID: memberID, Amount: next, UpdatedAt: now}
	if err := acc.SaveBalance(ctx, updated); err != nil {
		return current, fmt.Errorf("save balance: %w", err)
	}
	entry := model.LedgerEntry{
		ID:        l.newID(),
		MemberID:  memberID,
		Delta:     delta,
		Balance:   next,
		Reason:    reason,
		CreatedAt: now,
	}
	if err := acc.AppendEntry(ctx, entry); err != nil {
		return current, fmt.Errorf("append ledger entry: %w", err)
	}
	return updated, nil
}
