package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/dojo/internal/domain/model"
)

// MemoryStore is an in-process Store. Committed state sits behind one RWMutex;
// transactions serialise on per-pick and per-member key locks and stage their
// writes until commit.
type MemoryStore struct {
	mu       sync.RWMutex
	picks    map[model.PickID]model.Pick
	pickKeys map[string]model.PickID
	balances map[model.MemberID]model.Balance
	entries  map[model.MemberID][]model.LedgerEntry

	locks *keyLocks
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		picks:    make(map[model.PickID]model.Pick),
		pickKeys: make(map[string]model.PickID),
		balances: make(map[model.MemberID]model.Balance),
		entries:  make(map[model.MemberID][]model.LedgerEntry),
		locks:    newKeyLocks(),
	}
}

// pickOnceKey identifies the (picker, question set, question) a pick answers.
func pickOnceKey(p model.Pick) string {
	return string(p.PickerID) + "|" + string(p.QuestionSetID) + "|" + string(p.QuestionID)
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memTx{
		store:    s,
		held:     make(map[string]struct{}),
		picks:    make(map[model.PickID]model.Pick),
		inserted: make(map[string]model.PickID),
		balances: make(map[model.MemberID]model.Balance),
	}
	defer tx.close()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *MemoryStore) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range tx.picks {
		s.picks[id] = p
	}
	for key, id := range tx.inserted {
		s.pickKeys[key] = id
	}
	for id, b := range tx.balances {
		s.balances[id] = b
	}
	for _, e := range tx.entries {
		s.entries[e.MemberID] = append(s.entries[e.MemberID], e)
	}
}

func (s *MemoryStore) Pick(_ context.Context, id model.PickID) (model.Pick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.picks[id]
	if !ok {
		return model.Pick{}, fmt.Errorf("%w: %s", model.ErrPickNotFound, id)
	}
	return p, nil
}

func (s *MemoryStore) ReceivedPicks(_ context.Context, filter ReceivedFilter) ([]model.Pick, error) {
	s.mu.RLock()
	out := make([]model.Pick, 0)
	for _, p := range s.picks {
		if p.PickedID != filter.PickedID {
			continue
		}
		if filter.QuestionID != "" && p.QuestionID != filter.QuestionID {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, newestFirst)
	return out, nil
}

func newestFirst(a, b model.Pick) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (s *MemoryStore) PickedCount(_ context.Context, member model.MemberID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.picks {
		if p.PickedID == member {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Balance(_ context.Context, member model.MemberID) (model.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[member]
	if !ok {
		return model.Balance{}, fmt.Errorf("%w: %s", model.ErrMemberNotFound, member)
	}
	return b, nil
}

func (s *MemoryStore) LedgerEntries(_ context.Context, member model.MemberID) ([]model.LedgerEntry, error) {
	s.mu.RLock()
	entries := slices.Clone(s.entries[member])
	s.mu.RUnlock()
	slices.Reverse(entries)
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return entries, nil
}

// Count returns the number of stored picks.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.picks)
}

// memTx stages writes and holds key locks until close.
type memTx struct {
	store *MemoryStore
	held  map[string]struct{}
	done  bool

	picks    map[model.PickID]model.Pick
	inserted map[string]model.PickID
	balances map[model.MemberID]model.Balance
	entries  []model.LedgerEntry
}

func (tx *memTx) acquire(ctx context.Context, key string) error {
	if tx.done {
		return ErrTxDone
	}
	if _, ok := tx.held[key]; ok {
		return nil
	}
	if err := tx.store.locks.lock(ctx, key); err != nil {
		return err
	}
	tx.held[key] = struct{}{}
	return nil
}

func (tx *memTx) close() {
	tx.done = true
	for key := range tx.held {
		tx.store.locks.unlock(key)
	}
	tx.held = nil
}

func (tx *memTx) InsertPick(ctx context.Context, p model.Pick) error {
	key := pickOnceKey(p)
	if err := tx.acquire(ctx, "pickonce:"+key); err != nil {
		return err
	}
	if err := tx.acquire(ctx, "pick:"+string(p.ID)); err != nil {
		return err
	}
	if _, ok := tx.inserted[key]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicatePick, key)
	}
	if _, ok := tx.picks[p.ID]; ok {
		return fmt.Errorf("%w: id %s", model.ErrDuplicatePick, p.ID)
	}

	tx.store.mu.RLock()
	_, keyTaken := tx.store.pickKeys[key]
	_, idTaken := tx.store.picks[p.ID]
	tx.store.mu.RUnlock()
	if keyTaken || idTaken {
		return fmt.Errorf("%w: %s", model.ErrDuplicatePick, key)
	}

	tx.picks[p.ID] = p
	tx.inserted[key] = p.ID
	return nil
}

func (tx *memTx) PickForUpdate(ctx context.Context, id model.PickID) (model.Pick, error) {
	if err := tx.acquire(ctx, "pick:"+string(id)); err != nil {
		return model.Pick{}, err
	}
	if p, ok := tx.picks[id]; ok {
		return p, nil
	}
	return tx.store.Pick(ctx, id)
}

func (tx *memTx) UpdatePick(ctx context.Context, p model.Pick) error {
	if _, err := tx.PickForUpdate(ctx, p.ID); err != nil {
		return err
	}
	tx.picks[p.ID] = p
	return nil
}

func (tx *memTx) OpenAccount(ctx context.Context, b model.Balance) error {
	if err := tx.acquire(ctx, "member:"+string(b.MemberID)); err != nil {
		return err
	}
	_, staged := tx.balances[b.MemberID]
	tx.store.mu.RLock()
	_, stored := tx.store.balances[b.MemberID]
	tx.store.mu.RUnlock()
	if staged || stored {
		return fmt.Errorf("%w: %s", model.ErrAccountExists, b.MemberID)
	}
	tx.balances[b.MemberID] = b
	return nil
}

func (tx *memTx) BalanceForUpdate(ctx context.Context, member model.MemberID) (model.Balance, error) {
	if err := tx.acquire(ctx, "member:"+string(member)); err != nil {
		return model.Balance{}, err
	}
	if b, ok := tx.balances[member]; ok {
		return b, nil
	}
	return tx.store.Balance(ctx, member)
}

func (tx *memTx) SaveBalance(ctx context.Context, b model.Balance) error {
	if _, err := tx.BalanceForUpdate(ctx, b.MemberID); err != nil {
		return err
	}
	tx.balances[b.MemberID] = b
	return nil
}

func (tx *memTx) AppendEntry(_ context.Context, e model.LedgerEntry) error {
	if tx.done {
		return ErrTxDone
	}
	tx.entries = append(tx.entries, e)
	return nil
}
