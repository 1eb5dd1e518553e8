package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/dojo/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the postgres-backed Store. *ForUpdate reads take row locks
// that are held until the surrounding transaction ends.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps an open connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db})
	})
}

func (s *GormStore) Pick(ctx context.Context, id model.PickID) (model.Pick, error) {
	return findPick(s.db.WithContext(ctx), id)
}

func (s *GormStore) ReceivedPicks(ctx context.Context, filter ReceivedFilter) ([]model.Pick, error) {
	q := s.db.WithContext(ctx).Model(&pickModel{}).Where("picked_id = ?", string(filter.PickedID))
	if filter.QuestionID != "" {
		q = q.Where("question_id = ?", string(filter.QuestionID))
	}
	var rows []pickModel
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list received picks: %w", err)
	}
	out := make([]model.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (s *GormStore) PickedCount(ctx context.Context, member model.MemberID) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&pickModel{}).
		Where("picked_id = ?", string(member)).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count received picks: %w", err)
	}
	return int(n), nil
}

func (s *GormStore) Balance(ctx context.Context, member model.MemberID) (model.Balance, error) {
	return findBalance(s.db.WithContext(ctx), member)
}

func (s *GormStore) LedgerEntries(ctx context.Context, member model.MemberID) ([]model.LedgerEntry, error) {
	var rows []ledgerEntryModel
	if err := s.db.WithContext(ctx).
		Where("member_id = ?", string(member)).
		Order("seq DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	out := make([]model.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func findPick(db *gorm.DB, id model.PickID) (model.Pick, error) {
	var row pickModel
	if err := db.Where("id = ?", string(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Pick{}, fmt.Errorf("%w: %s", model.ErrPickNotFound, id)
		}
		return model.Pick{}, fmt.Errorf("get pick: %w", err)
	}
	return row.toEntity(), nil
}

func findBalance(db *gorm.DB, member model.MemberID) (model.Balance, error) {
	var row balanceModel
	if err := db.Where("member_id = ?", string(member)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Balance{}, fmt.Errorf("%w: %s", model.ErrMemberNotFound, member)
		}
		return model.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return row.toEntity(), nil
}

type gormTx struct {
	db *gorm.DB
}

func (tx *gormTx) InsertPick(ctx context.Context, p model.Pick) error {
	row := pickModelFromEntity(p)
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", model.ErrDuplicatePick, pickOnceKey(p))
		}
		return fmt.Errorf("insert pick: %w", err)
	}
	return nil
}

func (tx *gormTx) PickForUpdate(ctx context.Context, id model.PickID) (model.Pick, error) {
	return findPick(tx.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (tx *gormTx) UpdatePick(ctx context.Context, p model.Pick) error {
	row := pickModelFromEntity(p)
	res := tx.db.WithContext(ctx).Model(&pickModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"gender_open":           row.GenderOpen,
			"platform_open":         row.PlatformOpen,
			"mid_initial_name_open": row.MidInitialNameOpen,
			"full_name_open":        row.FullNameOpen,
			"updated_at":            row.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update pick: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", model.ErrPickNotFound, p.ID)
	}
	return nil
}

func (tx *gormTx) OpenAccount(ctx context.Context, b model.Balance) error {
	row := balanceModel{MemberID: string(b.MemberID), Amount: b.Amount, UpdatedAt: b.UpdatedAt.UTC()}
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", model.ErrAccountExists, b.MemberID)
		}
		return fmt.Errorf("open account: %w", err)
	}
	return nil
}

func (tx *gormTx) BalanceForUpdate(ctx context.Context, member model.MemberID) (model.Balance, error) {
	return findBalance(tx.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), member)
}

func (tx *gormTx) SaveBalance(ctx context.Context, b model.Balance) error {
	res := tx.db.WithContext(ctx).Model(&balanceModel{}).
		Where("member_id = ?", string(b.MemberID)).
		Updates(map[string]any{
			"amount":     b.Amount,
			"updated_at": b.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("save balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", model.ErrMemberNotFound, b.MemberID)
	}
	return nil
}

func (tx *gormTx) AppendEntry(ctx context.Context, e model.LedgerEntry) error {
	row := ledgerEntryModelFromEntity(e)
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}
