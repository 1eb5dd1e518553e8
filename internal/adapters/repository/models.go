package repository

import (
	"time"

	"github.com/okian/dojo/internal/domain/model"
)

type pickModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	QuestionSheetID    string    `gorm:"column:question_sheet_id;not null"`
	QuestionSetID      string    `gorm:"column:question_set_id;not null;uniqueIndex:ux_picks_once,priority:2"`
	QuestionID         string    `gorm:"column:question_id;not null;uniqueIndex:ux_picks_once,priority:3"`
	PickerID           string    `gorm:"column:picker_id;not null;uniqueIndex:ux_picks_once,priority:1"`
	PickedID           string    `gorm:"column:picked_id;not null;index:ix_picks_picked"`
	GenderOpen         bool      `gorm:"column:gender_open;not null;default:false"`
	PlatformOpen       bool      `gorm:"column:platform_open;not null;default:false"`
	MidInitialNameOpen bool      `gorm:"column:mid_initial_name_open;not null;default:false"`
	FullNameOpen       bool      `gorm:"column:full_name_open;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;index:ix_picks_picked"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (pickModel) TableName() string {
	return "picks"
}

func pickModelFromEntity(p model.Pick) pickModel {
	return pickModel{
		ID:                 string(p.ID),
		QuestionSheetID:    string(p.QuestionSheetID),
		QuestionSetID:      string(p.QuestionSetID),
		QuestionID:         string(p.QuestionID),
		PickerID:           string(p.PickerID),
		PickedID:           string(p.PickedID),
		GenderOpen:         p.Opened.Has(model.RevealGender),
		PlatformOpen:       p.Opened.Has(model.RevealPlatform),
		MidInitialNameOpen: p.Opened.Has(model.RevealMidInitialName),
		FullNameOpen:       p.Opened.Has(model.RevealFullName),
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
	}
}

func (m pickModel) toEntity() model.Pick {
	var opened model.OpenSet
	for item, open := range map[model.RevealItem]bool{
		model.RevealGender:         m.GenderOpen,
		model.RevealPlatform:       m.PlatformOpen,
		model.RevealMidInitialName: m.MidInitialNameOpen,
		model.RevealFullName:       m.FullNameOpen,
	} {
		if open {
			opened = opened.With(item)
		}
	}
	return model.Pick{
		ID:              model.PickID(m.ID),
		QuestionID:      model.QuestionID(m.QuestionID),
		QuestionSetID:   model.QuestionSetID(m.QuestionSetID),
		QuestionSheetID: model.QuestionSheetID(m.QuestionSheetID),
		PickerID:        model.MemberID(m.PickerID),
		PickedID:        model.MemberID(m.PickedID),
		Opened:          opened,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type balanceModel struct {
	MemberID  string    `gorm:"column:member_id;primaryKey"`
	Amount    int64     `gorm:"column:amount;not null;check:chk_coin_balances_non_negative,amount >= 0"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (balanceModel) TableName() string {
	return "coin_balances"
}

func (m balanceModel) toEntity() model.Balance {
	return model.Balance{
		MemberID:  model.MemberID(m.MemberID),
		Amount:    m.Amount,
		UpdatedAt: m.UpdatedAt,
	}
}

type ledgerEntryModel struct {
	Seq       int64     `gorm:"column:seq;autoIncrement"`
	ID        string    `gorm:"column:id;primaryKey"`
	MemberID  string    `gorm:"column:member_id;not null;index"`
	Delta     int64     `gorm:"column:delta;not null"`
	Balance   int64     `gorm:"column:balance;not null"`
	Reason    string    `gorm:"column:reason;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ledgerEntryModel) TableName() string {
	return "coin_ledger_entries"
}

func ledgerEntryModelFromEntity(e model.LedgerEntry) ledgerEntryModel {
	return ledgerEntryModel{
		ID:        e.ID,
		MemberID:  string(e.MemberID),
		Delta:     e.Delta,
		Balance:   e.Balance,
		Reason:    string(e.Reason),
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func (m ledgerEntryModel) toEntity() model.LedgerEntry {
	return model.LedgerEntry{
		ID:        m.ID,
		MemberID:  model.MemberID(m.MemberID),
		Delta:     m.Delta,
		Balance:   m.Balance,
		Reason:    model.Reason(m.Reason),
		CreatedAt: m.CreatedAt,
	}
}

type memberModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	FullName       string `gorm:"column:full_name;not null"`
	ProfileImageID string `gorm:"column:profile_image_id"`
	Platform       string `gorm:"column:platform;not null"`
	Ordinal        int    `gorm:"column:ordinal;not null"`
	Gender         string `gorm:"column:gender;not null"`
}

func (memberModel) TableName() string {
	return "members"
}

func (m memberModel) toEntity() model.Member {
	return model.Member{
		ID:             model.MemberID(m.ID),
		FullName:       m.FullName,
		ProfileImageID: model.ImageID(m.ProfileImageID),
		Platform:       model.ParsePlatform(m.Platform),
		Ordinal:        m.Ordinal,
		Gender:         model.ParseGender(m.Gender),
	}
}

type questionModel struct {
	ID           string `gorm:"column:id;primaryKey"`
	Content      string `gorm:"column:content;not null"`
	EmojiImageID string `gorm:"column:emoji_image_id"`
}

func (questionModel) TableName() string {
	return "questions"
}

func (m questionModel) toEntity() model.Question {
	return model.Question{
		ID:           model.QuestionID(m.ID),
		Content:      m.Content,
		EmojiImageID: model.ImageID(m.EmojiImageID),
	}
}

type questionSetModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Status      string    `gorm:"column:status;not null;index"`
	PublishedAt time.Time `gorm:"column:published_at"`
}

func (questionSetModel) TableName() string {
	return "question_sets"
}

type questionSetItemModel struct {
	QuestionSetID string `gorm:"column:question_set_id;primaryKey"`
	Position      int    `gorm:"column:position;primaryKey"`
	QuestionID    string `gorm:"column:question_id;not null"`
}

func (questionSetItemModel) TableName() string {
	return "question_set_items"
}

type imageModel struct {
	ID  string `gorm:"column:id;primaryKey"`
	URL string `gorm:"column:url;not null"`
}

func (imageModel) TableName() string {
	return "images"
}
