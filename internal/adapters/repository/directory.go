package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/dojo/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDirectory reads members, questions and images from postgres. The Put
// methods upsert rows and exist for seeding.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory wraps an open connection.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) Member(ctx context.Context, id model.MemberID) (model.Member, error) {
	var row memberModel
	if err := d.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Member{}, fmt.Errorf("%w: %s", model.ErrMemberNotFound, id)
		}
		return model.Member{}, fmt.Errorf("get member: %w", err)
	}
	return row.toEntity(), nil
}

func (d *GormDirectory) Question(ctx context.Context, id model.QuestionID) (model.Question, error) {
	var row questionModel
	if err := d.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Question{}, fmt.Errorf("%w: %s", model.ErrQuestionNotFound, id)
		}
		return model.Question{}, fmt.Errorf("get question: %w", err)
	}
	return row.toEntity(), nil
}

func (d *GormDirectory) QuestionSet(ctx context.Context, id model.QuestionSetID) (model.QuestionSet, error) {
	var row questionSetModel
	if err := d.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.QuestionSet{}, fmt.Errorf("%w: %s", model.ErrQuestionSetNotFound, id)
		}
		return model.QuestionSet{}, fmt.Errorf("get question set: %w", err)
	}
	return d.withItems(ctx, row)
}

// NextReadyQuestionSet returns the READY set with the earliest publish time.
func (d *GormDirectory) NextReadyQuestionSet(ctx context.Context) (model.QuestionSet, error) {
	var row questionSetModel
	if err := d.db.WithContext(ctx).
		Where("status = ?", string(model.QuestionSetReady)).
		Order("published_at ASC").
		Order("id ASC").
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.QuestionSet{}, model.ErrQuestionSetNotReady
		}
		return model.QuestionSet{}, fmt.Errorf("get next question set: %w", err)
	}
	return d.withItems(ctx, row)
}

func (d *GormDirectory) withItems(ctx context.Context, row questionSetModel) (model.QuestionSet, error) {
	var items []questionSetItemModel
	if err := d.db.WithContext(ctx).
		Where("question_set_id = ?", row.ID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return model.QuestionSet{}, fmt.Errorf("list question set items: %w", err)
	}
	ids := make([]model.QuestionID, 0, len(items))
	for _, it := range items {
		ids = append(ids, model.QuestionID(it.QuestionID))
	}
	return model.QuestionSet{
		ID:          model.QuestionSetID(row.ID),
		Status:      model.QuestionSetStatus(row.Status),
		QuestionIDs: ids,
		PublishedAt: row.PublishedAt,
	}, nil
}

func (d *GormDirectory) Image(ctx context.Context, id model.ImageID) (model.Image, error) {
	var row imageModel
	if err := d.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Image{}, fmt.Errorf("%w: %s", model.ErrImageNotFound, id)
		}
		return model.Image{}, fmt.Errorf("get image: %w", err)
	}
	return model.Image{ID: model.ImageID(row.ID), URL: row.URL}, nil
}

func (d *GormDirectory) PutMember(ctx context.Context, m model.Member) error {
	row := memberModel{
		ID:             string(m.ID),
		FullName:       m.FullName,
		ProfileImageID: string(m.ProfileImageID),
		Platform:       string(m.Platform),
		Ordinal:        m.Ordinal,
		Gender:         string(m.Gender),
	}
	return d.upsert(ctx, "id", &row)
}

func (d *GormDirectory) PutQuestion(ctx context.Context, q model.Question) error {
	row := questionModel{ID: string(q.ID), Content: q.Content, EmojiImageID: string(q.EmojiImageID)}
	return d.upsert(ctx, "id", &row)
}

func (d *GormDirectory) PutQuestionSet(ctx context.Context, s model.QuestionSet) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := questionSetModel{ID: string(s.ID), Status: string(s.Status), PublishedAt: s.PublishedAt.UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert question set: %w", err)
		}
		if err := tx.Where("question_set_id = ?", row.ID).Delete(&questionSetItemModel{}).Error; err != nil {
			return fmt.Errorf("clear question set items: %w", err)
		}
		if len(s.QuestionIDs) == 0 {
			return nil
		}
		items := make([]questionSetItemModel, 0, len(s.QuestionIDs))
		for i, qid := range s.QuestionIDs {
			items = append(items, questionSetItemModel{QuestionSetID: row.ID, Position: i, QuestionID: string(qid)})
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert question set items: %w", err)
		}
		return nil
	})
}

func (d *GormDirectory) PutImage(ctx context.Context, img model.Image) error {
	row := imageModel{ID: string(img.ID), URL: img.URL}
	return d.upsert(ctx, "id", &row)
}

func (d *GormDirectory) upsert(ctx context.Context, key string, row any) error {
	if err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		UpdateAll: true,
	}).Create(row).Error; err != nil {
		return fmt.Errorf("upsert %T: %w", row, err)
	}
	return nil
}
