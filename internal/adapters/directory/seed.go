package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/dojo/internal/domain/model"
)

// Sentinel kinds for seed errors.
var (
	ErrInvalidSeed = errors.New("invalid directory seed")
)

// Seed is the YAML shape of a directory seed file.
type Seed struct {
	Images       []SeedImage       `koanf:"images"`
	Members      []SeedMember      `koanf:"members"`
	Questions    []SeedQuestion    `koanf:"questions"`
	QuestionSets []SeedQuestionSet `koanf:"question_sets"`
}

type SeedImage struct {
	ID  string `koanf:"id"`
	URL string `koanf:"url"`
}

type SeedMember struct {
	ID             string `koanf:"id"`
	FullName       string `koanf:"full_name"`
	Gender         string `koanf:"gender"`
	Platform       string `koanf:"platform"`
	Ordinal        int    `koanf:"ordinal"`
	ProfileImageID string `koanf:"profile_image_id"`
}

type SeedQuestion struct {
	ID           string `koanf:"id"`
	Content      string `koanf:"content"`
	EmojiImageID string `koanf:"emoji_image_id"`
}

type SeedQuestionSet struct {
	ID          string   `koanf:"id"`
	Status      string   `koanf:"status"`
	PublishedAt string   `koanf:"published_at"` // RFC3339
	QuestionIDs []string `koanf:"question_ids"`
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load seed %s: %w", path, err)
	}
	var s Seed
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return &s, nil
}

// MemberIDs lists every seeded member.
func (s *Seed) MemberIDs() []model.MemberID {
	out := make([]model.MemberID, 0, len(s.Members))
	for _, m := range s.Members {
		out = append(out, model.MemberID(m.ID))
	}
	return out
}

// Apply validates the seed and writes every row to w.
func (s *Seed) Apply(ctx context.Context, w Writer) error {
	for _, img := range s.Images {
		if img.ID == "" {
			return fmt.Errorf("%w: image without id", ErrInvalidSeed)
		}
		if err := w.PutImage(ctx, model.Image{ID: model.ImageID(img.ID), URL: img.URL}); err != nil {
			return err
		}
	}
	for _, m := range s.Members {
		if m.ID == "" {
			return fmt.Errorf("%w: member without id", ErrInvalidSeed)
		}
		if utf8.RuneCountInString(m.FullName) < 2 {
			return fmt.Errorf("%w: member %s full name %q is shorter than two characters", ErrInvalidSeed, m.ID, m.FullName)
		}
		if err := w.PutMember(ctx, model.Member{
			ID:             model.MemberID(m.ID),
			FullName:       m.FullName,
			ProfileImageID: model.ImageID(m.ProfileImageID),
			Platform:       model.ParsePlatform(m.Platform),
			Ordinal:        m.Ordinal,
			Gender:         model.ParseGender(m.Gender),
		}); err != nil {
			return err
		}
	}
	for _, q := range s.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question without id", ErrInvalidSeed)
		}
		if err := w.PutQuestion(ctx, model.Question{
			ID:           model.QuestionID(q.ID),
			Content:      q.Content,
			EmojiImageID: model.ImageID(q.EmojiImageID),
		}); err != nil {
			return err
		}
	}
	for _, qs := range s.QuestionSets {
		set, err := qs.toEntity()
		if err != nil {
			return err
		}
		if err := w.PutQuestionSet(ctx, set); err != nil {
			return err
		}
	}
	return nil
}

func (qs SeedQuestionSet) toEntity() (model.QuestionSet, error) {
	if qs.ID == "" {
		return model.QuestionSet{}, fmt.Errorf("%w: question set without id", ErrInvalidSeed)
	}
	status := model.QuestionSetStatus(strings.ToUpper(strings.TrimSpace(qs.Status)))
	switch status {
	case model.QuestionSetReady, model.QuestionSetActive, model.QuestionSetTerminal:
	default:
		return model.QuestionSet{}, fmt.Errorf("%w: question set %s has status %q", ErrInvalidSeed, qs.ID, qs.Status)
	}
	var published time.Time
	if qs.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, qs.PublishedAt)
		if err != nil {
			return model.QuestionSet{}, fmt.Errorf("%w: question set %s published_at: %v", ErrInvalidSeed, qs.ID, err)
		}
		published = t
	}
	ids := make([]model.QuestionID, 0, len(qs.QuestionIDs))
	for _, id := range qs.QuestionIDs {
		ids = append(ids, model.QuestionID(id))
	}
	return model.QuestionSet{ID: model.QuestionSetID(qs.ID), Status: status, QuestionIDs: ids, PublishedAt: published}, nil
}
