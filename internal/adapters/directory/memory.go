// Package directory serves members, questions and images to the pick engine.
package directory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/okian/dojo/internal/domain/model"
)

// Writer accepts directory rows. Both Memory and the postgres directory
// implement it so one seed file can fill either.
type Writer interface {
	PutMember(ctx context.Context, m model.Member) error
	PutQuestion(ctx context.Context, q model.Question) error
	PutQuestionSet(ctx context.Context, s model.QuestionSet) error
	PutImage(ctx context.Context, img model.Image) error
}

// Memory is an in-process directory.
type Memory struct {
	mu        sync.RWMutex
	members   map[model.MemberID]model.Member
	questions map[model.QuestionID]model.Question
	sets      map[model.QuestionSetID]model.QuestionSet
	images    map[model.ImageID]model.Image
}

var _ Writer = (*Memory)(nil)

// NewMemory creates an empty directory.
func NewMemory() *Memory {
	return &Memory{
		members:   make(map[model.MemberID]model.Member),
		questions: make(map[model.QuestionID]model.Question),
		sets:      make(map[model.QuestionSetID]model.QuestionSet),
		images:    make(map[model.ImageID]model.Image),
	}
}

func (d *Memory) Member(_ context.Context, id model.MemberID) (model.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.members[id]
	if !ok {
		return model.Member{}, fmt.Errorf("%w: %s", model.ErrMemberNotFound, id)
	}
	return m, nil
}

func (d *Memory) Question(_ context.Context, id model.QuestionID) (model.Question, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	q, ok := d.questions[id]
	if !ok {
		return model.Question{}, fmt.Errorf("%w: %s", model.ErrQuestionNotFound, id)
	}
	return q, nil
}

func (d *Memory) QuestionSet(_ context.Context, id model.QuestionSetID) (model.QuestionSet, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sets[id]
	if !ok {
		return model.QuestionSet{}, fmt.Errorf("%w: %s", model.ErrQuestionSetNotFound, id)
	}
	s.QuestionIDs = slices.Clone(s.QuestionIDs)
	return s, nil
}

// NextReadyQuestionSet returns the READY set with the earliest publish time.
func (d *Memory) NextReadyQuestionSet(_ context.Context) (model.QuestionSet, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var (
		best  model.QuestionSet
		found bool
	)
	for _, s := range d.sets {
		if s.Status != model.QuestionSetReady {
			continue
		}
		if !found || s.PublishedAt.Before(best.PublishedAt) ||
			(s.PublishedAt.Equal(best.PublishedAt) && strings.Compare(string(s.ID), string(best.ID)) < 0) {
			best, found = s, true
		}
	}
	if !found {
		return model.QuestionSet{}, model.ErrQuestionSetNotReady
	}
	best.QuestionIDs = slices.Clone(best.QuestionIDs)
	return best, nil
}

func (d *Memory) Image(_ context.Context, id model.ImageID) (model.Image, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	img, ok := d.images[id]
	if !ok {
		return model.Image{}, fmt.Errorf("%w: %s", model.ErrImageNotFound, id)
	}
	return img, nil
}

func (d *Memory) PutMember(_ context.Context, m model.Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[m.ID] = m
	return nil
}

func (d *Memory) PutQuestion(_ context.Context, q model.Question) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.questions[q.ID] = q
	return nil
}

func (d *Memory) PutQuestionSet(_ context.Context, s model.QuestionSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s.QuestionIDs = slices.Clone(s.QuestionIDs)
	d.sets[s.ID] = s
	return nil
}

func (d *Memory) PutImage(_ context.Context, img model.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.images[img.ID] = img
	return nil
}
