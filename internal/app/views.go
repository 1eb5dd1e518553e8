package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/ranking"
	"github.com/okian/dojo/pkg/metrics"
)

// ReceivedPick is one question a member was picked for, aggregated.
type ReceivedPick struct {
	PickID                 model.PickID
	QuestionID             model.QuestionID
	QuestionContent        string
	QuestionEmojiImageURL  string
	LatestPickedAt         time.Time
	TotalReceivedPickCount int
}

// ReceivedPicks lists the questions member was picked for, one entry per
// question, ordered by sort.
func (s *Service) ReceivedPicks(ctx context.Context, member model.MemberID, sort ranking.Sort, page, size int) (Page[ReceivedPick], error) {
	if s.questions == nil {
		return Page[ReceivedPick]{}, ErrMissingCollaborator
	}
	picks, err := s.store.ReceivedPicks(ctx, repository.ReceivedFilter{PickedID: member})
	if err != nil {
		return Page[ReceivedPick]{}, err
	}
	groups := ranking.Order(ranking.Aggregate(picks, ranking.ByQuestion), sort)

	lo, hi, size, err := s.pageBounds(page, size, len(groups))
	if err != nil {
		return Page[ReceivedPick]{}, err
	}
	window := groups[lo:hi]
	items := make([]ReceivedPick, len(window))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i, grp := range window {
		g.Go(func() error {
			q, emoji, err := s.questionView(gctx, grp.QuestionID)
			if err != nil {
				return err
			}
			items[i] = ReceivedPick{
				PickID:                 grp.PickID,
				QuestionID:             grp.QuestionID,
				QuestionContent:        q.Content,
				QuestionEmojiImageURL:  emoji,
				LatestPickedAt:         grp.LatestAt,
				TotalReceivedPickCount: grp.Count,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Page[ReceivedPick]{}, err
	}
	return newPage(items, page, size, len(groups)), nil
}

// PickDetail is one received pick with only the opened attributes filled.
// Hidden attributes are nil.
type PickDetail struct {
	PickID                model.PickID
	PickerID              model.MemberID
	PickerIDOpen          bool
	PickerOrdinal         int
	PickerProfileImageURL string
	GenderOpen            bool
	Gender                *model.Gender
	PlatformOpen          bool
	Platform              *model.Platform
	MidInitialNameOpen    bool
	SecondInitialName     *string
	FullNameOpen          bool
	FullName              *string
	CreatedAt             time.Time
}

// ReceivedPickDetail is the per-question drill down of received picks.
type ReceivedPickDetail struct {
	QuestionID             model.QuestionID
	QuestionContent        string
	QuestionEmojiImageURL  string
	TotalReceivedPickCount int
	Picks                  Page[PickDetail]
}

// ReceivedPickDetail lists every pick member received for question, newest
// first, with unopened picker attributes withheld.
func (s *Service) ReceivedPickDetail(ctx context.Context, member model.MemberID, question model.QuestionID, page, size int) (ReceivedPickDetail, error) {
	if s.questions == nil || s.members == nil {
		return ReceivedPickDetail{}, ErrMissingCollaborator
	}
	q, err := s.questions.Question(ctx, question)
	if err != nil {
		return ReceivedPickDetail{}, err
	}
	if s.images == nil {
		return ReceivedPickDetail{}, ErrMissingCollaborator
	}
	emoji, err := s.images.Image(ctx, q.EmojiImageID)
	if err != nil {
		return ReceivedPickDetail{}, err
	}

	picks, err := s.store.ReceivedPicks(ctx, repository.ReceivedFilter{PickedID: member, QuestionID: question})
	if err != nil {
		return ReceivedPickDetail{}, err
	}
	lo, hi, size, err := s.pageBounds(page, size, len(picks))
	if err != nil {
		return ReceivedPickDetail{}, err
	}
	window := picks[lo:hi]
	items := make([]PickDetail, len(window))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i, p := range window {
		g.Go(func() error {
			picker, err := s.profile(gctx, p.PickerID)
			if err != nil {
				return err
			}
			items[i] = s.detail(p, picker.Member, picker.ProfileImageURL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ReceivedPickDetail{}, err
	}

	return ReceivedPickDetail{
		QuestionID:             q.ID,
		QuestionContent:        q.Content,
		QuestionEmojiImageURL:  emoji.URL,
		TotalReceivedPickCount: len(picks),
		Picks:                  newPage(items, page, size, len(picks)),
	}, nil
}

func (s *Service) detail(p model.Pick, picker model.Member, profileURL string) PickDetail {
	images := s.policy.ProfileImages()
	d := PickDetail{
		PickID:                p.ID,
		PickerID:              model.UnknownMemberID,
		PickerIDOpen:          p.PickerIDOpen(),
		PickerOrdinal:         picker.Ordinal,
		PickerProfileImageURL: images.Unknown,
		GenderOpen:            p.IsOpened(model.RevealGender),
		PlatformOpen:          p.IsOpened(model.RevealPlatform),
		MidInitialNameOpen:    p.IsOpened(model.RevealMidInitialName),
		FullNameOpen:          p.IsOpened(model.RevealFullName),
		CreatedAt:             p.CreatedAt,
	}
	if d.PickerIDOpen {
		d.PickerID = p.PickerID
	}
	if d.GenderOpen {
		g := picker.Gender
		d.Gender = &g
		d.PickerProfileImageURL = images.ForGender(g)
	}
	if d.PlatformOpen {
		pl := picker.Platform
		d.Platform = &pl
	}
	if d.MidInitialNameOpen {
		n := picker.SecondInitialName()
		d.SecondInitialName = &n
	}
	if d.FullNameOpen {
		n := picker.FullName
		d.FullName = &n
		if profileURL != "" {
			d.PickerProfileImageURL = profileURL
		}
	}
	return d
}

// SpacePick is one ranked entry of a member's space.
type SpacePick struct {
	PickID                model.PickID // latest pick for the question
	Rank                  int
	QuestionID            model.QuestionID
	QuestionContent       string
	QuestionEmojiImageURL string
	Count                 int
	LatestPickedAt        time.Time
}

// Space is the public summary of what a member was picked for.
type Space struct {
	MemberID    model.MemberID
	PickedCount int
	Picks       []SpacePick
}

// MySpace returns the requester's own space.
func (s *Service) MySpace(ctx context.Context, member model.MemberID) (Space, error) {
	return s.space(ctx, member)
}

// FriendSpace returns another member's space; the member must exist.
func (s *Service) FriendSpace(ctx context.Context, friend model.MemberID) (Space, error) {
	if s.members == nil {
		return Space{}, ErrMissingCollaborator
	}
	if _, err := s.members.Member(ctx, friend); err != nil {
		return Space{}, err
	}
	return s.space(ctx, friend)
}

func (s *Service) space(ctx context.Context, member model.MemberID) (Space, error) {
	if s.questions == nil {
		return Space{}, ErrMissingCollaborator
	}
	picks, err := s.store.ReceivedPicks(ctx, repository.ReceivedFilter{PickedID: member})
	if err != nil {
		return Space{}, err
	}
	count, err := s.store.PickedCount(ctx, member)
	if err != nil {
		return Space{}, err
	}
	top := ranking.Top(ranking.Aggregate(picks, ranking.ByQuestion), s.rankSize)
	metrics.RecordRankingBuilt("space")

	out := Space{MemberID: member, PickedCount: count, Picks: make([]SpacePick, len(top))}
	for i, grp := range top {
		q, emoji, err := s.questionView(ctx, grp.QuestionID)
		if err != nil {
			return Space{}, err
		}
		out.Picks[i] = SpacePick{
			PickID:                grp.PickID,
			Rank:                  grp.Rank,
			QuestionID:            grp.QuestionID,
			QuestionContent:       q.Content,
			QuestionEmojiImageURL: emoji,
			Count:                 grp.Count,
			LatestPickedAt:        grp.LatestAt,
		}
	}
	return out, nil
}

// questionView loads a question with its emoji URL; a missing emoji image
// leaves the URL empty.
func (s *Service) questionView(ctx context.Context, id model.QuestionID) (model.Question, string, error) {
	q, err := s.questions.Question(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrQuestionNotFound) {
			return model.Question{ID: id}, "", nil
		}
		return model.Question{}, "", err
	}
	return q, s.imageURL(ctx, q.EmojiImageID), nil
}
