package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/reveal"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

// CreatePickCommand is one answer to a question: a pick of PickedID, or a
// skip when Skip is set.
type CreatePickCommand struct {
	PickerID        model.MemberID
	QuestionSheetID model.QuestionSheetID
	QuestionSetID   model.QuestionSetID
	QuestionID      model.QuestionID
	PickedID        model.MemberID
	Skip            bool
}

// CreatePickResult reports the stored pick and the coins it earned.
type CreatePickResult struct {
	Pick       model.Pick
	CoinEarned int64
	Balance    model.Balance
}

// CreatePick records a pick or a skip. A real pick credits the picker and
// notifies the picked member after commit; a skip does neither.
func (s *Service) CreatePick(ctx context.Context, cmd CreatePickCommand) (CreatePickResult, error) {
	if err := s.validateCreate(ctx, cmd); err != nil {
		return CreatePickResult{}, err
	}

	key := pickOnceKey(cmd)
	if s.deduper.SeenAndRecord(ctx, key) {
		return CreatePickResult{}, fmt.Errorf("%w: %s answered %s in set %s",
			model.ErrDuplicatePick, cmd.PickerID, cmd.QuestionID, cmd.QuestionSetID)
	}

	res, err := s.createPick(ctx, cmd)
	if err != nil {
		if !errors.Is(err, model.ErrDuplicatePick) {
			s.deduper.Unrecord(ctx, key)
		}
		return CreatePickResult{}, err
	}

	metrics.RecordPickCreated(cmd.Skip)
	if !cmd.Skip {
		metrics.RecordCoinsEarned(res.CoinEarned)
		s.notifyPicked(ctx, res.Pick)
	}
	s.logger.Debug(ctx, "pick created",
		logger.String("pick_id", string(res.Pick.ID)),
		logger.String("question_id", string(res.Pick.QuestionID)),
		logger.Bool("skip", cmd.Skip),
	)
	return res, nil
}

func (s *Service) validateCreate(ctx context.Context, cmd CreatePickCommand) error {
	if s.questions == nil || s.members == nil {
		return ErrMissingCollaborator
	}
	if cmd.PickerID == "" {
		return fmt.Errorf("%w: picker is required", ErrInvalidPickTarget)
	}
	if !cmd.Skip {
		switch cmd.PickedID {
		case "", model.SkipMemberID, model.UnknownMemberID:
			return fmt.Errorf("%w: %q", ErrInvalidPickTarget, cmd.PickedID)
		case cmd.PickerID:
			return fmt.Errorf("%w: member cannot pick themselves", ErrInvalidPickTarget)
		}
	}

	if _, err := s.questions.Question(ctx, cmd.QuestionID); err != nil {
		return err
	}
	set, err := s.questions.QuestionSet(ctx, cmd.QuestionSetID)
	if err != nil {
		return err
	}
	if len(set.QuestionIDs) > 0 && !slices.Contains(set.QuestionIDs, cmd.QuestionID) {
		return fmt.Errorf("%w: %s not in %s", ErrQuestionNotInSet, cmd.QuestionID, cmd.QuestionSetID)
	}

	if cmd.Skip {
		return nil
	}
	_, err = s.members.Member(ctx, cmd.PickedID)
	return err
}

func (s *Service) createPick(ctx context.Context, cmd CreatePickCommand) (CreatePickResult, error) {
	picked := cmd.PickedID
	if cmd.Skip {
		picked = model.SkipMemberID
	}
	pick := model.NewPick(model.PickID(s.newID()), cmd.QuestionID, cmd.QuestionSetID,
		cmd.QuestionSheetID, cmd.PickerID, picked, s.now())

	var res CreatePickResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.InsertPick(ctx, pick); err != nil {
			return err
		}
		res.Pick = pick
		if cmd.Skip || s.solvedPickCoin == 0 {
			return nil
		}
		b, err := s.ledger.Earn(ctx, tx, cmd.PickerID, s.solvedPickCoin, model.ReasonSolvedPick)
		if err != nil {
			return err
		}
		res.CoinEarned = s.solvedPickCoin
		res.Balance = b
		return nil
	})
	if err != nil {
		return CreatePickResult{}, err
	}
	return res, nil
}

func pickOnceKey(cmd CreatePickCommand) string {
	return string(cmd.PickerID) + "|" + string(cmd.QuestionSetID) + "|" + string(cmd.QuestionID)
}

// notifyPicked hands the notification to the workers. Delivery problems never
// fail the pick that was already committed.
func (s *Service) notifyPicked(ctx context.Context, p model.Pick) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	n := model.PickedNotification{
		PickID:     p.ID,
		PickedID:   p.PickedID,
		QuestionID: p.QuestionID,
		CreatedAt:  p.CreatedAt,
	}
	if q == nil {
		s.logger.Warn(ctx, "notification dropped, service not started",
			logger.String("pick_id", string(p.ID)))
		metrics.RecordNotificationDropped()
		return
	}
	if !q.Enqueue(ctx, n) {
		s.logger.Warn(ctx, "notification queue full",
			logger.String("pick_id", string(p.ID)))
	}
}

// OpenPickCommand asks to reveal one item of a received pick.
type OpenPickCommand struct {
	PickID      model.PickID
	RequesterID model.MemberID
	Item        model.RevealItem
}

// OpenPickResult is the revealed attribute and what it cost.
type OpenPickResult struct {
	Pick     model.Pick
	Revealed reveal.Revealed
	Cost     int64
	Balance  model.Balance
}

// OpenPick charges the requester and reveals item. The charge and the flag
// flip commit together; concurrent opens of the same item charge once.
func (s *Service) OpenPick(ctx context.Context, cmd OpenPickCommand) (OpenPickResult, error) {
	res, err := s.openPick(ctx, cmd)
	if err != nil {
		metrics.RecordOpenFailure(openFailureReason(err))
		return OpenPickResult{}, err
	}
	metrics.RecordItemOpened(cmd.Item.String())
	metrics.RecordCoinsSpent(res.Cost)
	s.logger.Debug(ctx, "pick item opened",
		logger.String("pick_id", string(cmd.PickID)),
		logger.String("item", cmd.Item.String()),
		logger.Int64("cost", res.Cost),
		logger.Int64("balance", res.Balance.Amount),
	)
	return res, nil
}

func (s *Service) openPick(ctx context.Context, cmd OpenPickCommand) (OpenPickResult, error) {
	if !cmd.Item.Valid() {
		return OpenPickResult{}, fmt.Errorf("%w: %d", model.ErrInvalidRevealItem, uint8(cmd.Item))
	}
	if s.members == nil {
		return OpenPickResult{}, ErrMissingCollaborator
	}

	current, err := s.store.Pick(ctx, cmd.PickID)
	if err != nil {
		return OpenPickResult{}, err
	}
	if err := current.Authorize(cmd.RequesterID); err != nil {
		return OpenPickResult{}, err
	}
	if current.IsOpened(cmd.Item) {
		return OpenPickResult{}, fmt.Errorf("%w: %s on pick %s", model.ErrAlreadyOpened, cmd.Item, cmd.PickID)
	}
	profile, err := s.profile(ctx, current.PickerID)
	if err != nil {
		return OpenPickResult{}, err
	}
	cost, err := s.policy.Cost(cmd.Item)
	if err != nil {
		return OpenPickResult{}, err
	}

	var res OpenPickResult
	err = s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.PickForUpdate(ctx, cmd.PickID)
		if err != nil {
			return err
		}
		if err := p.Authorize(cmd.RequesterID); err != nil {
			return err
		}
		opened, err := p.Open(cmd.Item, s.now())
		if err != nil {
			return err
		}
		b, err := s.ledger.Spend(ctx, tx, cmd.RequesterID, cost, model.ReasonOpenPick)
		if err != nil {
			return err
		}
		if err := tx.UpdatePick(ctx, opened); err != nil {
			return err
		}
		res.Pick, res.Balance, res.Cost = opened, b, cost
		return nil
	})
	if err != nil {
		return OpenPickResult{}, err
	}

	revealed, err := s.policy.Reveal(cmd.Item, profile)
	if err != nil {
		return OpenPickResult{}, err
	}
	res.Revealed = revealed
	return res, nil
}

// profile loads a picker with the URL of their profile image. A missing
// image is tolerated and leaves the URL empty.
func (s *Service) profile(ctx context.Context, id model.MemberID) (reveal.Profile, error) {
	m, err := s.members.Member(ctx, id)
	if err != nil {
		return reveal.Profile{}, err
	}
	return reveal.Profile{Member: m, ProfileImageURL: s.imageURL(ctx, m.ProfileImageID)}, nil
}

func (s *Service) imageURL(ctx context.Context, id model.ImageID) string {
	if id == "" || s.images == nil {
		return ""
	}
	img, err := s.images.Image(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrImageNotFound) {
			s.logger.Warn(ctx, "image lookup failed",
				logger.String("image_id", string(id)), logger.Error(err))
		}
		return ""
	}
	return img.URL
}

func openFailureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrPickNotFound):
		return "not_found"
	case errors.Is(err, model.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, model.ErrAlreadyOpened):
		return "already_opened"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, model.ErrInvalidRevealItem):
		return "invalid_item"
	case errors.Is(err, model.ErrMemberNotFound):
		return "member_not_found"
	default:
		return "internal"
	}
}
