package service_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/dojo/internal/adapters/directory"
	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/reveal"
	"github.com/okian/dojo/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// recorder captures dispatched notifications.
type recorder struct {
	mu   sync.Mutex
	got  []model.PickedNotification
	seen chan struct{}
}

func newRecorder() *recorder { return &recorder{seen: make(chan struct{}, 100)} }

func (r *recorder) NotifyPicked(_ context.Context, n model.PickedNotification) error {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
	r.seen <- struct{}{}
	return nil
}

func (r *recorder) all() []model.PickedNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PickedNotification(nil), r.got...)
}

type fixture struct {
	svc   *service.Service
	dir   *directory.Memory
	notes *recorder
	clock *atomic.Int64 // seconds past base
}

func (f *fixture) tick() { f.clock.Add(1) }

func newFixture(opts ...service.Option) *fixture {
	ctx := context.Background()
	dir := directory.NewMemory()
	_ = dir.PutImage(ctx, model.Image{ID: "img-emoji", URL: "https://cdn/emoji.png"})
	_ = dir.PutImage(ctx, model.Image{ID: "img-alice", URL: "https://cdn/alice.png"})
	_ = dir.PutMember(ctx, model.Member{ID: "alice", FullName: "Kim Alice", ProfileImageID: "img-alice", Platform: model.PlatformSpring, Ordinal: 5, Gender: model.GenderFemale})
	_ = dir.PutMember(ctx, model.Member{ID: "bob", FullName: "Lee Bob", Platform: model.PlatformWeb, Ordinal: 6, Gender: model.GenderMale})
	_ = dir.PutMember(ctx, model.Member{ID: "carol", FullName: "Park Carol", ProfileImageID: "img-missing", Platform: model.PlatformIOS, Ordinal: 5, Gender: model.GenderFemale})
	for i := 1; i <= 5; i++ {
		_ = dir.PutQuestion(ctx, model.Question{ID: model.QuestionID(fmt.Sprintf("q%d", i)), Content: fmt.Sprintf("question %d", i), EmojiImageID: "img-emoji"})
	}
	_ = dir.PutQuestion(ctx, model.Question{ID: "q-noemoji", Content: "no emoji", EmojiImageID: "img-gone"})
	_ = dir.PutQuestionSet(ctx, model.QuestionSet{ID: "set-1", Status: model.QuestionSetActive,
		QuestionIDs: []model.QuestionID{"q1", "q2", "q3", "q4", "q5", "q-noemoji"}})

	var clock atomic.Int64
	notes := newRecorder()
	var seq atomic.Int64
	all := append([]service.Option{
		service.WithMemberDirectory(dir),
		service.WithQuestionDirectory(dir),
		service.WithImageResolver(dir),
		service.WithDispatcher(notes),
		service.WithPolicy(reveal.New(reveal.WithProfileImages(reveal.ProfileImages{
			Male: "male.png", Female: "female.png", Unknown: "unknown.png",
		}))),
		service.WithClock(func() time.Time { return base.Add(time.Duration(clock.Load()) * time.Second) }),
		service.WithIDGenerator(func() string { return fmt.Sprintf("id-%04d", seq.Add(1)) }),
	}, opts...)
	svc := service.New(all...)
	for _, m := range []model.MemberID{"alice", "bob", "carol"} {
		if _, err := svc.OpenAccount(ctx, m); err != nil {
			panic(err)
		}
	}
	return &fixture{svc: svc, dir: dir, notes: notes, clock: &clock}
}

func (f *fixture) pick(picker, picked model.MemberID, q model.QuestionID) model.Pick {
	f.tick()
	res, err := f.svc.CreatePick(context.Background(), service.CreatePickCommand{
		PickerID: picker, QuestionSheetID: "sheet-1", QuestionSetID: "set-1", QuestionID: q, PickedID: picked,
	})
	if err != nil {
		panic(err)
	}
	return res.Pick
}
