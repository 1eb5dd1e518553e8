package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dojo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeed(t *testing.T) {
	Convey("Given the sample seed file", t, func() {
		ctx := context.Background()
		seed, err := LoadSeed(filepath.Join("testdata", "seed.yaml"))
		So(err, ShouldBeNil)

		Convey("Then every section is decoded", func() {
			So(seed.Images, ShouldHaveLength, 2)
			So(seed.Members, ShouldHaveLength, 3)
			So(seed.Questions, ShouldHaveLength, 2)
			So(seed.QuestionSets, ShouldHaveLength, 3)
			So(seed.MemberIDs(), ShouldResemble, []model.MemberID{"m-minjun", "m-seoyeon", "m-jiho"})
		})

		Convey("When it is applied to a memory directory", func() {
			d := NewMemory()
			So(seed.Apply(ctx, d), ShouldBeNil)

			Convey("Then members are normalised", func() {
				m, err := d.Member(ctx, "m-seoyeon")
				So(err, ShouldBeNil)
				So(m.Gender, ShouldEqual, model.GenderFemale)
				So(m.Platform, ShouldEqual, model.PlatformIOS)
				So(m.SecondInitialName(), ShouldEqual, "서")
			})

			Convey("Then questions and images resolve", func() {
				q, err := d.Question(ctx, "q-kind")
				So(err, ShouldBeNil)
				img, err := d.Image(ctx, q.EmojiImageID)
				So(err, ShouldBeNil)
				So(img.URL, ShouldEqual, "https://cdn.example.com/emoji/fire.png")
			})

			Convey("Then the earliest READY set is next", func() {
				s, err := d.NextReadyQuestionSet(ctx)
				So(err, ShouldBeNil)
				So(s.ID, ShouldEqual, model.QuestionSetID("set-2"))
				So(s.QuestionIDs, ShouldResemble, []model.QuestionID{"q-funny", "q-kind"})
				So(s.PublishedAt.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})
	})

	Convey("Given malformed seeds", t, func() {
		ctx := context.Background()
		d := NewMemory()

		Convey("Then a one-character name is rejected", func() {
			s := &Seed{Members: []SeedMember{{ID: "m", FullName: "김"}}}
			So(errors.Is(s.Apply(ctx, d), ErrInvalidSeed), ShouldBeTrue)
		})

		Convey("Then an unknown set status is rejected", func() {
			s := &Seed{QuestionSets: []SeedQuestionSet{{ID: "s", Status: "PAUSED"}}}
			So(errors.Is(s.Apply(ctx, d), ErrInvalidSeed), ShouldBeTrue)
		})

		Convey("Then a bad timestamp is rejected", func() {
			s := &Seed{QuestionSets: []SeedQuestionSet{{ID: "s", Status: "READY", PublishedAt: "tomorrow"}}}
			So(errors.Is(s.Apply(ctx, d), ErrInvalidSeed), ShouldBeTrue)
		})

		Convey("Then a missing file fails to load", func() {
			_, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
			So(err, ShouldNotBeNil)
		})

		Convey("Then an empty file loads as an empty seed", func() {
			path := filepath.Join(t.TempDir(), "empty.yaml")
			So(os.WriteFile(path, []byte("{}\n"), 0o600), ShouldBeNil)
			s, err := LoadSeed(path)
			So(err, ShouldBeNil)
			So(s.Members, ShouldBeEmpty)
		})
	})
}

func TestMemoryDirectory(t *testing.T) {
	Convey("Given an empty memory directory", t, func() {
		ctx := context.Background()
		d := NewMemory()

		Convey("Then lookups fail with typed errors", func() {
			_, err := d.Member(ctx, "x")
			So(errors.Is(err, model.ErrMemberNotFound), ShouldBeTrue)
			_, err = d.Question(ctx, "x")
			So(errors.Is(err, model.ErrQuestionNotFound), ShouldBeTrue)
			_, err = d.QuestionSet(ctx, "x")
			So(errors.Is(err, model.ErrQuestionSetNotFound), ShouldBeTrue)
			_, err = d.Image(ctx, "x")
			So(errors.Is(err, model.ErrImageNotFound), ShouldBeTrue)
			_, err = d.NextReadyQuestionSet(ctx)
			So(errors.Is(err, model.ErrQuestionSetNotReady), ShouldBeTrue)
		})

		Convey("When a set is stored", func() {
			ids := []model.QuestionID{"q1", "q2"}
			So(d.PutQuestionSet(ctx, model.QuestionSet{ID: "s1", Status: model.QuestionSetActive, QuestionIDs: ids}), ShouldBeNil)
			ids[0] = "mutated"

			Convey("Then callers cannot mutate it", func() {
				s, err := d.QuestionSet(ctx, "s1")
				So(err, ShouldBeNil)
				So(s.QuestionIDs[0], ShouldEqual, model.QuestionID("q1"))
				_, err = d.NextReadyQuestionSet(ctx)
				So(errors.Is(err, model.ErrQuestionSetNotReady), ShouldBeTrue)
			})
		})
	})
}
