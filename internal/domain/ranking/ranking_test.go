package ranking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/dojo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// picksFor builds count picks on question q, the newest at base+latest minutes.
func picksFor(q string, count, latest int) []model.Pick {
	out := make([]model.Pick, 0, count)
	for i := 0; i < count; i++ {
		at := base.Add(time.Duration(latest-i) * time.Minute)
		out = append(out, model.Pick{
			ID:         model.PickID(fmt.Sprintf("%s-%d", q, i)),
			QuestionID: model.QuestionID(q),
			PickedID:   "target",
			CreatedAt:  at,
		})
	}
	return out
}

func ranks(groups []Group) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.Rank
	}
	return out
}

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given picks over several questions", t, func() {
		picks := append(picksFor("q2", 3, 10), picksFor("q1", 2, 30)...)

		Convey("When they are aggregated by question", func() {
			groups := Aggregate(picks, ByQuestion)

			Convey("Then each question counts its picks and keeps the newest", func() {
				So(keys(groups), ShouldResemble, []string{"q1", "q2"})
				So(groups[0].Count, ShouldEqual, 2)
				So(groups[0].PickID, ShouldEqual, model.PickID("q1-0"))
				So(groups[0].LatestAt, ShouldEqual, base.Add(30*time.Minute))
				So(groups[1].Count, ShouldEqual, 3)
				So(groups[1].Rank, ShouldEqual, 0)
			})
		})

		Convey("When the input is empty", func() {
			So(Aggregate(nil, ByQuestion), ShouldBeEmpty)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given counts 5, 5 and 3", t, func() {
		groups := Aggregate(append(append(picksFor("a", 5, 1), picksFor("b", 3, 50)...), picksFor("c", 5, 20)...), ByQuestion)

		Convey("When they are ranked", func() {
			ranked := Rank(groups)

			Convey("Then ties share a rank and the next rank skips", func() {
				So(ranks(ranked), ShouldResemble, []int{1, 1, 3})
			})

			Convey("Then ties are broken by recency", func() {
				So(keys(ranked), ShouldResemble, []string{"c", "a", "b"})
			})

			Convey("Then ranking twice gives the same result", func() {
				So(Rank(groups), ShouldResemble, ranked)
			})

			Convey("Then the input is not mutated", func() {
				So(keys(groups), ShouldResemble, []string{"a", "b", "c"})
				So(ranks(groups), ShouldResemble, []int{0, 0, 0})
			})
		})
	})

	Convey("Given equal counts and timestamps", t, func() {
		groups := []Group{
			{Key: "z", Count: 2, LatestAt: base},
			{Key: "m", Count: 2, LatestAt: base},
			{Key: "a", Count: 1, LatestAt: base},
		}

		Convey("Then the order is stable and total", func() {
			first := Rank(groups)
			So(keys(first), ShouldResemble, []string{"m", "z", "a"})
			So(ranks(first), ShouldResemble, []int{1, 1, 3})
			So(Rank(groups), ShouldResemble, first)
		})
	})

	Convey("Given no groups", t, func() {
		So(Rank(nil), ShouldBeEmpty)
		So(Top(nil, 3), ShouldBeEmpty)
	})
}

func TestTop(t *testing.T) {
	Convey("Given four ranked questions", t, func() {
		groups := Aggregate(append(append(append(picksFor("a", 4, 0), picksFor("b", 3, 0)...), picksFor("c", 2, 0)...), picksFor("d", 1, 0)...), ByQuestion)

		Convey("Then Top keeps the first n", func() {
			top := Top(groups, 3)
			So(keys(top), ShouldResemble, []string{"a", "b", "c"})
			So(ranks(top), ShouldResemble, []int{1, 2, 3})
		})

		Convey("Then a larger n keeps everything", func() {
			So(Top(groups, 10), ShouldHaveLength, 4)
		})

		Convey("Then a non-positive n keeps nothing", func() {
			So(Top(groups, 0), ShouldBeEmpty)
		})
	})
}

func TestOrder(t *testing.T) {
	Convey("Given groups with differing counts and recency", t, func() {
		groups := []Group{
			{Key: "old-many", Count: 9, LatestAt: base},
			{Key: "new-few", Count: 1, LatestAt: base.Add(time.Hour)},
			{Key: "mid", Count: 4, LatestAt: base.Add(time.Minute)},
		}

		Convey("Then LATEST orders by recency without ranks", func() {
			out := Order(groups, SortLatest)
			So(keys(out), ShouldResemble, []string{"new-few", "mid", "old-many"})
			So(ranks(out), ShouldResemble, []int{0, 0, 0})
		})

		Convey("Then MOST_PICKED orders by count", func() {
			So(keys(Order(groups, SortMostPicked)), ShouldResemble, []string{"old-many", "mid", "new-few"})
		})
	})

	Convey("Given sort names", t, func() {
		s, err := ParseSort("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, SortLatest)
		s, err = ParseSort("most_picked")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, SortMostPicked)
		_, err = ParseSort("ALPHABETICAL")
		So(errors.Is(err, ErrInvalidSort), ShouldBeTrue)
	})
}
