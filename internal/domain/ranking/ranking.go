// Package ranking aggregates received picks and assigns competition ranks.
//
// Every function here is pure: inputs are never mutated and results are
// recomputed from the snapshot on each call.
package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/dojo/internal/domain/model"
)

// Group aggregates the picks that share one counting key.
type Group struct {
	Key        string
	QuestionID model.QuestionID
	PickID     model.PickID // most recent pick in the group
	Count      int
	LatestAt   time.Time
	Rank       int // 0 until Rank assigns it
}

// KeyFunc extracts the counting key of a pick.
type KeyFunc func(model.Pick) string

// ByQuestion counts picks per distinct question.
func ByQuestion(p model.Pick) string { return string(p.QuestionID) }

// Aggregate groups picks by key. Groups come back ordered by key so the
// result does not depend on input order.
func Aggregate(picks []model.Pick, key KeyFunc) []Group {
	if len(picks) == 0 {
		return []Group{}
	}
	index := make(map[string]int, len(picks))
	groups := make([]Group, 0, len(picks))
	for _, p := range picks {
		k := key(p)
		i, ok := index[k]
		if !ok {
			index[k] = len(groups)
			groups = append(groups, Group{Key: k, QuestionID: p.QuestionID, PickID: p.ID, Count: 1, LatestAt: p.CreatedAt})
			continue
		}
		g := &groups[i]
		g.Count++
		if p.CreatedAt.After(g.LatestAt) || (p.CreatedAt.Equal(g.LatestAt) && p.ID > g.PickID) {
			g.LatestAt = p.CreatedAt
			g.PickID = p.ID
		}
	}
	slices.SortFunc(groups, func(a, b Group) int { return strings.Compare(a.Key, b.Key) })
	return groups
}

// byCountThenRecency orders count desc, latest desc, then key asc so the
// order is total.
func byCountThenRecency(a, b Group) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	if c := b.LatestAt.Compare(a.LatestAt); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

func byRecency(a, b Group) int {
	if c := b.LatestAt.Compare(a.LatestAt); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

// Rank returns a sorted copy of groups with competition ranks assigned:
// equal counts share a rank and the next distinct count gets its 1-based
// position, so counts [5,5,3] rank [1,1,3].
func Rank(groups []Group) []Group {
	ranked := slices.Clone(groups)
	if ranked == nil {
		return []Group{}
	}
	slices.SortStableFunc(ranked, byCountThenRecency)
	for i := range ranked {
		if i > 0 && ranked[i].Count == ranked[i-1].Count {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Top ranks groups and keeps the first n. n <= 0 keeps nothing.
func Top(groups []Group, n int) []Group {
	ranked := Rank(groups)
	if n <= 0 {
		return []Group{}
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Sort selects the order of the unranked received-pick list.
type Sort string

const (
	SortLatest     Sort = "LATEST"
	SortMostPicked Sort = "MOST_PICKED"
)

// ParseSort parses a sort name; the empty string means SortLatest.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToUpper(strings.TrimSpace(s))); v {
	case "":
		return SortLatest, nil
	case SortLatest, SortMostPicked:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// Order returns a sorted copy of groups without assigning ranks.
func Order(groups []Group, by Sort) []Group {
	out := slices.Clone(groups)
	if out == nil {
		return []Group{}
	}
	switch by {
	case SortMostPicked:
		slices.SortStableFunc(out, byCountThenRecency)
	default:
		slices.SortStableFunc(out, byRecency)
	}
	return out
}
