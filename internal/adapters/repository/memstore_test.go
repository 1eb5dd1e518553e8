package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/dojo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func samplePick(id, picker, set, question, picked string, at time.Time) model.Pick {
	return model.NewPick(model.PickID(id), model.QuestionID(question), model.QuestionSetID(set), "sheet",
		model.MemberID(picker), model.MemberID(picked), at)
}

func insert(s Store, p model.Pick) error {
	return s.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.InsertPick(ctx, p)
	})
}

func openAccount(s Store, b model.Balance) error {
	return s.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.OpenAccount(ctx, b)
	})
}

func TestMemoryStorePicks(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		Convey("When a pick is inserted", func() {
			p := samplePick("p1", "alice", "s1", "q1", "bob", t0)
			So(insert(s, p), ShouldBeNil)

			Convey("Then it is readable", func() {
				got, err := s.Pick(ctx, "p1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, p)
				So(s.Count(), ShouldEqual, 1)
			})

			Convey("Then the same picker cannot answer the question twice", func() {
				err := insert(s, samplePick("p2", "alice", "s1", "q1", "carol", t0))
				So(errors.Is(err, model.ErrDuplicatePick), ShouldBeTrue)
				So(s.Count(), ShouldEqual, 1)
			})

			Convey("Then the same picker may answer another set", func() {
				So(insert(s, samplePick("p2", "alice", "s2", "q1", "bob", t0)), ShouldBeNil)
			})
		})

		Convey("When the same key is inserted twice in one transaction", func() {
			err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				if err := tx.InsertPick(ctx, samplePick("a", "alice", "s1", "q1", "bob", t0)); err != nil {
					return err
				}
				return tx.InsertPick(ctx, samplePick("b", "alice", "s1", "q1", "bob", t0))
			})

			Convey("Then the transaction fails and nothing is stored", func() {
				So(errors.Is(err, model.ErrDuplicatePick), ShouldBeTrue)
				So(s.Count(), ShouldEqual, 0)
			})
		})

		Convey("When an unknown pick is read", func() {
			_, err := s.Pick(ctx, "missing")
			So(errors.Is(err, model.ErrPickNotFound), ShouldBeTrue)
		})

		Convey("When received picks are listed", func() {
			So(insert(s, samplePick("p1", "a", "s1", "q1", "bob", t0)), ShouldBeNil)
			So(insert(s, samplePick("p2", "b", "s1", "q1", "bob", t0.Add(2*time.Minute))), ShouldBeNil)
			So(insert(s, samplePick("p3", "c", "s1", "q2", "bob", t0.Add(time.Minute))), ShouldBeNil)
			So(insert(s, samplePick("p4", "d", "s1", "q1", "eve", t0)), ShouldBeNil)

			Convey("Then they come back newest first", func() {
				picks, err := s.ReceivedPicks(ctx, ReceivedFilter{PickedID: "bob"})
				So(err, ShouldBeNil)
				ids := []model.PickID{}
				for _, p := range picks {
					ids = append(ids, p.ID)
				}
				So(ids, ShouldResemble, []model.PickID{"p2", "p3", "p1"})
			})

			Convey("Then they can be narrowed to one question", func() {
				picks, err := s.ReceivedPicks(ctx, ReceivedFilter{PickedID: "bob", QuestionID: "q1"})
				So(err, ShouldBeNil)
				So(picks, ShouldHaveLength, 2)
			})

			Convey("Then the picked count covers every question", func() {
				n, err := s.PickedCount(ctx, "bob")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})
}

func TestMemoryStoreTransactions(t *testing.T) {
	Convey("Given a stored pick and an account", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		So(insert(s, samplePick("p1", "alice", "s1", "q1", "bob", t0)), ShouldBeNil)
		So(openAccount(s, model.Balance{MemberID: "bob", Amount: 100, UpdatedAt: t0}), ShouldBeNil)

		Convey("When the account is opened again", func() {
			err := openAccount(s, model.Balance{MemberID: "bob"})
			So(errors.Is(err, model.ErrAccountExists), ShouldBeTrue)
		})

		Convey("When an account is opened in a transaction that then fails", func() {
			err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				if err := tx.OpenAccount(ctx, model.Balance{MemberID: "carol", UpdatedAt: t0}); err != nil {
					return err
				}
				if err := tx.SaveBalance(ctx, model.Balance{MemberID: "carol", Amount: 200}); err != nil {
					return err
				}
				return errors.New("boom")
			})

			Convey("Then no account exists and it can be opened again", func() {
				So(err, ShouldNotBeNil)
				_, err := s.Balance(ctx, "carol")
				So(errors.Is(err, model.ErrMemberNotFound), ShouldBeTrue)
				So(openAccount(s, model.Balance{MemberID: "carol"}), ShouldBeNil)
			})
		})

		Convey("When one transaction opens the same account twice", func() {
			err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				if err := tx.OpenAccount(ctx, model.Balance{MemberID: "dave"}); err != nil {
					return err
				}
				return tx.OpenAccount(ctx, model.Balance{MemberID: "dave"})
			})
			So(errors.Is(err, model.ErrAccountExists), ShouldBeTrue)
		})

		Convey("When a transaction writes and then fails", func() {
			err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				p, err := tx.PickForUpdate(ctx, "p1")
				if err != nil {
					return err
				}
				p, _ = p.Open(model.RevealGender, t0)
				if err := tx.UpdatePick(ctx, p); err != nil {
					return err
				}
				if err := tx.SaveBalance(ctx, model.Balance{MemberID: "bob", Amount: 50}); err != nil {
					return err
				}
				if err := tx.AppendEntry(ctx, model.LedgerEntry{ID: "e1", MemberID: "bob", Delta: -50}); err != nil {
					return err
				}
				return errors.New("boom")
			})

			Convey("Then nothing is committed", func() {
				So(err, ShouldNotBeNil)
				p, _ := s.Pick(ctx, "p1")
				So(p.IsOpened(model.RevealGender), ShouldBeFalse)
				b, _ := s.Balance(ctx, "bob")
				So(b.Amount, ShouldEqual, 100)
				entries, _ := s.LedgerEntries(ctx, "bob")
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When a transaction commits", func() {
			err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				b, err := tx.BalanceForUpdate(ctx, "bob")
				if err != nil {
					return err
				}
				b.Amount -= 30
				if err := tx.SaveBalance(ctx, b); err != nil {
					return err
				}
				again, err := tx.BalanceForUpdate(ctx, "bob")
				if err != nil {
					return err
				}
				if again.Amount != 70 {
					return fmt.Errorf("read own write: got %d", again.Amount)
				}
				if err := tx.AppendEntry(ctx, model.LedgerEntry{ID: "e1", MemberID: "bob", Delta: -30, Balance: 70}); err != nil {
					return err
				}
				return tx.AppendEntry(ctx, model.LedgerEntry{ID: "e2", MemberID: "bob", Delta: 0, Balance: 70})
			})

			Convey("Then the writes are visible and entries are newest first", func() {
				So(err, ShouldBeNil)
				b, _ := s.Balance(ctx, "bob")
				So(b.Amount, ShouldEqual, 70)
				entries, _ := s.LedgerEntries(ctx, "bob")
				So(len(entries), ShouldEqual, 2)
				So(entries[0].ID, ShouldEqual, "e2")
			})
		})

		Convey("When an unknown pick or member is locked", func() {
			err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				_, err := tx.PickForUpdate(ctx, "nope")
				return err
			})
			So(errors.Is(err, model.ErrPickNotFound), ShouldBeTrue)

			err = s.InTx(ctx, func(ctx context.Context, tx Tx) error {
				_, err := tx.BalanceForUpdate(ctx, "ghost")
				return err
			})
			So(errors.Is(err, model.ErrMemberNotFound), ShouldBeTrue)
		})

		Convey("When a finished transaction is reused", func() {
			var leaked Tx
			So(s.InTx(ctx, func(_ context.Context, tx Tx) error { leaked = tx; return nil }), ShouldBeNil)
			_, err := leaked.PickForUpdate(ctx, "p1")
			So(errors.Is(err, ErrTxDone), ShouldBeTrue)
		})

		Convey("When many transactions decrement the same balance", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			failures := 0
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
						b, err := tx.BalanceForUpdate(ctx, "bob")
						if err != nil {
							return err
						}
						if b.Amount < 10 {
							return model.ErrInsufficientFunds
						}
						b.Amount -= 10
						return tx.SaveBalance(ctx, b)
					})
					if err != nil {
						mu.Lock()
						failures++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then no update is lost and the balance never goes negative", func() {
				b, _ := s.Balance(ctx, "bob")
				So(b.Amount, ShouldEqual, 0)
				So(failures, ShouldEqual, 10)
			})
		})

		Convey("When a lock is held and a waiter's context ends", func() {
			holding := make(chan struct{})
			release := make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = s.InTx(ctx, func(ctx context.Context, tx Tx) error {
					if _, err := tx.PickForUpdate(ctx, "p1"); err != nil {
						return err
					}
					close(holding)
					<-release
					return nil
				})
			}()
			<-holding

			waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err := s.InTx(waitCtx, func(ctx context.Context, tx Tx) error {
				_, err := tx.PickForUpdate(ctx, "p1")
				return err
			})
			close(release)
			<-done

			Convey("Then the waiter gives up with the context error", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}

func TestKeyLocks(t *testing.T) {
	Convey("Given key locks", t, func() {
		k := newKeyLocks()
		ctx := context.Background()

		Convey("Then slots are dropped once released", func() {
			So(k.lock(ctx, "a"), ShouldBeNil)
			So(k.lock(ctx, "b"), ShouldBeNil)
			k.unlock("a")
			k.unlock("b")
			So(k.slots, ShouldBeEmpty)
		})

		Convey("Then unlocking an unknown key is a no-op", func() {
			So(func() { k.unlock("nope") }, ShouldNotPanic)
		})
	})
}
