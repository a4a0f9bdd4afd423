package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

func TestAtomicRollsBackOnError(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.SetProductStock(ctx, "prd-water", 1); err != nil {
			return err
		}
		table, err := tx.LockTable(ctx, "tbl-t01")
		if err != nil {
			return err
		}
		table.Occupy("Rina", time.Now().UTC())
		if err := tx.SaveTableOccupancy(ctx, *table); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	p, _ := s.GetProduct(ctx, "prd-water")
	if p.Stock != 48 {
		t.Fatalf("expected stock rollback to 48, got %d", p.Stock)
	}
	table, _ := s.GetTable(ctx, "tbl-t01")
	if table.Status != domain.TableEmpty || table.CurrentCustomerName != nil {
		t.Fatalf("expected table rollback to EMPTY, got %+v", table)
	}
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.SetProductStock(ctx, "prd-racket", 2)
	})
	if err != nil {
		t.Fatalf("atomic: %v", err)
	}
	p, _ := s.GetProduct(ctx, "prd-racket")
	if p.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", p.Stock)
	}
}

func TestNextSequenceIsPerScopeAndDay(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	var got []int
	_ = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, scope := range []string{"invoice", "invoice", "booking"} {
			n, _ := tx.NextSequence(ctx, scope, day)
			got = append(got, n)
		}
		n, _ := tx.NextSequence(ctx, "invoice", day.AddDate(0, 0, 1))
		got = append(got, n)
		return nil
	})

	want := []int{1, 2, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestInsertBookingRejectsOverlap(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	insert := func(id string, from, to time.Time) error {
		return s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			return tx.InsertBooking(ctx, domain.Booking{
				ID: id, CourtID: "court-a", StartTime: from, EndTime: to, BookingStatus: domain.BookingPending,
			})
		})
	}

	if err := insert("b1", start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := insert("b2", start.Add(time.Hour), start.Add(3*time.Hour))
	var overlap *store.OverlapError
	if !errors.As(err, &overlap) || !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected overlap conflict, got %v", err)
	}
	if err := insert("b3", start.Add(2*time.Hour), start.Add(3*time.Hour)); err != nil {
		t.Fatalf("adjacent booking should be accepted: %v", err)
	}
}
