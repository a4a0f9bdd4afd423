package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")

	ErrDuplicate           = fmt.Errorf("%w: duplicate key", ErrConflict)
	ErrInsufficientStock   = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrInsufficientPayment = fmt.Errorf("%w: insufficient payment", ErrConflict)
	ErrBookingOverlap      = fmt.Errorf("%w: court already booked for that time", ErrConflict)
	ErrInactive            = fmt.Errorf("%w: inactive", ErrInvalidState)
	ErrIllegalTransition   = fmt.Errorf("%w: illegal status transition", ErrInvalidState)
)

// StockError names the item that could not cover the requested quantity.
type StockError struct {
	ItemType  string `json:"item_type"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %q: requested %d, available %d", e.ItemType, e.Name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

type PaymentError struct {
	TotalCents int64 `json:"total_cents"`
	PaidCents  int64 `json:"paid_cents"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %d, paid %d", e.TotalCents, e.PaidCents)
}

func (e *PaymentError) Unwrap() error { return ErrInsufficientPayment }

type TransitionError struct {
	Entity string `json:"entity"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

type OverlapError struct {
	CourtID   string    `json:"court_id"`
	BookingID string    `json:"booking_id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("court %s already booked from %s to %s", e.CourtID, e.StartTime.Format(time.RFC3339), e.EndTime.Format(time.RFC3339))
}

func (e *OverlapError) Unwrap() error { return ErrBookingOverlap }
