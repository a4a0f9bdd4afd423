package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/xid"
)

const minBookingDuration = time.Hour

var minutesPerHour = decimal.NewFromInt(60)

// bookingPrice returns the slot length in hours and its price in cents.
// Prices are computed on whole minutes and rounded half-up to the cent.
func bookingPrice(start time.Time, end time.Time, pricePerHourCents int64) (decimal.Decimal, int64) {
	minutes := decimal.NewFromInt(int64(end.Sub(start) / time.Minute))
	hours := minutes.Div(minutesPerHour).Round(2)
	total := decimal.NewFromInt(pricePerHourCents).Mul(minutes).Div(minutesPerHour).Round(0)
	return hours, total.IntPart()
}

// derivePaymentStatus ignores any status the caller sent; it only looks at money.
func derivePaymentStatus(paidCents int64, totalCents int64) (domain.PaymentStatus, domain.BookingStatus) {
	switch {
	case paidCents >= totalCents:
		return domain.PaymentPaid, domain.BookingConfirmed
	case paidCents > 0:
		return domain.PaymentPartial, domain.BookingPending
	default:
		return domain.PaymentUnpaid, domain.BookingPending
	}
}

func (s *Service) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (domain.BookingResult, error) {
	req.CourtID = strings.TrimSpace(req.CourtID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if req.CourtID == "" {
		return domain.BookingResult{}, validationf("court_id is required")
	}
	if req.CustomerName == "" || req.CustomerPhone == "" {
		return domain.BookingResult{}, validationf("customer name and phone are required")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return domain.BookingResult{}, validationf("end_time must be after start_time")
	}
	if req.EndTime.Sub(req.StartTime) < minBookingDuration {
		return domain.BookingResult{}, validationf("booking must last at least one hour")
	}
	if req.PaidCents < 0 {
		return domain.BookingResult{}, validationf("paid must not be negative")
	}

	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	now := s.now()
	createdBy := actorName(ctx)
	var result domain.BookingResult

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		court, err := tx.LockCourt(ctx, req.CourtID)
		if err != nil {
			return err
		}
		if court.Status != domain.CourtActive {
			return fmt.Errorf("%w: court %s is %s", store.ErrInactive, court.Name, court.Status)
		}

		clashes, err := tx.FindOverlappingBookings(ctx, court.ID, start, end)
		if err != nil {
			return err
		}
		if len(clashes) > 0 {
			c := clashes[0]
			return &store.OverlapError{CourtID: court.ID, BookingID: c.ID, StartTime: c.StartTime, EndTime: c.EndTime}
		}

		hours, total := bookingPrice(start, end, court.PricePerHourCents)
		paymentStatus, bookingStatus := derivePaymentStatus(req.PaidCents, total)

		txStatus := domain.TransactionPending
		if paymentStatus == domain.PaymentPaid {
			txStatus = domain.TransactionPaid
		}

		invoice, err := s.nextInvoiceNumber(ctx, tx, now)
		if err != nil {
			return err
		}
		startDay := s.businessDay(start)
		seq, err := tx.NextSequence(ctx, scopeBooking, startDay)
		if err != nil {
			return fmt.Errorf("allocating booking number: %w", err)
		}

		bookingID := xid.New("bk")
		txID := xid.New("trx")
		localStart, localEnd := start.In(s.loc), end.In(s.loc)

		transaction := domain.Transaction{
			ID:            txID,
			InvoiceNumber: invoice,
			Type:          domain.TransactionBooking,
			CustomerName:  req.CustomerName,
			PaymentMethod: defaultString(req.PaymentMethod, "cash"),
			TotalCents:    total,
			PaidCents:     req.PaidCents,
			ChangeCents:   maxInt64(0, req.PaidCents-total),
			Status:        txStatus,
			Notes:         strings.TrimSpace(req.Notes),
			CreatedBy:     createdBy,
			CreatedAt:     now,
			UpdatedAt:     now,
			Items: []domain.TransactionItem{{
				ID:             xid.New("txi"),
				TransactionID:  txID,
				ItemType:       domain.ItemBooking,
				ItemID:         bookingID,
				Name:           fmt.Sprintf("%s %s-%s (%s h)", court.Name, localStart.Format("2006-01-02 15:04"), localEnd.Format("15:04"), hours.String()),
				Quantity:       1,
				UnitPriceCents: total,
				SubtotalCents:  total,
			}},
		}
		if err := tx.InsertTransaction(ctx, transaction); err != nil {
			return err
		}

		linked := txID
		booking := domain.Booking{
			ID:                bookingID,
			BookingNumber:     formatNumber("BK", startDay, seq),
			CourtID:           court.ID,
			CustomerName:      req.CustomerName,
			CustomerPhone:     req.CustomerPhone,
			CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
			StartTime:         start,
			EndTime:           end,
			DurationHours:     hours,
			PricePerHourCents: court.PricePerHourCents,
			TotalCents:        total,
			PaidCents:         req.PaidCents,
			PaymentStatus:     paymentStatus,
			BookingStatus:     bookingStatus,
			TransactionID:     &linked,
			Notes:             strings.TrimSpace(req.Notes),
			CreatedBy:         createdBy,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}

		result = domain.BookingResult{Booking: booking, Transaction: transaction}
		return nil
	})
	if err != nil {
		return domain.BookingResult{}, err
	}

	b := result.Booking
	s.invalidateAvailability(ctx, b)
	s.publish(ctx, domain.NotifyBookingCreated, "New booking",
		fmt.Sprintf("%s %s %s", b.BookingNumber, b.CustomerName, b.StartTime.In(s.loc).Format("2006-01-02 15:04")),
		bookingPayload(b))
	s.logAudit(ctx, "booking_create", "booking", b.ID,
		fmt.Sprintf("number=%s,court=%s,total=%d,paid=%d,status=%s", b.BookingNumber, b.CourtID, b.TotalCents, b.PaidCents, b.BookingStatus))
	return result, nil
}

func (s *Service) CancelBooking(ctx context.Context, id string) (domain.Booking, error) {
	now := s.now()
	var cancelled domain.Booking

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if !b.BookingStatus.CanTransition(domain.BookingCancelled) {
			return &store.TransitionError{Entity: "booking", From: string(b.BookingStatus), To: string(domain.BookingCancelled)}
		}

		b.BookingStatus = domain.BookingCancelled
		b.UpdatedAt = now
		if err := tx.UpdateBookingStatus(ctx, *b); err != nil {
			return err
		}

		if b.TransactionID != nil {
			t, err := tx.LockTransaction(ctx, *b.TransactionID)
			if err != nil {
				return err
			}
			if t.Status != domain.TransactionCancelled {
				t.Status = domain.TransactionCancelled
				t.UpdatedAt = now
				if err := tx.UpdateTransactionStatus(ctx, *t); err != nil {
					return err
				}
			}
		}

		cancelled = *b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.invalidateAvailability(ctx, cancelled)
	s.publish(ctx, domain.NotifyBookingCancelled, "Booking cancelled",
		fmt.Sprintf("%s cancelled", cancelled.BookingNumber), bookingPayload(cancelled))
	s.logAudit(ctx, "booking_cancel", "booking", cancelled.ID, "number="+cancelled.BookingNumber)
	return cancelled, nil
}

// CompleteBooking marks the slot as played. A cancelled booking cannot be
// completed: that would revive a slot someone else may now hold.
func (s *Service) CompleteBooking(ctx context.Context, id string) (domain.Booking, error) {
	now := s.now()
	var completed domain.Booking

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if !b.BookingStatus.CanTransition(domain.BookingCompleted) {
			return &store.TransitionError{Entity: "booking", From: string(b.BookingStatus), To: string(domain.BookingCompleted)}
		}

		b.BookingStatus = domain.BookingCompleted
		b.UpdatedAt = now
		if err := tx.UpdateBookingStatus(ctx, *b); err != nil {
			return err
		}
		completed = *b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.invalidateAvailability(ctx, completed)
	s.logAudit(ctx, "booking_complete", "booking", completed.ID, "number="+completed.BookingNumber)
	return completed, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	return *b, nil
}

func (s *Service) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	if filter.Limit < 1 {
		filter.Limit = 200
	}
	return s.repo.ListBookings(ctx, filter)
}

// GetCourtAvailability lists the busy intervals of a court on one business
// day, reading through the availability cache.
func (s *Service) GetCourtAvailability(ctx context.Context, courtID string, date string) (domain.CourtAvailability, error) {
	day, err := s.parseBusinessDate(date)
	if err != nil {
		return domain.CourtAvailability{}, err
	}
	if _, err := s.repo.GetCourt(ctx, courtID); err != nil {
		return domain.CourtAvailability{}, err
	}
	key := day.Format("2006-01-02")

	if cached, ok, err := s.availability.Get(ctx, courtID, key); err != nil {
		log.Printf("[service] WARN: availability cache get court=%s date=%s: %v", courtID, key, err)
	} else if ok {
		return *cached, nil
	}

	from := day
	to := day.AddDate(0, 0, 1)
	bookings, err := s.repo.ListBookings(ctx, domain.BookingFilter{CourtID: courtID, From: from, To: to, Limit: 500})
	if err != nil {
		return domain.CourtAvailability{}, err
	}

	busy := make([]domain.BusyInterval, 0, len(bookings))
	for _, b := range bookings {
		if b.BookingStatus == domain.BookingCancelled || !b.Overlaps(from, to) {
			continue
		}
		busy = append(busy, domain.BusyInterval{
			BookingID:     b.ID,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			BookingStatus: b.BookingStatus,
		})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].StartTime.Before(busy[j].StartTime) })

	out := domain.CourtAvailability{CourtID: courtID, Date: key, Busy: busy}
	if err := s.availability.Set(ctx, &out, s.availabilityTTL); err != nil {
		log.Printf("[service] WARN: availability cache set court=%s date=%s: %v", courtID, key, err)
	}
	return out, nil
}

// invalidateAvailability drops every cached day the booking touches.
func (s *Service) invalidateAvailability(ctx context.Context, b domain.Booking) {
	dates := make([]string, 0, 2)
	last := s.businessDay(b.EndTime.Add(-time.Nanosecond))
	for day := s.businessDay(b.StartTime); !day.After(last); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format("2006-01-02"))
	}
	if err := s.availability.Invalidate(ctx, b.CourtID, dates...); err != nil {
		log.Printf("[service] WARN: availability cache invalidate court=%s: %v", b.CourtID, err)
	}
}

type bookingEvent struct {
	BookingID     string               `json:"booking_id"`
	BookingNumber string               `json:"booking_number"`
	CourtID       string               `json:"court_id"`
	CustomerName  string               `json:"customer_name"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	TotalCents    int64                `json:"total_cents"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	BookingStatus domain.BookingStatus `json:"booking_status"`
}

func bookingPayload(b domain.Booking) bookingEvent {
	return bookingEvent{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		CourtID:       b.CourtID,
		CustomerName:  b.CustomerName,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		TotalCents:    b.TotalCents,
		PaymentStatus: b.PaymentStatus,
		BookingStatus: b.BookingStatus,
	}
}
