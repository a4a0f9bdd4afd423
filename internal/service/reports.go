package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

var reportTypes = []domain.TransactionType{domain.TransactionPOS, domain.TransactionRental, domain.TransactionBooking}

// DailyReport aggregates the transactions created on one business day.
// Cancelled transactions are counted but excluded from money totals.
func (s *Service) DailyReport(ctx context.Context, date string) (domain.DailyReport, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.DailyReport{}, err
	}

	day, err := s.parseBusinessDate(date)
	if err != nil {
		return domain.DailyReport{}, err
	}
	from := day
	to := day.AddDate(0, 0, 1)

	txs, err := s.repo.ListTransactions(ctx, domain.TransactionFilter{From: from, To: to, Limit: 500})
	if err != nil {
		return domain.DailyReport{}, err
	}

	report := domain.DailyReport{Date: day.Format("2006-01-02"), BookingHours: decimal.Zero}
	byType := make(map[domain.TransactionType]*domain.DailyReportTypeTotal, len(reportTypes))
	for _, typ := range reportTypes {
		byType[typ] = &domain.DailyReportTypeTotal{Type: typ}
	}

	for _, t := range txs {
		report.Transactions++
		if t.Status == domain.TransactionCancelled {
			report.CancelledCount++
			continue
		}
		report.GrossCents += t.TotalCents
		if t.Status == domain.TransactionPaid || t.Status == domain.TransactionCompleted {
			report.PaidCents += t.TotalCents
		}
		if total, ok := byType[t.Type]; ok {
			total.Transactions++
			total.TotalCents += t.TotalCents
		}
	}
	for _, typ := range reportTypes {
		report.ByType = append(report.ByType, *byType[typ])
	}

	bookings, err := s.repo.ListBookings(ctx, domain.BookingFilter{From: from, To: to, Limit: 500})
	if err != nil {
		return domain.DailyReport{}, err
	}
	for _, b := range bookings {
		if b.BookingStatus == domain.BookingCancelled {
			continue
		}
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			report.BookingHours = report.BookingHours.Add(b.DurationHours)
		}
	}

	report.OrderRequestsCount, err = s.repo.CountOrderRequests(ctx, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	return report, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}

	day, err := s.parseBusinessDate(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAuditLogs(ctx, day, day.AddDate(0, 0, 1), limit)
}

func (s *Service) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, store.ErrForbidden
	}
	return s.repo.ListNotifications(ctx, strings.ToLower(actor.Username), unreadOnly, limit)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return validationf("notification id is required")
	}
	return s.repo.MarkNotificationRead(ctx, id)
}
