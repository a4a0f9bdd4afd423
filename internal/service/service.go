package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"venuepos/backend/internal/cache"
	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/xid"
)

const (
	scopeInvoice = "invoice"
	scopeBooking = "booking"

	defaultAvailabilityTTL = 60 * time.Second

	// maxLineQuantity is the largest quantity accepted on one line item.
	maxLineQuantity = 10000
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Notifier receives events after their unit of work has committed. It must
// not block.
type Notifier interface {
	Publish(ctx context.Context, n domain.Notification)
}

type Service struct {
	repo            store.Repository
	notifier        Notifier
	availability    cache.AvailabilityCache
	availabilityTTL time.Duration
	loc             *time.Location
	now             func() time.Time
}

func New(repo store.Repository, notifier Notifier, availability cache.AvailabilityCache, loc *time.Location) *Service {
	if availability == nil {
		availability = cache.NoopAvailabilityCache{}
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		repo:            repo,
		notifier:        notifier,
		availability:    availability,
		availabilityTTL: defaultAvailabilityTTL,
		loc:             loc,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) SetAvailabilityTTL(ttl time.Duration) {
	if ttl > 0 {
		s.availabilityTTL = ttl
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func requireRole(ctx context.Context, roles ...domain.Role) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: authentication required", store.ErrForbidden)
	}
	for _, r := range roles {
		if actor.Role == r {
			return actor, nil
		}
	}
	return domain.Actor{}, fmt.Errorf("%w: role %s not allowed", store.ErrForbidden, actor.Role)
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		return actor.Username
	}
	return "system"
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrValidation, fmt.Sprintf(format, args...))
}

// businessDay returns midnight of t's calendar day in the business timezone.
func (s *Service) businessDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) parseBusinessDate(date string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return s.businessDay(s.now()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, validationf("date must be YYYY-MM-DD")
	}
	return day, nil
}

func formatNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

func (s *Service) nextInvoiceNumber(ctx context.Context, tx store.Tx, at time.Time) (string, error) {
	day := s.businessDay(at)
	seq, err := tx.NextSequence(ctx, scopeInvoice, day)
	if err != nil {
		return "", fmt.Errorf("allocating invoice number: %w", err)
	}
	return formatNumber("INV", day, seq), nil
}

func (s *Service) publish(ctx context.Context, typ string, title string, message string, payload any) {
	if s.notifier == nil {
		return
	}

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[service] WARN: failed to encode %s payload: %v", typ, err)
		} else {
			raw = b
		}
	}

	s.notifier.Publish(ctx, domain.Notification{
		ID:        xid.New("ntf"),
		Type:      typ,
		Title:     title,
		Message:   message,
		Payload:   raw,
		CreatedAt: s.now(),
	})
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "SYSTEM"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     string(actor.Role),
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     s.now(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func maxInt64(a int64, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// lineSubtotal multiplies a unit price by a quantity, refusing results that
// would not fit in int64.
func lineSubtotal(unitPriceCents int64, quantity int) (int64, error) {
	if unitPriceCents < 0 || quantity < 0 {
		return 0, validationf("price and quantity must not be negative")
	}
	if unitPriceCents > 0 && int64(quantity) > math.MaxInt64/unitPriceCents {
		return 0, validationf("line amount is too large")
	}
	return unitPriceCents * int64(quantity), nil
}

func addCents(total int64, amount int64) (int64, error) {
	if amount > 0 && total > math.MaxInt64-amount {
		return 0, validationf("total amount is too large")
	}
	return total + amount, nil
}
