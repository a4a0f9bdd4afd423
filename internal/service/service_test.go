package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/store/memory"
)

var testNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type captureNotifier struct {
	mu     sync.Mutex
	events []domain.Notification
}

func (c *captureNotifier) Publish(_ context.Context, n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, n)
}

func (c *captureNotifier) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *memory.Store, *captureNotifier) {
	t.Helper()
	repo := memory.NewSeeded()
	notifier := &captureNotifier{}
	svc := New(repo, notifier, nil, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc, repo, notifier
}

func ownerCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "owner", Role: domain.RoleOwner})
}

func kasirCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "kasir", Role: domain.RoleKasir})
}

func productStock(t *testing.T, repo store.Repository, id string) int {
	t.Helper()
	p, err := repo.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("get product %s: %v", id, err)
	}
	return p.Stock
}

func menuStock(t *testing.T, repo store.Repository, id string) int {
	t.Helper()
	m, err := repo.GetMenu(context.Background(), id)
	if err != nil {
		t.Fatalf("get menu %s: %v", id, err)
	}
	if m.Stock == nil {
		t.Fatalf("menu %s does not track stock", id)
	}
	return *m.Stock
}

func strPtr(v string) *string { return &v }

func TestRentalCompleteReturnsStock(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Type:          domain.TransactionRental,
		CustomerName:  "Rina",
		PaymentMethod: "cash",
		PaidCents:     5000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemProduct, ItemID: "prd-racket", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if got := productStock(t, repo, "prd-racket"); got != 3 {
		t.Fatalf("expected racket stock 3, got %d", got)
	}

	rents, _ := repo.ListRentRecords(context.Background(), created.ID)
	if len(rents) != 1 || rents[0].Status != domain.RecordActive || rents[0].Quantity != 2 {
		t.Fatalf("expected one ACTIVE rent record of 2, got %+v", rents)
	}

	completed, err := svc.CompleteTransaction(ownerCtx(), created.ID)
	if err != nil {
		t.Fatalf("complete rental: %v", err)
	}
	if completed.Status != domain.TransactionCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}
	if got := productStock(t, repo, "prd-racket"); got != 5 {
		t.Fatalf("expected racket stock back to 5, got %d", got)
	}

	rents, _ = repo.ListRentRecords(context.Background(), created.ID)
	if rents[0].Status != domain.RecordReturned || rents[0].ReturnedAt == nil {
		t.Fatalf("expected RETURNED rent record with returnedAt, got %+v", rents[0])
	}

	if _, err := svc.CompleteTransaction(ownerCtx(), created.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected second complete to fail with invalid state, got %v", err)
	}

	types := notifier.types()
	if len(types) != 2 || types[0] != domain.NotifyTransactionCreated || types[1] != domain.NotifyRentalReturned {
		t.Fatalf("unexpected notifications %v", types)
	}
}

func TestCompleteRentalKeepsSoldItemsSold(t *testing.T) {
	svc, repo, _ := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Type:      domain.TransactionRental,
		PaidCents: 10000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemProduct, ItemID: "prd-shoes", Quantity: 1},
			{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if _, err := svc.CompleteTransaction(ownerCtx(), created.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if got := productStock(t, repo, "prd-shoes"); got != 4 {
		t.Fatalf("expected shoes restored to 4, got %d", got)
	}
	if got := productStock(t, repo, "prd-water"); got != 46 {
		t.Fatalf("expected water to stay sold at 46, got %d", got)
	}
}

func TestCompleteRejectsNonRental(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: 500000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CompleteTransaction(ownerCtx(), created.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected invalid state for POS complete, got %v", err)
	}
}

func TestInsufficientPaymentRollsBackEverything(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	_, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		TableID:   strPtr("tbl-t01"),
		PaidCents: 1000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 2},
			{ItemType: domain.ItemMenu, ItemID: "mnu-nasi-goreng", Quantity: 1},
		},
	})

	var payErr *store.PaymentError
	if !errors.As(err, &payErr) || !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected payment conflict, got %v", err)
	}
	if payErr.TotalCents != 4500000 || payErr.PaidCents != 1000000 {
		t.Fatalf("unexpected payment details %+v", payErr)
	}

	if got := productStock(t, repo, "prd-water"); got != 48 {
		t.Fatalf("expected water stock untouched at 48, got %d", got)
	}
	if got := menuStock(t, repo, "mnu-nasi-goreng"); got != 20 {
		t.Fatalf("expected menu stock untouched at 20, got %d", got)
	}
	txs, _ := repo.ListTransactions(context.Background(), domain.TransactionFilter{})
	if len(txs) != 0 {
		t.Fatalf("expected no transaction rows, got %d", len(txs))
	}
	table, _ := repo.GetTable(context.Background(), "tbl-t01")
	if table.Status != domain.TableEmpty {
		t.Fatalf("expected table to stay EMPTY, got %s", table.Status)
	}
	if len(notifier.types()) != 0 {
		t.Fatalf("expected no notifications, got %v", notifier.types())
	}
}

func TestInsufficientStockNamesItem(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Type:      domain.TransactionRental,
		PaidCents: 100000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemProduct, ItemID: "prd-racket", Quantity: 1},
			{ItemType: domain.ItemProduct, ItemID: "prd-shoes", Quantity: 9},
		},
	})

	var stockErr *store.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected stock error, got %v", err)
	}
	if stockErr.ItemID != "prd-shoes" || stockErr.Requested != 9 || stockErr.Available != 4 {
		t.Fatalf("unexpected stock details %+v", stockErr)
	}
	if got := productStock(t, repo, "prd-racket"); got != 5 {
		t.Fatalf("expected earlier decrement rolled back, racket stock %d", got)
	}
}

func TestCreateTransactionRejectsInactiveAndMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.SetMenuActive(ownerCtx(), "mnu-americano", false); err != nil {
		t.Fatalf("deactivate menu: %v", err)
	}

	_, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: 10000000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemMenu, ItemID: "mnu-americano", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}

	_, err = svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: 10000000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-missing", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Type:  domain.TransactionBooking,
		Items: []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for BOOKING type, got %v", err)
	}
}

func TestCreateTransactionNumbersInvoicesPerDay(t *testing.T) {
	svc, _, _ := newTestService(t)

	var invoices []string
	for i := 0; i < 2; i++ {
		created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
			PaidCents: 500000,
			Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		invoices = append(invoices, created.InvoiceNumber)
	}

	if invoices[0] != "INV-20260501-0001" || invoices[1] != "INV-20260501-0002" {
		t.Fatalf("unexpected invoice numbers %v", invoices)
	}
}

func TestCreateTransactionPricesFromCatalog(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		CustomerName: "Budi",
		TableID:      strPtr("tbl-t02"),
		PaidCents:    10000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemMenu, ItemID: "mnu-kopi-susu", Quantity: 2},
			{ItemType: domain.ItemProduct, ItemID: "prd-isotonic", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.TotalCents != 5400000 || created.ChangeCents != 4600000 {
		t.Fatalf("expected total 5400000 change 4600000, got %d/%d", created.TotalCents, created.ChangeCents)
	}
	if created.Status != domain.TransactionPaid {
		t.Fatalf("expected PAID, got %s", created.Status)
	}
	if created.Items[0].UnitPriceCents != 2200000 || created.Items[0].SubtotalCents != 4400000 {
		t.Fatalf("unexpected first line %+v", created.Items[0])
	}
}

func TestCancelTransactionRestoresStockAndReleasesTable(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		TableID:   strPtr("tbl-t03"),
		PaidCents: 20000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 3},
			{ItemType: domain.ItemProduct, ItemID: "prd-racket", Quantity: 1},
			{ItemType: domain.ItemMenu, ItemID: "mnu-nasi-goreng", Quantity: 2},
			{ItemType: domain.ItemMenu, ItemID: "mnu-kopi-susu", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	table, _ := repo.GetTable(context.Background(), "tbl-t03")
	if table.Status != domain.TableOccupied || table.CurrentCustomerName == nil || *table.CurrentCustomerName != "Guest" || table.OccupiedAt == nil {
		t.Fatalf("expected table occupied by Guest, got %+v", table)
	}

	if _, err := svc.CancelTransaction(kasirCtx(), created.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected kasir cancel to be forbidden, got %v", err)
	}

	cancelled, err := svc.CancelTransaction(ownerCtx(), created.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.TransactionCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	if got := productStock(t, repo, "prd-water"); got != 48 {
		t.Fatalf("expected water back to 48, got %d", got)
	}
	if got := productStock(t, repo, "prd-racket"); got != 5 {
		t.Fatalf("expected racket back to 5, got %d", got)
	}
	if got := menuStock(t, repo, "mnu-nasi-goreng"); got != 20 {
		t.Fatalf("expected nasi goreng back to 20, got %d", got)
	}

	table, _ = repo.GetTable(context.Background(), "tbl-t03")
	if table.Status != domain.TableEmpty || table.CurrentCustomerName != nil || table.OccupiedAt != nil {
		t.Fatalf("expected table released, got %+v", table)
	}

	sells, _ := repo.ListSellRecords(context.Background(), created.ID)
	rents, _ := repo.ListRentRecords(context.Background(), created.ID)
	if sells[0].Status != domain.RecordCancelled || rents[0].Status != domain.RecordCancelled {
		t.Fatalf("expected records cancelled, got sell=%s rent=%s", sells[0].Status, rents[0].Status)
	}

	if _, err := svc.CancelTransaction(ownerCtx(), created.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected second cancel rejected, got %v", err)
	}
	if got := productStock(t, repo, "prd-water"); got != 48 {
		t.Fatalf("second cancel must not restore twice, water=%d", got)
	}

	types := notifier.types()
	if types[len(types)-1] != domain.NotifyTransactionCancelled {
		t.Fatalf("expected cancel notification last, got %v", types)
	}
}

func TestCancelRejectsCompletedRental(t *testing.T) {
	svc, repo, _ := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Type:      domain.TransactionRental,
		PaidCents: 2500000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-racket", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CompleteTransaction(ownerCtx(), created.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.CancelTransaction(ownerCtx(), created.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected cancel of completed rental rejected, got %v", err)
	}
	if got := productStock(t, repo, "prd-racket"); got != 5 {
		t.Fatalf("expected racket stock 5, got %d", got)
	}
}

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	svc, repo, _ := newTestService(t)

	const buyers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
				Type:      domain.TransactionRental,
				PaidCents: 3000000,
				Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-shoes", Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, store.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 4 {
		t.Fatalf("expected exactly 4 rentals of 4 shoes, got %d", succeeded)
	}
	if got := productStock(t, repo, "prd-shoes"); got != 0 {
		t.Fatalf("expected shoes stock 0, got %d", got)
	}
}

func TestPayTransactionRules(t *testing.T) {
	svc, _, _ := newTestService(t)

	paid, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: 500000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.PayTransaction(kasirCtx(), paid.ID, domain.PayTransactionRequest{PaidCents: 500000}); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected paying a PAID transaction to fail, got %v", err)
	}
}

func TestBookingScenario(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	start := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	res, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID:       "court-a",
		CustomerName:  "Andi",
		CustomerPhone: "08123",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		PaymentStatus: domain.PaymentUnpaid,
		PaidCents:     20000000,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	b := res.Booking
	if b.TotalCents != 20000000 || !b.DurationHours.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected total 20000000 for 2h, got %d for %s", b.TotalCents, b.DurationHours)
	}
	if b.PaymentStatus != domain.PaymentPaid || b.BookingStatus != domain.BookingConfirmed {
		t.Fatalf("expected PAID/CONFIRMED, got %s/%s", b.PaymentStatus, b.BookingStatus)
	}
	if b.BookingNumber != "BK-20260502-0001" {
		t.Fatalf("unexpected booking number %s", b.BookingNumber)
	}
	if res.Transaction.Type != domain.TransactionBooking || res.Transaction.Status != domain.TransactionPaid {
		t.Fatalf("unexpected backing transaction %+v", res.Transaction)
	}
	if len(res.Transaction.Items) != 1 || res.Transaction.Items[0].ItemType != domain.ItemBooking {
		t.Fatalf("expected one BOOKING line item, got %+v", res.Transaction.Items)
	}
	if b.TransactionID == nil || *b.TransactionID != res.Transaction.ID {
		t.Fatalf("booking not linked to its transaction")
	}

	_, err = svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID:       "court-a",
		CustomerName:  "Sari",
		CustomerPhone: "08999",
		StartTime:     start.Add(time.Hour),
		EndTime:       start.Add(3 * time.Hour),
	})
	var overlap *store.OverlapError
	if !errors.As(err, &overlap) || !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected overlap conflict, got %v", err)
	}
	if overlap.BookingID != b.ID {
		t.Fatalf("expected clash with %s, got %+v", b.ID, overlap)
	}

	if _, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID:       "court-a",
		CustomerName:  "Sari",
		CustomerPhone: "08999",
		StartTime:     start.Add(2 * time.Hour),
		EndTime:       start.Add(3 * time.Hour),
	}); err != nil {
		t.Fatalf("adjacent slot should be accepted: %v", err)
	}

	bookings, _ := repo.ListBookings(context.Background(), domain.BookingFilter{CourtID: "court-a"})
	for i := range bookings {
		for j := i + 1; j < len(bookings); j++ {
			if bookings[i].Overlaps(bookings[j].StartTime, bookings[j].EndTime) {
				t.Fatalf("bookings %s and %s overlap", bookings[i].ID, bookings[j].ID)
			}
		}
	}

	if types := notifier.types(); len(types) != 2 || types[0] != domain.NotifyBookingCreated {
		t.Fatalf("unexpected notifications %v", types)
	}
}

func TestBookingValidationAndCourtState(t *testing.T) {
	svc, _, _ := newTestService(t)
	start := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		req  domain.CreateBookingRequest
		want error
	}{
		{"short slot", domain.CreateBookingRequest{CourtID: "court-a", CustomerName: "A", CustomerPhone: "1", StartTime: start, EndTime: start.Add(30 * time.Minute)}, store.ErrValidation},
		{"reversed", domain.CreateBookingRequest{CourtID: "court-a", CustomerName: "A", CustomerPhone: "1", StartTime: start, EndTime: start.Add(-time.Hour)}, store.ErrValidation},
		{"no phone", domain.CreateBookingRequest{CourtID: "court-a", CustomerName: "A", StartTime: start, EndTime: start.Add(time.Hour)}, store.ErrValidation},
		{"maintenance", domain.CreateBookingRequest{CourtID: "court-c", CustomerName: "A", CustomerPhone: "1", StartTime: start, EndTime: start.Add(time.Hour)}, store.ErrInvalidState},
		{"missing court", domain.CreateBookingRequest{CourtID: "court-x", CustomerName: "A", CustomerPhone: "1", StartTime: start, EndTime: start.Add(time.Hour)}, store.ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := svc.CreateBooking(kasirCtx(), tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestPartialBookingThenPay(t *testing.T) {
	svc, repo, _ := newTestService(t)
	start := time.Date(2026, 5, 3, 18, 0, 0, 0, time.UTC)

	res, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID:       "court-b",
		CustomerName:  "Dewi",
		CustomerPhone: "0877",
		StartTime:     start,
		EndTime:       start.Add(90 * time.Minute),
		PaymentStatus: domain.PaymentPaid,
		PaidCents:     5000000,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if res.Booking.TotalCents != 12000000 || res.Booking.DurationHours.String() != "1.5" {
		t.Fatalf("expected 1.5h at 12000000, got %s at %d", res.Booking.DurationHours, res.Booking.TotalCents)
	}
	if res.Booking.PaymentStatus != domain.PaymentPartial || res.Booking.BookingStatus != domain.BookingPending {
		t.Fatalf("expected PARTIAL/PENDING regardless of caller status, got %s/%s", res.Booking.PaymentStatus, res.Booking.BookingStatus)
	}
	if res.Transaction.Status != domain.TransactionPending {
		t.Fatalf("expected PENDING transaction, got %s", res.Transaction.Status)
	}

	if _, err := svc.PayTransaction(kasirCtx(), res.Transaction.ID, domain.PayTransactionRequest{PaidCents: 10000000}); !errors.Is(err, store.ErrInsufficientPayment) {
		t.Fatalf("expected insufficient payment, got %v", err)
	}

	paid, err := svc.PayTransaction(kasirCtx(), res.Transaction.ID, domain.PayTransactionRequest{PaymentMethod: "qris", PaidCents: 12000000})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != domain.TransactionPaid || paid.ChangeCents != 0 || paid.PaymentMethod != "qris" {
		t.Fatalf("unexpected paid transaction %+v", paid)
	}

	b, _ := repo.GetBooking(context.Background(), res.Booking.ID)
	if b.PaymentStatus != domain.PaymentPaid || b.BookingStatus != domain.BookingConfirmed {
		t.Fatalf("expected booking PAID/CONFIRMED after payment, got %s/%s", b.PaymentStatus, b.BookingStatus)
	}
}

func TestCancelBookingFreesSlotAndTransaction(t *testing.T) {
	svc, repo, _ := newTestService(t)
	start := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	req := domain.CreateBookingRequest{CourtID: "court-a", CustomerName: "Eka", CustomerPhone: "0811", StartTime: start, EndTime: start.Add(time.Hour)}

	res, err := svc.CreateBooking(kasirCtx(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := svc.CancelBooking(kasirCtx(), res.Booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.BookingStatus != domain.BookingCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.BookingStatus)
	}
	tx, _ := repo.GetTransaction(context.Background(), res.Transaction.ID)
	if tx.Status != domain.TransactionCancelled {
		t.Fatalf("expected linked transaction cancelled, got %s", tx.Status)
	}

	if _, err := svc.CancelBooking(kasirCtx(), res.Booking.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected second cancel rejected, got %v", err)
	}
	if _, err := svc.CompleteBooking(kasirCtx(), res.Booking.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected completing a cancelled booking rejected, got %v", err)
	}
	if _, err := svc.CreateBooking(kasirCtx(), req); err != nil {
		t.Fatalf("cancelled slot should be bookable again: %v", err)
	}
}

func TestCancelBookingTransactionCancelsBooking(t *testing.T) {
	svc, repo, _ := newTestService(t)
	start := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	res, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID: "court-b", CustomerName: "Fajar", CustomerPhone: "0822", StartTime: start, EndTime: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CancelTransaction(ownerCtx(), res.Transaction.ID); err != nil {
		t.Fatalf("cancel transaction: %v", err)
	}
	b, _ := repo.GetBooking(context.Background(), res.Booking.ID)
	if b.BookingStatus != domain.BookingCancelled {
		t.Fatalf("expected booking cancelled with its transaction, got %s", b.BookingStatus)
	}
}

func TestCompleteBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	start := time.Date(2026, 5, 5, 7, 0, 0, 0, time.UTC)

	res, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID: "court-a", CustomerName: "Gita", CustomerPhone: "0833", StartTime: start, EndTime: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	completed, err := svc.CompleteBooking(kasirCtx(), res.Booking.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.BookingStatus != domain.BookingCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.BookingStatus)
	}
}

type countingCache struct {
	mu          sync.Mutex
	entries     map[string]domain.CourtAvailability
	invalidated []string
}

func (c *countingCache) Get(_ context.Context, courtID string, date string) (*domain.CourtAvailability, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[courtID+":"+date]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *countingCache) Set(_ context.Context, value *domain.CourtAvailability, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[value.CourtID+":"+value.Date] = *value
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, courtID string, dates ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		delete(c.entries, courtID+":"+d)
		c.invalidated = append(c.invalidated, courtID+":"+d)
	}
	return nil
}

func TestCourtAvailabilityReadsThroughCache(t *testing.T) {
	repo := memory.NewSeeded()
	c := &countingCache{entries: map[string]domain.CourtAvailability{}}
	svc := New(repo, nil, c, time.UTC)
	svc.now = func() time.Time { return testNow }

	day := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)
	late, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID: "court-a", CustomerName: "H", CustomerPhone: "1", StartTime: day.Add(20 * time.Hour), EndTime: day.Add(22 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create late: %v", err)
	}
	if _, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID: "court-a", CustomerName: "I", CustomerPhone: "1", StartTime: day.Add(8 * time.Hour), EndTime: day.Add(9 * time.Hour),
	}); err != nil {
		t.Fatalf("create early: %v", err)
	}
	cancelled, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID: "court-a", CustomerName: "J", CustomerPhone: "1", StartTime: day.Add(12 * time.Hour), EndTime: day.Add(13 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create cancelled: %v", err)
	}
	if _, err := svc.CancelBooking(kasirCtx(), cancelled.Booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	avail, err := svc.GetCourtAvailability(context.Background(), "court-a", "2026-05-06")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(avail.Busy) != 2 {
		t.Fatalf("expected 2 busy intervals, got %+v", avail.Busy)
	}
	if !avail.Busy[0].StartTime.Before(avail.Busy[1].StartTime) {
		t.Fatalf("expected busy intervals sorted by start")
	}
	if _, ok := c.entries["court-a:2026-05-06"]; !ok {
		t.Fatalf("expected availability cached")
	}

	if _, err := svc.CancelBooking(kasirCtx(), late.Booking.ID); err != nil {
		t.Fatalf("cancel late: %v", err)
	}
	if _, ok := c.entries["court-a:2026-05-06"]; ok {
		t.Fatalf("expected cache invalidated by cancellation")
	}

	avail, _ = svc.GetCourtAvailability(context.Background(), "court-a", "2026-05-06")
	if len(avail.Busy) != 1 {
		t.Fatalf("expected 1 busy interval after cancel, got %d", len(avail.Busy))
	}

	if _, err := svc.GetCourtAvailability(context.Background(), "court-x", "2026-05-06"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected unknown court to be not found, got %v", err)
	}
	if _, err := svc.GetCourtAvailability(context.Background(), "court-a", "06/05/2026"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected bad date rejected, got %v", err)
	}
}

func TestBookingPriceRoundsToCent(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	hours, total := bookingPrice(start, start.Add(70*time.Minute), 10000)
	if total != 11667 {
		t.Fatalf("expected 11667 cents for 70 minutes at 10000/h, got %d", total)
	}
	if hours.String() != "1.17" {
		t.Fatalf("expected 1.17 hours, got %s", hours)
	}
}

func TestOrderRequestServedMaterializesTransaction(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	order, err := svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode:    "t04",
		CustomerName: "Kiki",
		Items: []domain.OrderItemInput{
			{MenuID: "mnu-nasi-goreng", Quantity: 2, Notes: "pedas"},
			{MenuID: "mnu-kopi-susu", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != domain.OrderPending || order.TotalCents != 9200000 || order.TableID != "tbl-t04" {
		t.Fatalf("unexpected order %+v", order)
	}
	if !strings.HasPrefix(order.OrderNumber, "ORD-20260501-") || len(order.OrderNumber) != len("ORD-20260501-XXXX") {
		t.Fatalf("unexpected order number %s", order.OrderNumber)
	}

	for _, next := range []domain.OrderStatus{domain.OrderApproved, domain.OrderPreparing} {
		if _, err := svc.UpdateOrderStatus(kasirCtx(), order.ID, domain.UpdateOrderStatusRequest{Status: next}); err != nil {
			t.Fatalf("move to %s: %v", next, err)
		}
	}
	approved, _ := repo.GetOrderRequest(context.Background(), order.ID)
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "kasir" || approved.ApprovedAt == nil {
		t.Fatalf("expected approval stamped, got %+v", approved)
	}

	served, err := svc.UpdateOrderStatus(kasirCtx(), order.ID, domain.UpdateOrderStatusRequest{Status: domain.OrderServed})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if served.TransactionID == nil {
		t.Fatalf("expected served order linked to a transaction")
	}
	if got := menuStock(t, repo, "mnu-nasi-goreng"); got != 18 {
		t.Fatalf("expected nasi goreng stock 18, got %d", got)
	}

	tx, err := repo.GetTransaction(context.Background(), *served.TransactionID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx.Type != domain.TransactionPOS || tx.Status != domain.TransactionPending || tx.PaidCents != 0 || tx.TotalCents != 9200000 {
		t.Fatalf("unexpected materialized transaction %+v", tx)
	}
	if len(tx.Items) != 2 || tx.Items[0].ItemType != domain.ItemMenu {
		t.Fatalf("expected two MENU items, got %+v", tx.Items)
	}
	if tx.TableID == nil || *tx.TableID != "tbl-t04" || tx.CustomerName != "Kiki" {
		t.Fatalf("expected table and customer carried over, got %+v", tx)
	}

	types := notifier.types()
	if types[0] != domain.NotifyOrderCreated || types[len(types)-1] != domain.NotifyOrderServed {
		t.Fatalf("unexpected notifications %v", types)
	}

	paid, err := svc.PayTransaction(kasirCtx(), tx.ID, domain.PayTransactionRequest{PaymentMethod: "cash", PaidCents: 10000000})
	if err != nil {
		t.Fatalf("pay served order: %v", err)
	}
	if paid.ChangeCents != 800000 {
		t.Fatalf("expected change 800000, got %d", paid.ChangeCents)
	}
}

func TestOrderRequestIllegalTransitionLeavesStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order, err := svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode:    "T01",
		CustomerName: "Lina",
		Items:        []domain.OrderItemInput{{MenuID: "mnu-americano", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rejected, err := svc.UpdateOrderStatus(kasirCtx(), order.ID, domain.UpdateOrderStatusRequest{Status: domain.OrderRejected, RejectedReason: "out of stock"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.RejectedReason == nil || *rejected.RejectedReason != "out of stock" {
		t.Fatalf("expected reason stored, got %+v", rejected.RejectedReason)
	}

	_, err = svc.UpdateOrderStatus(kasirCtx(), order.ID, domain.UpdateOrderStatusRequest{Status: domain.OrderServed})
	var transition *store.TransitionError
	if !errors.As(err, &transition) || !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected transition error, got %v", err)
	}
	if transition.From != string(domain.OrderRejected) || transition.To != string(domain.OrderServed) {
		t.Fatalf("expected error naming both states, got %+v", transition)
	}

	current, _ := repo.GetOrderRequest(context.Background(), order.ID)
	if current.Status != domain.OrderRejected || current.TransactionID != nil {
		t.Fatalf("expected status to stay REJECTED, got %+v", current)
	}
}

func TestServeFailsWhenMenuStockShort(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order, err := svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode:    "T05",
		CustomerName: "Mira",
		Items:        []domain.OrderItemInput{{MenuID: "mnu-nasi-goreng", Quantity: 25}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, next := range []domain.OrderStatus{domain.OrderApproved, domain.OrderPreparing} {
		if _, err := svc.UpdateOrderStatus(kasirCtx(), order.ID, domain.UpdateOrderStatusRequest{Status: next}); err != nil {
			t.Fatalf("move to %s: %v", next, err)
		}
	}

	_, err = svc.UpdateOrderStatus(kasirCtx(), order.ID, domain.UpdateOrderStatusRequest{Status: domain.OrderServed})
	var stockErr *store.StockError
	if !errors.As(err, &stockErr) || stockErr.Available != 20 {
		t.Fatalf("expected stock error with 20 available, got %v", err)
	}

	current, _ := repo.GetOrderRequest(context.Background(), order.ID)
	if current.Status != domain.OrderPreparing {
		t.Fatalf("expected order to stay PREPARING, got %s", current.Status)
	}
	txs, _ := repo.ListTransactions(context.Background(), domain.TransactionFilter{})
	if len(txs) != 0 {
		t.Fatalf("expected no transaction after failed serve, got %d", len(txs))
	}
}

func TestCreateOrderRequestValidatesTableAndMenus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode: "T99", CustomerName: "Nina", Items: []domain.OrderItemInput{{MenuID: "mnu-americano", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected unknown table not found, got %v", err)
	}

	_, err = svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode: "T01", CustomerName: "Nina", Items: []domain.OrderItemInput{{MenuID: "mnu-missing", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected unknown menu not found, got %v", err)
	}

	if _, err := svc.SetTableActive(ownerCtx(), "tbl-t01", false); err != nil {
		t.Fatalf("deactivate table: %v", err)
	}
	_, err = svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode: "T01", CustomerName: "Nina", Items: []domain.OrderItemInput{{MenuID: "mnu-americano", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected inactive table rejected, got %v", err)
	}
}

func TestAdjustStockLedger(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := ownerCtx()

	steps := []struct {
		changeType domain.AdjustmentType
		amount     int
		wantAfter  int
		wantDelta  int
	}{
		{domain.AdjustAdd, 10, 10, 10},
		{domain.AdjustRemove, 3, 7, -3},
		{domain.AdjustCorrection, 12, 12, 5},
		{domain.AdjustCorrection, 0, 0, -12},
	}
	for _, step := range steps {
		resp, err := svc.AdjustStock(ctx, "inv-shuttlecock", domain.AdjustStockRequest{ChangeType: step.changeType, Amount: step.amount, Reason: "count"})
		if err != nil {
			t.Fatalf("%s %d: %v", step.changeType, step.amount, err)
		}
		adj := resp.Adjustment
		if adj.QuantityAfter != step.wantAfter || adj.ChangeAmount != step.wantDelta {
			t.Fatalf("%s %d: expected after=%d delta=%d, got %+v", step.changeType, step.amount, step.wantAfter, step.wantDelta, adj)
		}
		if adj.QuantityAfter != adj.QuantityBefore+adj.ChangeAmount {
			t.Fatalf("ledger arithmetic broken: %+v", adj)
		}
		item, _ := repo.GetInventoryItem(context.Background(), "inv-shuttlecock")
		if item.Quantity != adj.QuantityAfter {
			t.Fatalf("inventory quantity %d does not match latest adjustment %d", item.Quantity, adj.QuantityAfter)
		}
		if adj.Actor != "owner" {
			t.Fatalf("expected actor recorded, got %q", adj.Actor)
		}
	}

	_, err := svc.AdjustStock(ctx, "inv-shuttlecock", domain.AdjustStockRequest{ChangeType: domain.AdjustRemove, Amount: 1})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected negative REMOVE rejected, got %v", err)
	}
	item, _ := repo.GetInventoryItem(context.Background(), "inv-shuttlecock")
	if item.Quantity != 0 {
		t.Fatalf("expected quantity unchanged at 0, got %d", item.Quantity)
	}
	history, _ := svc.ListInventoryAdjustments(ctx, "inv-shuttlecock", 50)
	if len(history) != len(steps) {
		t.Fatalf("expected %d ledger rows, got %d", len(steps), len(history))
	}

	if _, err := svc.AdjustStock(ctx, "inv-net", domain.AdjustStockRequest{ChangeType: domain.AdjustAdd, Amount: 0}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected zero ADD rejected, got %v", err)
	}
	if _, err := svc.AdjustStock(kasirCtx(), "inv-net", domain.AdjustStockRequest{ChangeType: domain.AdjustAdd, Amount: 1}); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected kasir adjust forbidden, got %v", err)
	}
}

func TestCreateInventoryItemBooksOpeningBalance(t *testing.T) {
	svc, _, _ := newTestService(t)

	item, err := svc.CreateInventoryItem(ownerCtx(), domain.InventoryCreateRequest{Name: "Ball", InitialQuantity: 6})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Quantity != 6 || item.Unit != "pcs" {
		t.Fatalf("unexpected item %+v", item)
	}
	history, _ := svc.ListInventoryAdjustments(ownerCtx(), item.ID, 10)
	if len(history) != 1 || history[0].ChangeType != domain.AdjustAdd || history[0].QuantityAfter != 6 {
		t.Fatalf("expected one opening ADD adjustment, got %+v", history)
	}
}

func TestCatalogEditsNeverTouchStock(t *testing.T) {
	svc, repo, _ := newTestService(t)

	name := "Air Mineral 1L"
	price := int64(800000)
	updated, err := svc.UpdateProduct(ownerCtx(), "prd-water", domain.ProductUpdateRequest{Name: &name, PriceCents: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.PriceCents != price || updated.Stock != 48 {
		t.Fatalf("unexpected product %+v", updated)
	}
	if got := productStock(t, repo, "prd-water"); got != 48 {
		t.Fatalf("expected stock untouched, got %d", got)
	}

	if _, err := svc.UpdateProduct(kasirCtx(), "prd-water", domain.ProductUpdateRequest{Name: &name}); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected kasir edit forbidden, got %v", err)
	}

	if _, err := svc.SetProductActive(ownerCtx(), "prd-water", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, _ := svc.ListProducts(context.Background(), true)
	for _, p := range active {
		if p.ID == "prd-water" {
			t.Fatalf("inactive product listed as active")
		}
	}
	all, _ := svc.ListProducts(context.Background(), false)
	if len(all) != 4 {
		t.Fatalf("soft delete must keep the row, got %d products", len(all))
	}
}

func TestDailyReport(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: 1000000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 2}},
	}); err != nil {
		t.Fatalf("create pos: %v", err)
	}
	cancelled, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: 1000000,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemProduct, ItemID: "prd-isotonic", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create pos: %v", err)
	}
	if _, err := svc.CancelTransaction(ownerCtx(), cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	start := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	if _, err := svc.CreateBooking(kasirCtx(), domain.CreateBookingRequest{
		CourtID: "court-a", CustomerName: "Oki", CustomerPhone: "1", StartTime: start, EndTime: start.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	report, err := svc.DailyReport(ownerCtx(), "2026-05-01")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Transactions != 3 || report.CancelledCount != 1 {
		t.Fatalf("expected 3 transactions with 1 cancelled, got %+v", report)
	}
	if report.GrossCents != 21000000 || report.PaidCents != 1000000 {
		t.Fatalf("unexpected money totals gross=%d paid=%d", report.GrossCents, report.PaidCents)
	}
	if !report.BookingHours.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected 2 booking hours, got %s", report.BookingHours)
	}

	if _, err := svc.DailyReport(kasirCtx(), "2026-05-01"); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected kasir report forbidden, got %v", err)
	}

	logs, err := svc.ListAuditLogs(ownerCtx(), "", 50)
	if err != nil {
		t.Fatalf("audit logs: %v", err)
	}
	if len(logs) == 0 {
		t.Fatalf("expected audit entries for today's mutations")
	}
}

func TestCreateTransactionRejectsOverflowingLines(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	_, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Items: []domain.TransactionItemInput{{ItemType: domain.ItemMenu, ItemID: "mnu-americano", Quantity: 5124095576031}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for huge quantity, got %v", err)
	}

	_, err = svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		PaidCents: math.MaxInt64,
		Items:     []domain.TransactionItemInput{{ItemType: domain.ItemMenu, ItemID: "mnu-americano", Quantity: maxLineQuantity + 1}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error above the line cap, got %v", err)
	}

	txs, _ := repo.ListTransactions(context.Background(), domain.TransactionFilter{})
	if len(txs) != 0 {
		t.Fatalf("expected no transaction to be stored, got %d", len(txs))
	}
	if len(notifier.types()) != 0 {
		t.Fatalf("expected no notifications, got %v", notifier.types())
	}
}

func TestCreateOrderRequestRejectsOverflowingLines(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateOrderRequest(context.Background(), domain.CreateOrderRequest{
		TableCode:    "T01",
		CustomerName: "Budi",
		Items:        []domain.OrderItemInput{{MenuID: "mnu-kopi-susu", Quantity: 5124095576031}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMoneyArithmeticRefusesOverflow(t *testing.T) {
	if _, err := lineSubtotal(math.MaxInt64/2, 3); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected overflowing subtotal to be rejected, got %v", err)
	}
	if got, err := lineSubtotal(2200000, 3); err != nil || got != 6600000 {
		t.Fatalf("expected 6600000, got %d (%v)", got, err)
	}
	if _, err := addCents(math.MaxInt64-1, 2); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected overflowing total to be rejected, got %v", err)
	}
	if got, err := addCents(math.MaxInt64-2, 2); err != nil || got != math.MaxInt64 {
		t.Fatalf("expected exact max total, got %d (%v)", got, err)
	}
}

func TestCompleteRentalFollowsRentRecordsAfterTypeChange(t *testing.T) {
	svc, repo, _ := newTestService(t)

	created, err := svc.CreateTransaction(kasirCtx(), domain.CreateTransactionRequest{
		Type:      domain.TransactionRental,
		PaidCents: 6000000,
		Items: []domain.TransactionItemInput{
			{ItemType: domain.ItemProduct, ItemID: "prd-racket", Quantity: 2},
			{ItemType: domain.ItemProduct, ItemID: "prd-water", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if productStock(t, repo, "prd-racket") != 3 || productStock(t, repo, "prd-water") != 46 {
		t.Fatalf("unexpected stock after checkout")
	}

	sell, rent := domain.ProductTypeSell, domain.ProductTypeRent
	if _, err := svc.UpdateProduct(ownerCtx(), "prd-racket", domain.ProductUpdateRequest{Type: &sell}); err != nil {
		t.Fatalf("update racket type: %v", err)
	}
	if _, err := svc.UpdateProduct(ownerCtx(), "prd-water", domain.ProductUpdateRequest{Type: &rent}); err != nil {
		t.Fatalf("update water type: %v", err)
	}

	if _, err := svc.CompleteTransaction(ownerCtx(), created.ID); err != nil {
		t.Fatalf("complete rental: %v", err)
	}
	if got := productStock(t, repo, "prd-racket"); got != 5 {
		t.Fatalf("expected rented rackets back to 5, got %d", got)
	}
	if got := productStock(t, repo, "prd-water"); got != 46 {
		t.Fatalf("expected sold water to stay at 46, got %d", got)
	}
	rents, _ := repo.ListRentRecords(context.Background(), created.ID)
	if len(rents) != 1 || rents[0].Status != domain.RecordReturned {
		t.Fatalf("expected one RETURNED rent record, got %+v", rents)
	}
}
