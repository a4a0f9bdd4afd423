package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"venuepos/backend/internal/domain"
)

func (a *API) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	transaction, err := a.service.CreateTransaction(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := a.service.Location()

	from, err := parseTimeParam(q.Get("from"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseTimeParam(q.Get("to"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	transactions, err := a.service.ListTransactions(r.Context(), domain.TransactionFilter{
		Type:   domain.TransactionType(strings.ToUpper(q.Get("type"))),
		Status: domain.TransactionStatus(strings.ToUpper(q.Get("status"))),
		From:   from,
		To:     to,
		Limit:  parsePositiveLimit(q.Get("limit"), 100, 500),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (a *API) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	detail, err := a.service.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) handlePayTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.PayTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	transaction, err := a.service.PayTransaction(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

func (a *API) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := a.service.CancelTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

func (a *API) handleCompleteTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := a.service.CompleteTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

func (a *API) handleActiveRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := a.service.ListActiveRentals(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals})
}

func (a *API) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := a.service.CreateBooking(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := a.service.Location()

	from, err := parseTimeParam(q.Get("from"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseTimeParam(q.Get("to"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	bookings, err := a.service.ListBookings(r.Context(), domain.BookingFilter{
		CourtID: strings.TrimSpace(q.Get("court_id")),
		Status:  domain.BookingStatus(strings.ToUpper(q.Get("status"))),
		From:    from,
		To:      to,
		Limit:   parsePositiveLimit(q.Get("limit"), 200, 500),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (a *API) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := a.service.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (a *API) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := a.service.CancelBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (a *API) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := a.service.CompleteBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// handleCreateOrderRequest is the unauthenticated guest entry point, limited
// per client IP.
func (a *API) handleCreateOrderRequest(w http.ResponseWriter, r *http.Request) {
	if !a.guestLimiter.Allow("order:" + clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many order requests"))
		return
	}

	var req domain.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.CreateOrderRequest(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) handleListOrderRequests(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	orders, err := a.service.ListOrderRequests(r.Context(), status, parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_requests": orders})
}

func (a *API) handleGetOrderRequest(w http.ResponseWriter, r *http.Request) {
	order, err := a.service.GetOrderRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
