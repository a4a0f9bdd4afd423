package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/service"
	"venuepos/backend/internal/store"
)

const maxBodyBytes = 1 << 20

var (
	staffRoles   = []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleKasir}
	managerRoles = []domain.Role{domain.RoleOwner, domain.RoleAdmin}
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	guestLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		guestLimiter:  newAttemptLimiter(20, time.Minute),
	}
}

// WithLoginLimit replaces the per-IP login limiter.
func (a *API) WithLoginLimit(max int, window time.Duration) *API {
	a.loginLimiter = newAttemptLimiter(max, window)
	return a
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

// clientKey expects middleware.RealIP to have rewritten RemoteAddr already.
func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(a.secureHeaders)

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)

		r.Route("/public", func(r chi.Router) {
			r.Get("/menus", a.handlePublicMenus)
			r.Get("/tables/{code}", a.handlePublicTable)
			r.Post("/order-requests", a.handleCreateOrderRequest)
		})
		r.Get("/courts/{id}/availability", a.handleCourtAvailability)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(staffRoles...))

			r.Get("/categories", a.handleListCategories)
			r.Get("/products", a.handleListProducts)
			r.Get("/products/{id}", a.handleGetProduct)
			r.Get("/menus", a.handleListMenus)
			r.Get("/menus/{id}", a.handleGetMenu)
			r.Get("/tables", a.handleListTables)
			r.Post("/tables/{id}/release", a.handleReleaseTable)
			r.Get("/courts", a.handleListCourts)

			r.Post("/transactions", a.handleCreateTransaction)
			r.Get("/transactions", a.handleListTransactions)
			r.Get("/transactions/{id}", a.handleGetTransaction)
			r.Post("/transactions/{id}/pay", a.handlePayTransaction)
			r.Get("/rentals/active", a.handleActiveRentals)

			r.Post("/bookings", a.handleCreateBooking)
			r.Get("/bookings", a.handleListBookings)
			r.Get("/bookings/{id}", a.handleGetBooking)
			r.Post("/bookings/{id}/cancel", a.handleCancelBooking)
			r.Post("/bookings/{id}/complete", a.handleCompleteBooking)

			r.Get("/order-requests", a.handleListOrderRequests)
			r.Get("/order-requests/{id}", a.handleGetOrderRequest)
			r.Post("/order-requests/{id}/status", a.handleUpdateOrderStatus)

			r.Get("/inventory", a.handleListInventory)
			r.Get("/inventory/{id}/adjustments", a.handleListAdjustments)

			r.Get("/notifications", a.handleListNotifications)
			r.Post("/notifications/{id}/read", a.handleMarkNotificationRead)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(managerRoles...))

			r.Post("/categories", a.handleCreateCategory)
			r.Post("/products", a.handleCreateProduct)
			r.Patch("/products/{id}", a.handleUpdateProduct)
			r.Post("/products/{id}/activate", a.handleSetProductActive(true))
			r.Post("/products/{id}/deactivate", a.handleSetProductActive(false))
			r.Post("/menus", a.handleCreateMenu)
			r.Patch("/menus/{id}", a.handleUpdateMenu)
			r.Post("/menus/{id}/activate", a.handleSetMenuActive(true))
			r.Post("/menus/{id}/deactivate", a.handleSetMenuActive(false))
			r.Post("/tables", a.handleCreateTable)
			r.Post("/tables/{id}/activate", a.handleSetTableActive(true))
			r.Post("/tables/{id}/deactivate", a.handleSetTableActive(false))
			r.Post("/courts", a.handleCreateCourt)
			r.Post("/courts/{id}/status", a.handleSetCourtStatus)

			r.Post("/transactions/{id}/cancel", a.handleCancelTransaction)
			r.Post("/transactions/{id}/complete", a.handleCompleteTransaction)

			r.Post("/inventory", a.handleCreateInventoryItem)
			r.Post("/inventory/{id}/adjust", a.handleAdjustStock)

			r.Get("/reports/daily", a.handleDailyReport)
			r.Get("/audit-logs", a.handleAuditLogs)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(domain.RoleOwner))

			r.Get("/users", a.handleListStaff)
			r.Post("/users", a.handleCreateStaff)
		})
	})

	return r
}

func (a *API) requireAuth(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListStaff(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"users": a.auth.ListStaff(r.Context())})
}

func (a *API) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := a.auth.CreateStaff(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// parseTimeParam accepts RFC 3339 or a bare YYYY-MM-DD in loc. Empty yields
// the zero time.
func parseTimeParam(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, errors.New("time must be RFC 3339 or YYYY-MM-DD")
	}
	return t.UTC(), nil
}

// statusFor maps the store error taxonomy onto HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		writeError(w, status, err)
		return
	}

	body := map[string]any{"error": err.Error()}
	var stockErr *store.StockError
	var payErr *store.PaymentError
	var overlapErr *store.OverlapError
	var transitionErr *store.TransitionError
	switch {
	case errors.As(err, &stockErr):
		body["details"] = stockErr
	case errors.As(err, &payErr):
		body["details"] = payErr
	case errors.As(err, &overlapErr):
		body["details"] = overlapErr
	case errors.As(err, &transitionErr):
		body["details"] = transitionErr
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies stay generic; the cause only goes to the log.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
