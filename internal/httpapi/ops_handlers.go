package httpapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"venuepos/backend/internal/domain"
)

func (a *API) handleListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := a.service.ListInventoryItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory": items})
}

func (a *API) handleCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req domain.InventoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.CreateInventoryItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req domain.AdjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ChangeType = domain.AdjustmentType(strings.ToUpper(string(req.ChangeType)))

	resp, err := a.service.AdjustStock(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := a.service.ListInventoryAdjustments(r.Context(), chi.URLParam(r, "id"),
		parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"adjustments": adjustments})
}

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := strings.EqualFold(r.URL.Query().Get("unread"), "true")
	notifications, err := a.service.ListNotifications(r.Context(), unreadOnly, parsePositiveLimit(r.URL.Query().Get("limit"), 50, 200))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (a *API) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := a.service.MarkNotificationRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)

	logs, err := a.service.ListAuditLogs(r.Context(), date, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	report, err := a.service.DailyReport(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch format {
	case "csv":
		body, err := dailyReportToCSV(report)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily-report-%s.csv\"", report.Date))
		_, _ = w.Write(body)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dailyReportToPrintableHTML(report)))
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func dailyReportToCSV(report domain.DailyReport) ([]byte, error) {
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "date", report.Date},
		{"summary", "transactions", strconv.Itoa(report.Transactions)},
		{"summary", "cancelled", strconv.Itoa(report.CancelledCount)},
		{"summary", "gross_cents", strconv.FormatInt(report.GrossCents, 10)},
		{"summary", "paid_cents", strconv.FormatInt(report.PaidCents, 10)},
		{"summary", "booking_hours", report.BookingHours.String()},
		{"summary", "order_requests", strconv.Itoa(report.OrderRequestsCount)},
	}
	for _, t := range report.ByType {
		rows = append(rows,
			[]string{"type", string(t.Type) + "_transactions", strconv.Itoa(t.Transactions)},
			[]string{"type", string(t.Type) + "_total_cents", strconv.FormatInt(t.TotalCents, 10)},
		)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var dailyReportHTMLTmpl = template.Must(template.New("daily-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Daily Report {{.Date}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
  </style>
</head>
<body>
  <h2>Daily Report {{.Date}}</h2>
  <p>Transactions: {{.Transactions}} ({{.CancelledCount}} cancelled) | Orders: {{.OrderRequestsCount}}</p>
  <p>Gross: {{.GrossCents}} | Paid: {{.PaidCents}} | Court hours: {{.BookingHours}}</p>

  <table>
    <thead><tr><th>Type</th><th>Transactions</th><th>Total Cents</th></tr></thead>
    <tbody>{{range .ByType}}<tr><td>{{.Type}}</td><td style="text-align:right;">{{.Transactions}}</td><td style="text-align:right;">{{.TotalCents}}</td></tr>{{end}}</tbody>
  </table>
</body>
</html>
`))

func dailyReportToPrintableHTML(report domain.DailyReport) string {
	var buf bytes.Buffer
	if err := dailyReportHTMLTmpl.Execute(&buf, report); err != nil {
		return "<!doctype html><html><body><p>Report rendering error.</p></body></html>"
	}
	return buf.String()
}
