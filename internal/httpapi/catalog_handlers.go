package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"venuepos/backend/internal/domain"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := domain.CategoryKind(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("kind"))))
	categories, err := a.service.ListCategories(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	category, err := a.service.CreateCategory(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context(), activeOnly(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleSetProductActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := a.service.SetProductActive(r.Context(), chi.URLParam(r, "id"), active)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func (a *API) handleListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := a.service.ListMenus(r.Context(), activeOnly(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": menus})
}

// handlePublicMenus serves the guest ordering page, so only active menus.
func (a *API) handlePublicMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := a.service.ListMenus(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": menus})
}

func (a *API) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := a.service.GetMenu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (a *API) handleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var req domain.MenuCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	menu, err := a.service.CreateMenu(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, menu)
}

func (a *API) handleUpdateMenu(w http.ResponseWriter, r *http.Request) {
	var req domain.MenuUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	menu, err := a.service.UpdateMenu(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (a *API) handleSetMenuActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menu, err := a.service.SetMenuActive(r.Context(), chi.URLParam(r, "id"), active)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, menu)
	}
}

func (a *API) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := a.service.ListTables(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

// handlePublicTable lets a guest resolve the code printed on the table.
// Occupancy details are not exposed.
func (a *API) handlePublicTable(w http.ResponseWriter, r *http.Request) {
	table, err := a.service.GetTableByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":      table.Code,
		"is_active": table.IsActive,
	})
}

func (a *API) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req domain.TableCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	table, err := a.service.CreateTable(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, table)
}

func (a *API) handleSetTableActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := a.service.SetTableActive(r.Context(), chi.URLParam(r, "id"), active)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func (a *API) handleReleaseTable(w http.ResponseWriter, r *http.Request) {
	table, err := a.service.ReleaseTable(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (a *API) handleListCourts(w http.ResponseWriter, r *http.Request) {
	visibleOnly := strings.EqualFold(r.URL.Query().Get("visible"), "true")
	courts, err := a.service.ListCourts(r.Context(), visibleOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courts": courts})
}

func (a *API) handleCreateCourt(w http.ResponseWriter, r *http.Request) {
	var req domain.CourtCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	court, err := a.service.CreateCourt(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, court)
}

func (a *API) handleSetCourtStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.CourtStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	court, err := a.service.SetCourtStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, court)
}

func (a *API) handleCourtAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := a.service.GetCourtAvailability(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

func activeOnly(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("active"), "true")
}
