package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-catalog-service/internal/catalog"
	"storefront-catalog-service/internal/domain"
	"storefront-catalog-service/internal/notify"
	"storefront-catalog-service/internal/session"
	"storefront-catalog-service/internal/store"
)

const (
	defaultAppName = "StorefrontCatalogService"
	maxPageSize    = 100
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	loader   *catalog.Loader
	items    store.ItemStorer
	sessions *session.Manager
	metrics  *Metrics
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(loader *catalog.Loader, items store.ItemStorer, sessions *session.Manager, metrics *Metrics, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		loader:   loader,
		items:    items,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// snapshot returns the loaded collection or answers 503 while it is still loading.
func (h *HTTPHandler) snapshot(w http.ResponseWriter) (*catalog.Snapshot, bool) {
	snap, err := h.loader.Snapshot()
	if err != nil {
		h.respondWithError(w, http.StatusServiceUnavailable, "Catalog is not loaded yet")
		return nil, false
	}
	return snap, true
}

// --- Catalog Handlers ---

// ItemsQuery is the parsed query string of GET /api/v1/items.
type ItemsQuery struct {
	Search    string   `validate:"max=200"`
	Category  string   `validate:"max=255"`
	MaxPrice  *float64 `validate:"omitempty,gte=0"`
	MinRating float64  `validate:"gte=0,lte=5"`
	Sort      domain.SortKey
	Page      int
	PageSize  int    `validate:"gte=0,lte=100"`
	Window    string `validate:"omitempty,oneof=narrow compact"`
}

// ListResponse is a page of items with its pagination metadata.
type ListResponse struct {
	Data       []domain.Item         `json:"data"`
	Pagination domain.Page           `json:"pagination"`
	Criteria   domain.FilterCriteria `json:"criteria"`
	Sort       domain.SortKey        `json:"sort"`
}

func parseItemsQuery(r *http.Request) (ItemsQuery, error) {
	qParams := r.URL.Query()
	q := ItemsQuery{
		Search:   qParams.Get("q"),
		Category: qParams.Get("category"),
		Sort:     domain.ParseSortKey(qParams.Get("sort")),
		Window:   strings.ToLower(qParams.Get("window")),
	}

	if priceStr := qParams.Get("max_price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return q, errors.New("Invalid max_price format")
		}
		q.MaxPrice = &price
	}
	if ratingStr := qParams.Get("min_rating"); ratingStr != "" {
		rating, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil {
			return q, errors.New("Invalid min_rating format")
		}
		q.MinRating = rating
	}

	// Out-of-range pages are clamped by the paginator, not rejected.
	page, err := strconv.Atoi(qParams.Get("page"))
	if err != nil {
		page = 1
	}
	q.Page = page

	pageSize, err := strconv.Atoi(qParams.Get("page_size"))
	if err != nil || pageSize < 0 {
		pageSize = 0
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	q.PageSize = pageSize

	return q, nil
}

func windowFor(name string, fallback catalog.WindowOptions) catalog.WindowOptions {
	switch name {
	case "narrow":
		return catalog.NarrowWindow
	case "compact":
		return catalog.CompactWindow
	default:
		return fallback
	}
}

// ListItems runs a stateless catalog query.
func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q, err := parseItemsQuery(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(q); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	engine := h.loader.Engine()
	criteria := domain.FilterCriteria{
		SearchText: q.Search,
		Category:   q.Category,
		PriceMax:   snap.Facets.MaxPrice,
		MinRating:  q.MinRating,
	}
	if criteria.Category == "" {
		criteria.Category = domain.CategoryAll
	}
	if q.MaxPrice != nil {
		criteria.PriceMax = *q.MaxPrice
	}

	result := engine.Query(snap.Items, criteria, q.Sort)
	page := engine.PaginateWindow(result, q.PageSize, q.Page, windowFor(q.Window, engine.Options().Window))
	h.metrics.ObserveQuery(q.Sort, result.Len())

	h.respondWithJSON(w, http.StatusOK, ListResponse{
		Data:       page.Slice,
		Pagination: page,
		Criteria:   criteria,
		Sort:       q.Sort,
	})
}

func (h *HTTPHandler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	item, err := h.items.GetItemByID(r.Context(), itemID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrItemNotFound):
			h.respondWithError(w, http.StatusNotFound, store.ErrItemNotFound.Error())
		case errors.Is(err, store.ErrInvalidItemID):
			h.respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		default:
			h.logger.Error("GetItemByID store operation failed", zap.String("item_id", itemID), zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve item")
		}
		return
	}
	h.respondWithJSON(w, http.StatusOK, item)
}

// FacetsResponse describes the filter controls of the loaded catalog.
type FacetsResponse struct {
	domain.Facets
	SortKeys []domain.SortKey `json:"sort_keys"`
	Version  uint64           `json:"version"`
}

func (h *HTTPHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	h.respondWithJSON(w, http.StatusOK, FacetsResponse{
		Facets:   snap.Facets,
		SortKeys: domain.SortKeys,
		Version:  snap.Version,
	})
}

// ReloadResponse reports a completed catalog reload.
type ReloadResponse struct {
	Version  uint64    `json:"version"`
	Items    int       `json:"items"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (h *HTTPHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loader.Reload(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusBadGateway, "Could not load products")
		return
	}
	h.respondWithJSON(w, http.StatusOK, ReloadResponse{
		Version:  snap.Version,
		Items:    len(snap.Items),
		LoadedAt: snap.LoadedAt,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	catalogStatus := "not_loaded"
	var version uint64
	if snap, err := h.loader.Snapshot(); err == nil {
		catalogStatus = "loaded"
		version = snap.Version
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"serviceName":     defaultAppName,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"catalog":         catalogStatus,
		"catalog_version": version,
	})
}

// --- Session Handlers ---

// SessionResponse identifies a created session.
type SessionResponse struct {
	ID string `json:"id"`
}

// CriteriaInput replaces a session's filter criteria wholesale.
type CriteriaInput struct {
	SearchText string   `json:"search_text" validate:"max=200"`
	Category   string   `json:"category" validate:"max=255"`
	PriceMax   *float64 `json:"price_max" validate:"omitempty,gte=0"` // Defaults to the catalog's price bound
	MinRating  float64  `json:"min_rating" validate:"gte=0,lte=5"`
}

// SortInput changes a session's sort key. Unknown keys fall back to newest.
type SortInput struct {
	Sort string `json:"sort" validate:"max=50"`
}

// PageInput requests a page. Out-of-range pages are clamped.
type PageInput struct {
	Page int `json:"page"`
}

// PageSizeInput changes a session's page size.
type PageSizeInput struct {
	PageSize int `json:"page_size" validate:"required,gte=1,lte=100"`
}

// CartAddInput adds an item to a session's cart.
type CartAddInput struct {
	ItemID string `json:"item_id" validate:"required,max=255"`
}

// ViewItem is an item as shown in a session view.
type ViewItem struct {
	domain.Item
	InCart bool `json:"in_cart"`
}

// ViewResponse is the rendered state of a session view.
type ViewResponse struct {
	SessionID  string                `json:"session_id"`
	Data       []ViewItem            `json:"data"`
	Pagination domain.Page           `json:"pagination"`
	Criteria   domain.FilterCriteria `json:"criteria"`
	Sort       domain.SortKey        `json:"sort"`
	Facets     domain.Facets         `json:"facets"`
}

// CartResponse lists a session's cart.
type CartResponse struct {
	Items []domain.Item `json:"items"`
	Count int           `json:"count"`
	Total float64       `json:"total"`
}

func (h *HTTPHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandler) sessionError(w http.ResponseWriter, id uuid.UUID, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		h.respondWithError(w, http.StatusNotFound, session.ErrSessionNotFound.Error())
		return
	}
	h.logger.Error("session operation failed", zap.String("session_id", id.String()), zap.Error(err))
	h.respondWithError(w, http.StatusInternalServerError, "Failed to process session request")
}

func (h *HTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	h.respondWithJSON(w, http.StatusCreated, SessionResponse{ID: s.ID.String()})
}

// updateView applies fn to the session's view and renders the result.
func (h *HTTPHandler) updateView(w http.ResponseWriter, r *http.Request, fn func(catalog.View) catalog.View) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	view, err := h.sessions.Update(id, snap, fn)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}

	page := view.Render()
	data := make([]ViewItem, len(page.Slice))
	for i, it := range page.Slice {
		data[i] = ViewItem{Item: it, InCart: s.Cart.Contains(it.ID)}
	}
	h.metrics.ObserveQuery(view.SortKey(), view.Result().Len())

	h.respondWithJSON(w, http.StatusOK, ViewResponse{
		SessionID:  id.String(),
		Data:       data,
		Pagination: page,
		Criteria:   view.Criteria(),
		Sort:       view.SortKey(),
		Facets:     view.Facets(),
	})
}

func (h *HTTPHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.updateView(w, r, nil)
}

func (h *HTTPHandler) SetCriteria(w http.ResponseWriter, r *http.Request) {
	var input CriteriaInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.updateView(w, r, func(v catalog.View) catalog.View {
		c := domain.FilterCriteria{
			SearchText: input.SearchText,
			Category:   input.Category,
			PriceMax:   v.Facets().MaxPrice,
			MinRating:  input.MinRating,
		}
		if c.Category == "" {
			c.Category = domain.CategoryAll
		}
		if input.PriceMax != nil {
			c.PriceMax = *input.PriceMax
		}
		return v.WithCriteria(c)
	})
}

func (h *HTTPHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var input SortInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.updateView(w, r, func(v catalog.View) catalog.View {
		return v.WithSort(domain.ParseSortKey(input.Sort))
	})
}

func (h *HTTPHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var input PageInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.updateView(w, r, func(v catalog.View) catalog.View {
		return v.WithPage(input.Page)
	})
}

func (h *HTTPHandler) SetPageSize(w http.ResponseWriter, r *http.Request) {
	var input PageSizeInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.updateView(w, r, func(v catalog.View) catalog.View {
		return v.WithPageSize(input.PageSize)
	})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var input CartAddInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}

	item, found := findItem(snap.Items, input.ItemID)
	if !found {
		h.sessions.Notifier(s).Notify(notify.KindError, "Unknown item", "Item "+input.ItemID+" is not in the catalog.")
		h.respondWithError(w, http.StatusNotFound, store.ErrItemNotFound.Error())
		return
	}

	added, err := h.sessions.AddToCart(id, item)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	h.respondWithJSON(w, code, cartResponse(s.Cart))
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, cartResponse(s.Cart))
}

func (h *HTTPHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, s.Feed.Drain())
}

func cartResponse(c *session.Cart) CartResponse {
	return CartResponse{Items: c.Items(), Count: c.Len(), Total: c.Total()}
}

func findItem(items []domain.Item, id string) (domain.Item, bool) {
	for i := range items {
		if items[i].ID == id {
			return items[i], true
		}
	}
	return domain.Item{}, false
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/healthz", h.HealthCheck)

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", h.ListItems)           // GET /api/v1/items
		r.Get("/{itemId}", h.GetItemByID) // GET /api/v1/items/{itemId}
	})
	r.Get("/api/v1/facets", h.GetFacets)
	r.Post("/api/v1/catalog/reload", h.ReloadCatalog)

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/view", h.GetView)
			r.Put("/view/criteria", h.SetCriteria)
			r.Put("/view/sort", h.SetSort)
			r.Put("/view/page", h.SetPage)
			r.Put("/view/page-size", h.SetPageSize)
			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.AddToCart)
			r.Get("/notifications", h.GetNotifications)
		})
	})
}
