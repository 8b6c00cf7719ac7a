package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/service"
)

type CartHandler struct {
	sessions cartSessions
	catalog  service.CatalogService
	carts    service.CartService
	log      logger.Logger
}

func NewCartHandler(sessions *cart.Sessions, secureCookies bool, catalog service.CatalogService, carts service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{
		sessions: cartSessions{sessions: sessions, secure: secureCookies},
		catalog:  catalog,
		carts:    carts,
		log:      log,
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, release := h.sessions.store(w, r)
	defer release()
	h.writeQuote(w, r, store)
}

// SetItem adds the product or overwrites its quantity.
func (h *CartHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	store, release := h.sessions.store(w, r)
	defer release()
	productID := chi.URLParam(r, "productId")

	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if req.Quantity < 1 {
		writeError(w, h.log, cart.ErrInvalidQuantity)
		return
	}

	if _, err := h.catalog.Get(r.Context(), productID); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := store.AddOrUpdate(productID, req.Quantity); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.writeQuote(w, r, store)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, release := h.sessions.store(w, r)
	defer release()
	store.Remove(chi.URLParam(r, "productId"))
	h.writeQuote(w, r, store)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, release := h.sessions.store(w, r)
	defer release()
	store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) writeQuote(w http.ResponseWriter, r *http.Request, store *cart.Store) {
	quote, err := h.carts.Quote(r.Context(), store.Items())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
