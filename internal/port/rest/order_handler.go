package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/service"
)

type OrderHandler struct {
	sessions cartSessions
	orders   service.OrderService
	log      logger.Logger
}

func NewOrderHandler(sessions *cart.Sessions, secureCookies bool, orders service.OrderService, log logger.Logger) *OrderHandler {
	return &OrderHandler{
		sessions: cartSessions{sessions: sessions, secure: secureCookies},
		orders:   orders,
		log:      log,
	}
}

type checkoutRequest struct {
	UserID          string         `json:"userId"`
	Email           string         `json:"email"`
	ShippingAddress entity.Address `json:"shippingAddress"`
}

type listOrdersResponse struct {
	Orders     []entity.Order `json:"orders"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// Checkout places an order from the session cart and removes the ordered
// lines from it.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	store, release := h.sessions.store(w, r)
	defer release()

	// the body is optional; guests may check out with an empty one
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, h.log, err)
		return
	}

	items := store.Items()
	order, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderParams{
		UserID:          req.UserID,
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
	}, items)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	// lines changed while the order was placed belong to the next order
	store.RemoveOrdered(items)
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	body, fileName, err := h.orders.Receipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := optionalInt(query.Get("page"))
	if err != nil {
		writeError(w, h.log, fmt.Errorf("%w: page must be a number", errBadRequest))
		return
	}
	pageSize, err := optionalInt(query.Get("page_size"))
	if err != nil {
		writeError(w, h.log, fmt.Errorf("%w: page_size must be a number", errBadRequest))
		return
	}

	result, err := h.orders.ListByUser(r.Context(), query.Get("user_id"), page, pageSize)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, listOrdersResponse{
		Orders:     result.Orders,
		TotalCount: result.TotalCount,
		Page:       result.CurrentPage,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
