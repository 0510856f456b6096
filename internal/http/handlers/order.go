package handlers

import (
	"net/http"
	"strconv"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/service/order"
)

// Order channels reported to metrics.
const (
	channelAdmin  = "admin"
	channelClient = "client"
)

// clientOrderRequest is what a customer may submit; the owner comes from the token.
type clientOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

// OrderHandler serves /v1/admin/orders and the customer-facing /v1/orders.
type OrderHandler struct {
	logger logx.Logger
	uc     orderUsecase
}

func NewOrderHandler(logger logx.Logger, uc orderUsecase) *OrderHandler {
	return &OrderHandler{logger: logger, uc: uc}
}

func (h *OrderHandler) writeOrder(w http.ResponseWriter, r *http.Request, status int, o *domain.Order) {
	writeJSON(h.logger, w, r, status, map[string]any{"order": toOrderDTO(*o)})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, f domain.OrderFilter) {
	page, err := h.uc.List(r.Context(), f, middleware.PageFromContext(r.Context()))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toPageDTO(page, toOrderDTO))
}

// List handles the admin GET /orders?status=&id=. Filters are AND-combined.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, domain.OrderFilter{
		Status: domain.OrderStatus(q.Get("status")),
		Number: q.Get("id"),
	})
}

// ListOwn handles GET /v1/orders?number= for the caller.
func (h *OrderHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	uid := who.UserID
	h.list(w, r, domain.OrderFilter{UserID: &uid, Number: r.URL.Query().Get("number")})
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request, owner *int64) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	o, err := h.uc.Get(r.Context(), id, owner)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) { h.get(w, r, nil) }

func (h *OrderHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	h.get(w, r, &who.UserID)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, in order.CreateInput, channel string) {
	o, err := h.uc.Create(r.Context(), in, channel)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/orders/"+strconv.FormatInt(o.ID, 10))
	h.writeOrder(w, r, http.StatusCreated, o)
}

// Create handles the admin POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	h.create(w, r, req.toInput(), channelAdmin)
}

// CreateOwn handles POST /v1/orders. New customer orders always start pending.
func (h *OrderHandler) CreateOwn(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	var req clientOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	h.create(w, r, order.CreateInput{
		UserID: who.UserID,
		Status: domain.OrderPending,
		Items:  toItemInputs(req.Items),
	}, channelClient)
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request, owner *int64) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req updateOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	o, err := h.uc.Update(r.Context(), req.toModel(id), owner)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, o)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) { h.update(w, r, nil) }

func (h *OrderHandler) UpdateOwn(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	h.update(w, r, &who.UserID)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	if err := h.uc.Delete(r.Context(), id); err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) applyDiscount(w http.ResponseWriter, r *http.Request, owner *int64) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req applyDiscountRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	o, info, err := h.uc.ApplyDiscount(r.Context(), id, req.Code, owner)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, applyDiscountResponse{
		Order: toOrderDTO(*o),
		Info:  discountInfoDTO{Message: info.Message, Success: info.Success},
	})
}

// ApplyDiscount handles POST /orders/{id}/discount. A rejected coupon is still a 200
// with info.success=false.
func (h *OrderHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	h.applyDiscount(w, r, nil)
}

func (h *OrderHandler) ApplyDiscountOwn(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	h.applyDiscount(w, r, &who.UserID)
}

func (h *OrderHandler) removeDiscount(w http.ResponseWriter, r *http.Request, owner *int64) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req removeDiscountRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DiscountID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid discount_id")
		return
	}
	if err := h.uc.RemoveDiscount(r.Context(), id, req.DiscountID, owner); err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	h.removeDiscount(w, r, nil)
}

func (h *OrderHandler) RemoveDiscountOwn(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	h.removeDiscount(w, r, &who.UserID)
}
