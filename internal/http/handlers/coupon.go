package handlers

import (
	"net/http"
	"strconv"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/logx"
)

// CouponHandler serves /v1/admin/coupons.
type CouponHandler struct {
	logger logx.Logger
	uc     couponUsecase
}

func NewCouponHandler(logger logx.Logger, uc couponUsecase) *CouponHandler {
	return &CouponHandler{logger: logger, uc: uc}
}

// List handles GET /coupons?code=, an exact case-insensitive match.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	f := domain.CouponFilter{Code: r.URL.Query().Get("code")}
	page, err := h.uc.List(r.Context(), f, middleware.PageFromContext(r.Context()))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toPageDTO(page, toCouponDTO))
}

func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	c, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"coupon": toCouponDTO(*c)})
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	c, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/admin/coupons/"+strconv.FormatInt(c.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"coupon": toCouponDTO(*c)})
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req updateCouponRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	c, err := h.uc.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"coupon": toCouponDTO(*c)})
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
