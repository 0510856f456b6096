package handlers

import (
	"net/http"
	"strconv"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/logx"
)

// ProductHandler serves the admin product CRUD and the public catalogue.
type ProductHandler struct {
	logger logx.Logger
	uc     productUsecase
	url    URLFunc
}

// NewProductHandler wires a product usecase into HTTP handlers.
func NewProductHandler(logger logx.Logger, uc productUsecase, url URLFunc) *ProductHandler {
	return &ProductHandler{logger: logger, uc: uc, url: url}
}

func (h *ProductHandler) dto(p domain.Product) productDTO { return toProductDTO(p, h.url) }

// List handles GET /v1/admin/products?name=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("name"))
}

// Catalog handles the public GET /v1/products?title=, which filters on the product name.
func (h *ProductHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("title"))
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, name string) {
	page, err := h.uc.List(r.Context(), domain.ProductFilter{Name: name}, middleware.PageFromContext(r.Context()))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toPageDTO(page, h.dto))
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	p, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"product": h.dto(*p)})
}

// Create handles POST /v1/admin/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	p, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/admin/products/"+strconv.FormatInt(p.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"product": h.dto(*p)})
}

// Update handles PUT /v1/admin/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req updateProductRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	p, err := h.uc.UpdatePartial(r.Context(), req.toModel(id))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"product": h.dto(*p)})
}

// Delete handles DELETE /v1/admin/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
