package handlers

import (
	"net/http"
	"strconv"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/logx"
)

// CategoryHandler serves /v1/admin/categories.
type CategoryHandler struct {
	logger logx.Logger
	uc     categoryUsecase
	url    URLFunc
}

// NewCategoryHandler wires a category usecase into HTTP handlers.
func NewCategoryHandler(logger logx.Logger, uc categoryUsecase, url URLFunc) *CategoryHandler {
	return &CategoryHandler{logger: logger, uc: uc, url: url}
}

func (h *CategoryHandler) dto(c domain.Category) categoryDTO { return toCategoryDTO(c, h.url) }

// List handles GET /categories?title=.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	f := domain.CategoryFilter{Title: r.URL.Query().Get("title")}
	page, err := h.uc.List(r.Context(), f, middleware.PageFromContext(r.Context()))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toPageDTO(page, h.dto))
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	c, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"category": h.dto(*c)})
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	c, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/admin/categories/"+strconv.FormatInt(c.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"category": h.dto(*c)})
}

// Update handles PUT /categories/{id} with partial updates.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req updateCategoryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	c, err := h.uc.UpdatePartial(r.Context(), req.toModel(id))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"category": h.dto(*c)})
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
