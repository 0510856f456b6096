package handlers

import (
	"net/http"
	"strconv"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/logx"
)

// UserHandler serves /v1/admin/users.
type UserHandler struct {
	logger logx.Logger
	uc     userUsecase
}

func NewUserHandler(logger logx.Logger, uc userUsecase) *UserHandler {
	return &UserHandler{logger: logger, uc: uc}
}

// List handles GET /users?name=&surname=&email=. Provided filters are OR-combined.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.UserFilter{
		Name:    q.Get("name"),
		Surname: q.Get("surname"),
		Email:   q.Get("email"),
	}
	page, err := h.uc.List(r.Context(), f, middleware.PageFromContext(r.Context()))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toPageDTO(page, toUserDTO))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	u, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"user": toUserDTO(*u)})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.uc.Create(r.Context(), req.toInput())
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/admin/users/"+strconv.FormatInt(u.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"user": toUserDTO(*u)})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.uc.UpdatePartial(r.Context(), req.toInput(id))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"user": toUserDTO(*u)})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
