package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/service/account"
)

// AccountHandler serves /v1/auth.
type AccountHandler struct {
	logger logx.Logger
	uc     accountUsecase
}

func NewAccountHandler(logger logx.Logger, uc accountUsecase) *AccountHandler {
	return &AccountHandler{logger: logger, uc: uc}
}

func toTokenResponse(p account.TokenPair) tokenResponse {
	return tokenResponse{
		Type:         p.Type,
		Token:        p.Token,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.uc.Register(r.Context(), account.RegisterInput{
		Name:                 req.Name,
		Surname:              req.Surname,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"data": toUserDTO(*u)})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	pair, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toTokenResponse(pair))
}

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	pair, err := h.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toTokenResponse(pair))
}

// Logout revokes one of the caller's refresh tokens.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(h.logger, w, r)
	if !ok {
		return
	}
	var req refreshRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if err := h.uc.Logout(r.Context(), who.UserID, req.RefreshToken); err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Forgot always answers 204 so the endpoint does not reveal which emails exist.
func (h *AccountHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if err := h.uc.Forgot(r.Context(), req.Email); err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) Remember(w http.ResponseWriter, r *http.Request) {
	email, err := h.uc.Remember(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"email": email})
}

func (h *AccountHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if err := h.uc.Reset(r.Context(), req.Token, req.Password, req.PasswordConfirmation); err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
