package handlers_test

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/logx"
)

func testLogger() logx.Logger { return logx.Nop() }

func testURL(path string) string { return "http://cdn.test/" + path }

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withIdentity(req *http.Request, userID int64, roles ...string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UserID: userID, Roles: roles}))
}
