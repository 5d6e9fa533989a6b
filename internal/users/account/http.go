// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides the HTTP delivery layer for signed-in users.

# Security

All endpoints in this package sit behind the Authenticate middleware; the
session claims are read from the request context.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/authpanel/internal/platform/request"
	"github.com/taibuivan/authpanel/internal/platform/respond"
)

// Handler implements the HTTP layer for the signed-in area.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// MountRoutes registers the guarded endpoints on router.
func (handler *Handler) MountRoutes(router chi.Router) {
	router.Get("/dashboard", handler.dashboard)
	router.Get("/me", handler.getMe)
}

/*
GET /api/dashboard.

Description: Greets the session holder by the name embedded in the token.

Response:
  - 200: {message}
  - 401: UNAUTHORIZED: Missing, invalid or expired token
*/
func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, Greeting(claims.Name))
}

/*
GET /api/me.

Description: Retrieves the private profile of the authenticated user.

Response:
  - 200: Profile
  - 401: UNAUTHORIZED: Authentication required or account gone
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
