// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
	"github.com/taibuivan/authpanel/internal/platform/constants"
	"github.com/taibuivan/authpanel/internal/platform/ctxutil"
	"github.com/taibuivan/authpanel/internal/platform/respond"
	"github.com/taibuivan/authpanel/internal/platform/sec"
)

// Client-facing messages for rejected requests.
const (
	MessageNoToken      = "No token provided."
	MessageInvalidToken = "Invalid or expired token."
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// Declaring it here keeps the middleware independent of the concrete token
// service, so tests can inject a stub.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate guards a route with a bearer session token.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>'. Missing header or token: 401.
//  2. Verify the token via [TokenVerifier]. Failure of any kind: 401.
//  3. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenString, present := bearerToken(request.Header.Get(constants.HeaderAuthorization))
			if !present {
				respond.Error(writer, request, apperr.Unauthorized(MessageNoToken))
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized(MessageInvalidToken))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// bearerToken splits the header into scheme and credential.
//
// A header carrying the scheme with no credential counts as absent.
// A non-bearer scheme is returned as a credential so verification rejects it.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	scheme, credential, found := strings.Cut(header, " ")
	if !found {
		if strings.EqualFold(scheme, constants.BearerScheme) {
			return "", false
		}
		return header, true
	}

	credential = strings.TrimSpace(credential)
	if !strings.EqualFold(scheme, constants.BearerScheme) {
		return header, true
	}
	if credential == "" {
		return "", false
	}
	return credential, true
}
