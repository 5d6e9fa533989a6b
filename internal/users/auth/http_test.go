// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authpanel/internal/platform/respond"
)

func newTestRouter(t *testing.T) (*serviceFixture, http.Handler) {
	t.Helper()
	fixture := newServiceFixture(t)
	router := chi.NewRouter()
	NewHandler(fixture.service).MountRoutes(router)
	return fixture, router
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out), recorder.Body.String())
	return out
}

func TestHandler_Register(t *testing.T) {
	fixture, router := newTestRouter(t)

	recorder := doJSON(router, http.MethodPost, "/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	created := decodeBody[registerResponse](t, recorder)
	assert.Equal(t, MessageRegistered, created.Message)
	assert.Equal(t, fixture.users.get("a@x.com").ID, created.UserID)

	duplicate := doJSON(router, http.MethodPost, "/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, duplicate.Code)
	envelope := decodeBody[respond.ErrorEnvelope](t, duplicate)
	assert.Equal(t, "CONFLICT", envelope.Code)
	assert.Equal(t, MessageDuplicateEmail, envelope.Error)
	assert.Len(t, fixture.users.byID, 1)
}

func TestHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"InvalidJSON", `{"name":`, nil},
		{"AllMissing", `{}`, []string{FieldName, FieldEmail, FieldPassword}},
		{"BlankName", `{"name":"   ","email":"a@x.com","password":"secret1"}`, []string{FieldName}},
		{"BadEmail", `{"name":"A","email":"nope","password":"secret1"}`, []string{FieldEmail}},
		{"ShortPassword", `{"name":"A","email":"a@x.com","password":"12345"}`, []string{FieldPassword}},
		{"LongPassword", `{"name":"A","email":"a@x.com","password":"` + strings.Repeat("p", PasswordMaxBytes+1) + `"}`, []string{FieldPassword}},
		{"LongEmail", `{"name":"A","email":"` + strings.Repeat("a", EmailMaxLength) + `@x.com","password":"secret1"}`, []string{FieldEmail}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture, router := newTestRouter(t)
			recorder := doJSON(router, http.MethodPost, "/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			envelope := decodeBody[respond.ErrorEnvelope](t, recorder)
			assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
			for _, field := range tt.fields {
				assert.Contains(t, recorder.Body.String(), `"field":"`+field+`"`)
			}
			assert.Empty(t, fixture.users.byID)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	fixture, router := newTestRouter(t)
	user := fixture.register(t, "Alice", "a@x.com", "secret1")

	success := doJSON(router, http.MethodPost, "/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, success.Code)
	body := decodeBody[loginResponse](t, success)
	assert.Equal(t, MessageLoginSuccessful, body.Message)
	assert.Equal(t, user.ID, body.UserID)
	assert.Equal(t, "Alice", body.Name)
	assert.NotEmpty(t, body.Token)

	unknown := doJSON(router, http.MethodPost, "/login", `{"email":"b@x.com","password":"secret1"}`)
	wrong := doJSON(router, http.MethodPost, "/login", `{"email":"a@x.com","password":"secret2"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String(), "bodies must be byte-identical")

	missing := doJSON(router, http.MethodPost, "/login", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestHandler_ForgotPassword(t *testing.T) {
	fixture, router := newTestRouter(t)
	fixture.register(t, "Alice", "a@x.com", "secret1")

	known := doJSON(router, http.MethodPost, "/forgot-password", `{"email":"a@x.com"}`)
	unknown := doJSON(router, http.MethodPost, "/forgot-password", `{"email":"nobody@x.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Equal(t, MessageResetLinkSent, decodeBody[map[string]string](t, known)[FieldMessage])
	assert.Len(t, fixture.mailer.sent(), 1)

	missing := doJSON(router, http.MethodPost, "/forgot-password", `{}`)
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	overlong := doJSON(router, http.MethodPost, "/forgot-password", `{"email":"`+strings.Repeat("a", EmailMaxLength)+`@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, overlong.Code)
	assert.Len(t, fixture.mailer.sent(), 1)
}

func TestHandler_ForgotPassword_StoreFailure(t *testing.T) {
	fixture, router := newTestRouter(t)
	fixture.users.failAll = errStoreDown

	recorder := doJSON(router, http.MethodPost, "/forgot-password", `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), errStoreDown.Error())
}

func TestHandler_ForgotPassword_TokenSaveFailureIsGeneric(t *testing.T) {
	fixture, router := newTestRouter(t)
	fixture.register(t, "Alice", "a@x.com", "secret1")
	fixture.users.failSetReset = errStoreDown

	known := doJSON(router, http.MethodPost, "/forgot-password", `{"email":"a@x.com"}`)
	unknown := doJSON(router, http.MethodPost, "/forgot-password", `{"email":"nobody@x.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, unknown.Body.String(), known.Body.String())
	assert.Empty(t, fixture.mailer.sent())
}

func TestHandler_ResetFlow(t *testing.T) {
	fixture, router := newTestRouter(t)
	user := fixture.register(t, "Alice", "a@x.com", "secret1")
	token := fixture.issueResetToken(t, "a@x.com")

	verify := doJSON(router, http.MethodGet, "/reset-password/"+token, "")
	require.Equal(t, http.StatusOK, verify.Code)
	verified := decodeBody[verifyResetTokenResponse](t, verify)
	assert.Equal(t, MessageTokenValid, verified.Message)
	assert.Equal(t, user.ID, verified.UserID)

	bogus := doJSON(router, http.MethodGet, "/reset-password/not-a-token", "")
	assert.Equal(t, http.StatusBadRequest, bogus.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeBody[respond.ErrorEnvelope](t, bogus).Code)

	weak := doJSON(router, http.MethodPost, "/reset-password", `{"token":"`+token+`","newPassword":"123"}`)
	assert.Equal(t, http.StatusBadRequest, weak.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody[respond.ErrorEnvelope](t, weak).Code)

	reset := doJSON(router, http.MethodPost, "/reset-password", `{"token":"`+token+`","newPassword":"newsecret"}`)
	require.Equal(t, http.StatusOK, reset.Code)
	assert.Equal(t, MessagePasswordReset, decodeBody[map[string]string](t, reset)[FieldMessage])

	again := doJSON(router, http.MethodPost, "/reset-password", `{"token":"`+token+`","newPassword":"newsecret"}`)
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeBody[respond.ErrorEnvelope](t, again).Code)

	verifyAfter := doJSON(router, http.MethodGet, "/reset-password/"+token, "")
	assert.Equal(t, http.StatusBadRequest, verifyAfter.Code)
}
