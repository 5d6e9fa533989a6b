// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/authpanel/internal/platform/request"
	"github.com/taibuivan/authpanel/internal/platform/respond"
	"github.com/taibuivan/authpanel/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the public account endpoints.
//
// # Scope
//
// Registration, login and the three steps of password recovery. This layer is
// responsible for transport concerns only (status codes, JSON shapes, input
// validation).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// MountRoutes registers the endpoints on router.
//
// # Endpoints
//   - POST /register              : Creates a new account.
//   - POST /login                 : Authenticates and returns a session token.
//   - POST /forgot-password       : Emails a reset link if the account exists.
//   - GET  /reset-password/{token}: Checks a reset token.
//   - POST /reset-password        : Sets a new password with a reset token.
func (handler *Handler) MountRoutes(router chi.Router) {
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Get("/reset-password/{"+FieldToken+"}", handler.verifyResetToken)
	router.Post("/reset-password", handler.resetPassword)
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// # Response Payloads

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
}

type verifyResetTokenResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// passwordRules applies the server-side password policy.
func passwordRules(validator *validate.Validator, field, password string) *validate.Validator {
	return validator.Required(field, password).
		MinLen(field, password, PasswordMinLength).
		MaxBytes(field, password, PasswordMaxBytes)
}

/*
Register handles the creation of a new user account.

POST /api/register

Request:
  - Body: registerRequest (Name, Email, Password)

Response:
  - 201: registerResponse
  - 400: VALIDATION_ERROR: Bad input
  - 400: CONFLICT: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := validate.NormalizeName(input.Name)
	email := validate.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MaxLen(FieldName, name, NameMaxLength).
		Required(FieldEmail, email).
		MaxLen(FieldEmail, email, EmailMaxLength).
		Email(FieldEmail, email)
	passwordRules(validator, FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{Message: MessageRegistered, UserID: user.ID})
}

/*
Login authenticates a user and issues a session token.

POST /api/login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: loginResponse
  - 400: VALIDATION_ERROR: Missing fields
  - 401: UNAUTHORIZED: Invalid credentials (same body for unknown email and wrong password)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{
		Message: MessageLoginSuccessful,
		Token:   result.Token,
		UserID:  result.User.ID,
		Name:    result.User.Name,
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/forgot-password

Description: The success body never depends on whether the email is on file.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Generic message
  - 400: VALIDATION_ERROR: Missing or malformed email
  - 500: INTERNAL_ERROR: Account lookup failure
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := validate.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		MaxLen(FieldEmail, email, EmailMaxLength).
		Email(FieldEmail, email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MessageResetLinkSent)
}

/*
VerifyResetToken reports whether a reset link is still usable.

GET /api/reset-password/{token}

Response:
  - 200: verifyResetTokenResponse
  - 400: INVALID_TOKEN: Unknown or expired token
*/
func (handler *Handler) verifyResetToken(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.authService.VerifyResetToken(request.Context(), requestutil.Param(request, FieldToken))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, verifyResetTokenResponse{Message: MessageTokenValid, UserID: user.ID})
}

/*
ResetPassword completes the forgot-password flow.

POST /api/reset-password

Request:
  - Body: resetPasswordRequest (Token, NewPassword)

Response:
  - 200: Success message
  - 400: VALIDATION_ERROR: Missing fields or weak password
  - 400: INVALID_TOKEN: Unknown, expired or already used token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token)
	passwordRules(validator, FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MessagePasswordReset)
}
