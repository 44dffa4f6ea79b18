package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type authService interface {
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	CurrentUser(ctx context.Context, principal application.Principal) (application.User, error)
}

type registrationService interface {
	SendCode(ctx context.Context, params application.SendCodeParams) error
	Complete(ctx context.Context, params application.CompleteRegistrationParams) (application.User, error)
}

// AuthHandler serves login, logout, the current user and the two step
// registration.
type AuthHandler struct {
	service      authService
	registration registrationService
	secureCookie bool
	responder    responder
	logger       *slog.Logger
}

func NewAuthHandler(service authService, registration registrationService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{
		service:      service,
		registration: registration,
		secureCookie: secureCookie,
		responder:    newResponder(base),
		logger:       base,
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeMessage(r.Context(), w, http.StatusBadRequest, "Email and password required")
		return
	}

	email := strings.TrimSpace(req.Email)
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.service.Login(r.Context(), application.LoginParams{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, result.Token, result.ExpiresAt, h.secureCookie)
	logger.InfoContext(r.Context(), "user authenticated", "user_id", result.User.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toAuthUserDTO(result.User),
	})
}

// Logout clears the session cookie. Tokens are stateless, so a bearer token
// stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	secure := h != nil && h.secureCookie
	clearSessionCookie(w, secure)
	h.log(r.Context(), "Logout").DebugContext(r.Context(), "session cookie cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.CurrentUser(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Me", "principal_id", principal.UserID).WarnContext(r.Context(), "current user lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAuthUserDTO(user))
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registration == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registrationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "SendCode", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode send code request", "error", err)
		h.responder.writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid data")
		return
	}

	logger := h.log(r.Context(), "SendCode", "email", strings.TrimSpace(req.Email))
	if err := h.registration.SendCode(r.Context(), req.toSendCode()); err != nil {
		logger.WarnContext(r.Context(), "verification code not sent", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "verification code sent")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, okResponse{OK: true})
}

func (h *AuthHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registration == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registrationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Complete", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode registration request", "error", err)
		h.responder.writeMessage(r.Context(), w, http.StatusBadRequest, "Please fill in all fields.")
		return
	}

	logger := h.log(r.Context(), "Complete", "email", strings.TrimSpace(req.Email))
	user, err := h.registration.Complete(r.Context(), req.toComplete())
	if err != nil {
		logger.WarnContext(r.Context(), "registration rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user registered", "user_id", user.ID, "role", user.Role)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, okResponse{OK: true})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  authUserDTO `json:"user"`
}

type registrationRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

func (r registrationRequest) toSendCode() application.SendCodeParams {
	return application.SendCodeParams{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Surname:  r.Surname,
	}
}

func (r registrationRequest) toComplete() application.CompleteRegistrationParams {
	return application.CompleteRegistrationParams{
		Email:    r.Email,
		Code:     r.Code,
		Password: r.Password,
		Name:     r.Name,
		Surname:  r.Surname,
	}
}

// authUserDTO is the signed-in user. Name holds "surname name".
type authUserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toAuthUserDTO(user application.User) authUserDTO {
	return authUserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.DisplayName(),
		Role:  string(user.Role),
	}
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
