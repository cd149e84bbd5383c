package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"taskpro/internal/service"
	"taskpro/internal/validate"
)

// AuthHandler serves sign-up, the OAuth2 token endpoint and session info.
type AuthHandler struct {
	store  Store
	logger *slog.Logger
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// tokenResponse is an RFC 6749 access token response. user_id and email
// are extensions read back through oauth2.Token.Extra.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

type oauthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if !validate.IsEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if utf8.RuneCountInString(req.Password) < validate.MinPasswordLen {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	ident, err := h.store.SignUp(r.Context(), req.Email, req.Password, service.Metadata{FullName: req.FullName})
	if err != nil {
		if !errors.Is(err, service.ErrEmailTaken) {
			h.logger.Error("sign up failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}
	h.logger.Info("user registered", "user_id", ident.UserID)
	writeJSON(w, http.StatusCreated, newTokenResponse(ident))
}

// Token handles POST /auth/token for the password and refresh_token grants.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, oauthError{Code: "invalid_request", Description: err.Error()})
		return
	}

	var (
		ident service.Identity
		err   error
	)
	switch grant := r.PostForm.Get("grant_type"); grant {
	case "password":
		ident, err = h.store.SignIn(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	case "refresh_token":
		ident, err = h.store.Refresh(r.Context(), r.PostForm.Get("refresh_token"))
	default:
		writeJSON(w, http.StatusBadRequest, oauthError{Code: "unsupported_grant_type", Description: grant})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNotAuthenticated):
		writeJSON(w, http.StatusBadRequest, oauthError{Code: "invalid_grant", Description: err.Error()})
	case err != nil:
		h.logger.Error("token grant failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, oauthError{Code: "server_error"})
	default:
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, newTokenResponse(ident))
	}
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())
	if err := h.store.SignOut(r.Context(), ident.Token); err != nil {
		h.logger.Error("sign out failed", "error", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// User handles GET /auth/user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())
	writeJSON(w, http.StatusOK, userResponse{ID: ident.UserID, Email: ident.Email})
}

func newTokenResponse(ident service.Identity) tokenResponse {
	tok := ident.Token
	if tok == nil {
		tok = &oauth2.Token{}
	}
	resp := tokenResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: tok.RefreshToken,
		UserID:       ident.UserID,
		Email:        ident.Email,
	}
	if !tok.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	return resp
}
