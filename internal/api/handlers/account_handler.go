package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anahisv/whisperbox-be/internal/auth"
	"github.com/anahisv/whisperbox-be/internal/services"
)

// AccountHandler handles HTTP requests for registration, verification and
// sign-in.
type AccountHandler struct {
	service services.AccountServiceProvider
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service services.AccountServiceProvider) *AccountHandler {
	return &AccountHandler{service: service}
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// VerifyPayload defines the structure for code verification requests.
type VerifyPayload struct {
	Username string `json:"username" validate:"required"`
	Otp      string `json:"otp" validate:"required,len=6,numeric"`
}

// SignInPayload defines the structure for sign-in requests. The identifier
// matches either email or username.
type SignInPayload struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Signup handles new user registration and triggers delivery of the
// verification code.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := decodeValid(r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "Invalid signup payload")
		return
	}

	err := h.service.Register(payload.Username, payload.Email, payload.Password)
	switch {
	case err == nil:
		respondMessage(w, http.StatusCreated, true, "User registered successfully. Please verify your account.")
	case errors.Is(err, services.ErrUsernameTaken):
		respondMessage(w, http.StatusBadRequest, false, "Username already exists")
	case errors.Is(err, services.ErrEmailTaken):
		respondMessage(w, http.StatusBadRequest, false, "User already exists with this email")
	case errors.Is(err, services.ErrDeliveryFailed):
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to send verification email")
		respondMessage(w, http.StatusInternalServerError, false, "Failed to send verification email")
	default:
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondMessage(w, http.StatusInternalServerError, false, "Error registering user")
	}
}

// VerifyCode handles submission of the emailed one-time code.
func (h *AccountHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var payload VerifyPayload
	if err := decodeValid(r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "Invalid verification payload")
		return
	}

	// The frontend may pass the username straight from the URL path.
	username, err := url.QueryUnescape(payload.Username)
	if err != nil {
		username = payload.Username
	}

	err = h.service.VerifyCode(username, payload.Otp)
	switch {
	case err == nil:
		respondMessage(w, http.StatusOK, true, "Account verified")
	case errors.Is(err, services.ErrUserNotFound):
		respondMessage(w, http.StatusBadRequest, false, "User not found")
	case errors.Is(err, services.ErrCodeExpired):
		respondMessage(w, http.StatusBadRequest, false, "Verification code is expired")
	case errors.Is(err, services.ErrCodeInvalid):
		respondMessage(w, http.StatusBadRequest, false, "Verification code is incorrect")
	default:
		log.Error().Err(err).Str("username", username).Msg("Failed to verify user")
		respondMessage(w, http.StatusInternalServerError, false, "Error verifying user")
	}
}

// CheckUsername reports whether a username is still available, i.e. not held
// by a verified account.
func (h *AccountHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	query := struct {
		Username string `validate:"required,min=2,max=20,username"`
	}{Username: r.URL.Query().Get("username")}

	if err := validate.Struct(query); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "Invalid query parameters")
		return
	}

	available, err := h.service.IsUsernameAvailable(query.Username)
	if err != nil {
		log.Error().Err(err).Str("username", query.Username).Msg("Failed to check username availability")
		respondMessage(w, http.StatusInternalServerError, false, "Error checking for unique username")
		return
	}
	if !available {
		respondMessage(w, http.StatusInternalServerError, false, "Username is already taken")
		return
	}
	respondMessage(w, http.StatusCreated, true, "Username is unique")
}

// SignIn handles credential authentication and session token issuance. The
// token claims snapshot the account flags as of this moment.
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload SignInPayload
	if err := decodeValid(r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "Invalid sign-in payload")
		return
	}

	user, err := h.service.Authenticate(payload.Identifier, payload.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserNotFound):
		respondMessage(w, http.StatusUnauthorized, false, "User not found with the following credentials")
		return
	case errors.Is(err, services.ErrNotVerified):
		respondMessage(w, http.StatusUnauthorized, false, "Please verify your account first")
		return
	case errors.Is(err, services.ErrBadCredentials):
		log.Warn().Str("identifier", payload.Identifier).Msg("Failed authentication attempt")
		respondMessage(w, http.StatusUnauthorized, false, "Incorrect Password")
		return
	default:
		log.Error().Err(err).Str("identifier", payload.Identifier).Msg("Failed to authenticate user")
		respondMessage(w, http.StatusInternalServerError, false, "Error signing in")
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respondMessage(w, http.StatusInternalServerError, false, "Failed to generate token")
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respond(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed in successfully",
		"token":   token,
		"user":    user,
	})
}

// GetAcceptMessages returns the live accept-messages flag for the signed-in
// user, bypassing the possibly stale token snapshot.
func (h *AccountHandler) GetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, false, "Not Authenticated.")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondMessage(w, http.StatusUnauthorized, false, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load accept-messages state")
		respondMessage(w, http.StatusInternalServerError, false, "Error getting user acceptance messages details")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"message":             "User found with message acceptance status",
		"isAcceptingMessages": user.IsAcceptingMessages,
	})
}

// AcceptMessagesPayload defines the structure for toggle requests.
type AcceptMessagesPayload struct {
	AcceptMessages bool `json:"acceptMessages"`
}

// SetAcceptMessages overwrites the accept-messages flag for the signed-in
// user and returns the updated account.
func (h *AccountHandler) SetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, false, "Not Authenticated.")
		return
	}

	var payload AcceptMessagesPayload
	if err := decodeValid(r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	user, err := h.service.SetAcceptingMessages(claims.UserID, payload.AcceptMessages)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondMessage(w, http.StatusUnauthorized, false, "Failed to update user")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to update accept-messages state")
		respondMessage(w, http.StatusInternalServerError, false, "Error changing accept messages request")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Updated message acceptance status successfully",
		"updatedUser": user,
	})
}
