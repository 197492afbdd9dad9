package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fintrack/internal/httputil"
	"fintrack/internal/logging"
	"fintrack/internal/ratelimit"
	"fintrack/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service      *Service
	rateLimiter  *ratelimit.Limiter
	logger       *logging.Logger
	isProduction bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger, isProduction bool, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		service:      service,
		rateLimiter:  rateLimiter,
		logger:       logger,
		isProduction: isProduction,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	IsSuperuser bool      `json:"is_superuser"`
}

// NewUserResponse maps a domain user onto the API shape.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		IsSuperuser: u.IsSuperuser,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already claimed"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	newUser, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already claimed")
			httputil.RespondErrorWithCode(w, "user already exists", httputil.CodeUserAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	httputil.RespondJSON(w, NewUserResponse(newUser), http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive an access/refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} Tokens
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in")

	SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken, h.isProduction, h.accessTTL, h.refreshTTL)
	httputil.RespondJSON(w, tokens, http.StatusOK)
}

// Refresh handles access token refresh
// @Summary      Refresh the token pair
// @Description  Exchange the refresh-token cookie for a new token pair
// @Tags         auth
// @Produce      json
// @Success      200 {object} Tokens
// @Failure      401 {object} httputil.ErrorResponse "Invalid or expired refresh token"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	refreshToken, err := GetRefreshTokenFromCookie(r)
	if err != nil || refreshToken == "" {
		logger.Warn("refresh token cookie missing")
		httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}
	refreshToken = strings.TrimSpace(refreshToken)

	tokens, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionExpired):
			logger.Warn("refresh failed: session expired")
			httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
		case errors.Is(err, ErrInvalidToken):
			logger.Warn("refresh failed: invalid token")
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
		default:
			logger.Error("refresh failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to refresh token", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("token pair refreshed")

	SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken, h.isProduction, h.accessTTL, h.refreshTTL)
	httputil.RespondJSON(w, tokens, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Revoke the presented refresh session and clear cookies
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Revocation is idempotent; a missing cookie still clears state.
	if refreshToken, err := GetRefreshTokenFromCookie(r); err == nil && refreshToken != "" {
		if err := h.service.Logout(r.Context(), refreshToken); err != nil {
			logger.Warn("failed to revoke refresh session", "error", err.Error())
		}
	}

	ClearAuthCookies(w)

	logger.Info("user logged out")

	httputil.RespondJSON(w, map[string]string{"message": "logged out successfully"}, http.StatusOK)
}

// Abort revokes every session of the current user
// @Summary      Log out everywhere
// @Description  Revoke all refresh sessions owned by the current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /auth/abort [post]
func (h *Handler) Abort(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.service.AbortAllSessions(r.Context(), current.ID); err != nil {
		logger.Error("failed to abort sessions", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to abort sessions", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	ClearAuthCookies(w)

	logger.Info("all sessions aborted", "user_id", current.ID)

	httputil.RespondJSON(w, map[string]string{"message": "all sessions were aborted"}, http.StatusOK)
}

// RequestVerify issues a verification mail for the current user
// @Summary      Request email verification
// @Description  Mint a verification token and queue the verification mail
// @Tags         auth
// @Produce      json
// @Success      200 {object} bool
// @Failure      409 {object} httputil.ErrorResponse "Already verified"
// @Router       /auth/request_for_verify [get]
func (h *Handler) RequestVerify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), current.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email cooldown active", "user_id", current.ID)
		httputil.RespondErrorWithCode(w, "please wait before requesting another email", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	if err := h.service.RequestVerification(r.Context(), current); err != nil {
		if errors.Is(err, ErrAlreadyVerified) {
			logger.Warn("verification requested for verified user", "user_id", current.ID)
			httputil.RespondErrorWithCode(w, "user already verified", httputil.CodeAlreadyVerified, http.StatusConflict)
			return
		}
		logger.Error("failed to request verification", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to request verification", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), current.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	logger.Info("verification mail queued", "user_id", current.ID)

	httputil.RespondJSON(w, true, http.StatusOK)
}

// Verify confirms an email address
// @Summary      Verify email address
// @Description  Validate the verification token from the mailed link. The token is the credential.
// @Tags         auth
// @Produce      json
// @Param        token path string true "Verification token"
// @Success      200 {object} VerifyResult
// @Failure      401 {object} httputil.ErrorResponse "Invalid token"
// @Router       /auth/verify/{token} [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")
	if token == "" {
		httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	result, err := h.service.Verify(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			logger.Warn("verification failed: invalid token")
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}
		logger.Error("verification failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to verify", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("verification processed", "status", result.Status)

	httputil.RespondJSON(w, result, http.StatusOK)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
