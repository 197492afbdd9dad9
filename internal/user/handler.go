package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fintrack/internal/httputil"
	"fintrack/internal/logging"
)

// SessionRevoker revokes refresh sessions when an account goes away.
type SessionRevoker interface {
	AbortAllSessions(ctx context.Context, userID uuid.UUID) error
}

// PasswordHasher turns a plaintext password into a stored hash.
type PasswordHasher func(password string) (string, error)

// CurrentUser extracts the authenticated user placed in the request
// context by the auth middleware.
type CurrentUser func(ctx context.Context) (*User, bool)

// Handler contains HTTP handlers for user management endpoints
type Handler struct {
	repo        *Repository
	profiles    *ProfileRepository
	sessions    SessionRevoker
	hash        PasswordHasher
	currentUser CurrentUser
}

func NewHandler(repo *Repository, profiles *ProfileRepository, sessions SessionRevoker, hash PasswordHasher, currentUser CurrentUser) *Handler {
	return &Handler{
		repo:        repo,
		profiles:    profiles,
		sessions:    sessions,
		hash:        hash,
		currentUser: currentUser,
	}
}

// Response is the public user shape.
type Response struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	IsSuperuser bool      `json:"is_superuser"`
}

func newResponse(u *User) Response {
	return Response{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		IsSuperuser: u.IsSuperuser,
	}
}

// UpdatePasswordRequest is the body for changing the own password.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// UpdateFlagsRequest is the superuser body for changing account status.
type UpdateFlagsRequest struct {
	IsActive    bool `json:"is_active"`
	IsVerified  bool `json:"is_verified"`
	IsSuperuser bool `json:"is_superuser"`
}

// List returns all users, superuser only
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Success      200 {array} Response
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	responses := make([]Response, 0, len(users))
	for _, u := range users {
		responses = append(responses, newResponse(u))
	}
	httputil.RespondJSON(w, responses, http.StatusOK)
}

// Me returns the current user
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Success      200 {object} Response
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}
	httputil.RespondJSON(w, newResponse(current), http.StatusOK)
}

// UpdateMyPassword changes the current user's password
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdatePasswordRequest true "New password"
// @Success      200 {object} Response
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /users/me [patch]
func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if len(req.Password) < 8 {
		httputil.RespondErrorWithCode(w, "password must be at least 8 characters", httputil.CodePasswordTooShort, http.StatusBadRequest)
		return
	}

	passwordHash, err := h.hash(req.Password)
	if err != nil {
		logger.Error("failed to hash password", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if err := h.repo.UpdatePassword(r.Context(), current.ID, passwordHash); err != nil {
		logger.Error("failed to update password", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password updated", "user_id", current.ID)

	httputil.RespondJSON(w, newResponse(current), http.StatusOK)
}

// DeleteMe soft-deletes the current user
// @Summary      Delete own account
// @Description  Deactivate the account and revoke all sessions. The email stays claimed.
// @Tags         users
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /users/me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.repo.Deactivate(r.Context(), current.ID); err != nil {
		logger.Error("failed to deactivate user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if err := h.sessions.AbortAllSessions(r.Context(), current.ID); err != nil {
		logger.Error("failed to revoke sessions", "error", err.Error())
	}

	logger.Info("user deactivated", "user_id", current.ID)

	httputil.RespondJSON(w, map[string]string{"message": "account deleted"}, http.StatusOK)
}

// ProfileRequest is the body for creating or updating the own profile.
type ProfileRequest struct {
	Username     string `json:"username"`
	CurrencyCode string `json:"currency_code"`
}

func (req *ProfileRequest) validate() (string, bool) {
	if req.Username == "" {
		return "username is required", false
	}
	if len(req.Username) > 32 {
		return "username must be at most 32 characters", false
	}
	if req.CurrencyCode == "" {
		return "currency code is required", false
	}
	return "", true
}

// CreateProfile creates the current user's profile
// @Summary      Create own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ProfileRequest true "Profile"
// @Success      201 {object} Profile
// @Failure      409 {object} httputil.ErrorResponse "Profile exists"
// @Router       /users/me/profile [post]
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if msg, ok := req.validate(); !ok {
		httputil.RespondErrorWithCode(w, msg, httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.Create(r.Context(), current.ID, req.Username, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, ErrProfileExists) {
			httputil.RespondErrorWithCode(w, "profile already exists", httputil.CodeProfileExists, http.StatusConflict)
			return
		}
		logger.Error("failed to create profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile created", "user_id", current.ID)

	httputil.RespondJSON(w, profile, http.StatusCreated)
}

// UpdateProfile replaces the current user's profile
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ProfileRequest true "Profile"
// @Success      200 {object} Profile
// @Failure      404 {object} httputil.ErrorResponse "Profile absent"
// @Router       /users/me/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if msg, ok := req.validate(); !ok {
		httputil.RespondErrorWithCode(w, msg, httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.Update(r.Context(), current.ID, req.Username, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			httputil.RespondErrorWithCode(w, "profile not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile updated", "user_id", current.ID)

	httputil.RespondJSON(w, profile, http.StatusOK)
}

// DeleteProfile removes the current user's profile
// @Summary      Delete own profile
// @Tags         users
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse "Profile absent"
// @Router       /users/me/profile [delete]
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.profiles.Delete(r.Context(), current.ID); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			httputil.RespondErrorWithCode(w, "profile not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile deleted", "user_id", current.ID)

	httputil.RespondJSON(w, map[string]string{"message": "profile has been deleted"}, http.StatusOK)
}

// Get returns a user by id, superuser only
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} Response
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	found, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, newResponse(found), http.StatusOK)
}

// UpdateFlags changes a user's status flags, superuser only
// @Summary      Update user flags
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateFlagsRequest true "Flags"
// @Success      200 {object} Response
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [patch]
func (h *Handler) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	var req UpdateFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.repo.SetFlags(r.Context(), id, req.IsActive, req.IsVerified, req.IsSuperuser); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update user flags", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// A deactivation must also cut the user's sessions loose.
	if !req.IsActive {
		if err := h.sessions.AbortAllSessions(r.Context(), id); err != nil {
			logger.Error("failed to revoke sessions", "error", err.Error())
		}
	}

	updated, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to reload user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user flags updated", "user_id", id)

	httputil.RespondJSON(w, newResponse(updated), http.StatusOK)
}

// Delete removes a user entirely, superuser only
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	if err := h.repo.HardDelete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user deleted", "user_id", id)

	httputil.RespondJSON(w, map[string]string{"message": "user deleted"}, http.StatusOK)
}
