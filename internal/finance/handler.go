package finance

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/auth"
	"fintrack/internal/httputil"
	"fintrack/internal/logging"
)

// Handler contains HTTP handlers for finance endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AddCategoryRequest is the body for appending a category.
type AddCategoryRequest struct {
	Category string `json:"category"`
}

// GetCurrencies returns the currency reference table
// @Summary      List currencies
// @Tags         finance
// @Produce      json
// @Success      200 {array} Currency
// @Router       /finance [get]
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currencies, err := h.service.GetCurrencies(r.Context())
	if err != nil {
		logger.Error("failed to list currencies", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list currencies", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, currencies, http.StatusOK)
}

// GetCategories returns the current user's category list
// @Summary      List categories
// @Tags         finance
// @Produce      json
// @Success      200 {array} string
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /finance/{kind}/category [get]
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	kind := Kind(chi.URLParam(r, "kind"))

	categories, err := h.service.GetCategories(r.Context(), kind, current.ID)
	if err != nil {
		if errors.Is(err, ErrInvalidKind) {
			httputil.RespondErrorWithCode(w, "unknown finance kind", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get categories", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get categories", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, categories, http.StatusOK)
}

// AddCategory appends a category to the current user's list
// @Summary      Add category
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        request body AddCategoryRequest true "New category"
// @Success      200 {array} string
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Category exists"
// @Router       /finance/{kind}/category [post]
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req AddCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	kind := Kind(chi.URLParam(r, "kind"))

	categories, err := h.service.AddCategory(r.Context(), kind, current.ID, req.Category)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidKind):
			httputil.RespondErrorWithCode(w, "unknown finance kind", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrCategoryRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrCategoryExists):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeCategoryExists, http.StatusConflict)
		default:
			logger.Error("failed to add category", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to add category", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, categories, http.StatusOK)
}

// CreateRecord stores an income or expense entry
// @Summary      Create record
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        request body RecordInput true "Record"
// @Success      201 {object} Record
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /finance/{kind} [post]
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var input RecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	kind := Kind(chi.URLParam(r, "kind"))

	record, err := h.service.CreateRecord(r.Context(), kind, current.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidKind):
			httputil.RespondErrorWithCode(w, "unknown finance kind", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrCurrencyRequired), errors.Is(err, ErrCategoryRequired), errors.Is(err, ErrValueInvalid):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		default:
			logger.Error("failed to create record", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to create record", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, record, http.StatusCreated)
}

// ListRecords returns the current user's records
// @Summary      List records
// @Tags         finance
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Success      200 {array} Record
// @Router       /finance/{kind} [get]
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	kind := Kind(chi.URLParam(r, "kind"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.service.ListRecords(r.Context(), kind, current.ID, offset, limit)
	if err != nil {
		if errors.Is(err, ErrInvalidKind) {
			httputil.RespondErrorWithCode(w, "unknown finance kind", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to list records", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list records", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, records, http.StatusOK)
}
