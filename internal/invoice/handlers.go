package invoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/tax"
)

// Handler exposes the invoice endpoints.
type Handler struct {
	service        *Service
	defaultPerPage int
	maxPerPage     int
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service        *Service
	DefaultPerPage int
	MaxPerPage     int
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	defaultPerPage := cfg.DefaultPerPage
	if defaultPerPage < 1 {
		defaultPerPage = 20
	}
	maxPerPage := cfg.MaxPerPage
	if maxPerPage < 1 {
		maxPerPage = 100
	}
	return &Handler{service: cfg.Service, defaultPerPage: defaultPerPage, maxPerPage: maxPerPage}
}

// Treatments handles GET /api/v1/tax-treatments?relationship=intra|inter.
func (h *Handler) Treatments(w http.ResponseWriter, r *http.Request) {
	rel, ok := tax.ParseRelationship(r.URL.Query().Get("relationship"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "relationship must be intra or inter", map[string]any{"field": "relationship"})
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": tax.TreatmentsFor(rel)})
}

// Preview handles POST /api/v1/invoices/preview: live totals for the editing UI.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	req, err := decodeComputeRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Create handles POST /api/v1/invoices: finalize and persist.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	req, err := decodeComputeRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	doc, err := h.service.Finalize(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": doc})
}

// List handles GET /api/v1/invoices with pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.defaultPerPage)
	if perPage > h.maxPerPage {
		perPage = h.maxPerPage
	}
	rows, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       rows,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	doc, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": doc})
}

func decodeComputeRequest(r *http.Request) (ComputeRequest, error) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ComputeRequest{}, &common.AppError{
			Code:       "BAD_REQUEST",
			Message:    "invalid JSON body",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	}
	return req, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		common.JSONError(w, status, code, message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
