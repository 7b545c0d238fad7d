// Package handler exposes the owner-facing invoice API. It delegates to the
// service layer and keeps transport concerns (DTOs, status codes) here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"quoteguard/internal/invoice"
	"quoteguard/internal/invoice/canonical"
	"quoteguard/internal/platform/middleware"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
	"quoteguard/pkg/platform/httputil"
	"quoteguard/pkg/requestcontext"
)

const dateLayout = "2006-01-02"

// Service defines the invoice operations the handler needs.
type Service interface {
	Create(ctx context.Context, draft invoice.Draft) (id.PublicID, error)
	Get(ctx context.Context, requester id.OwnerID, publicID id.PublicID) (*invoice.Record, error)
	List(ctx context.Context, requester id.OwnerID) ([]*invoice.Record, error)
	Revoke(ctx context.Context, publicID id.PublicID, requester id.OwnerID, reason string) error
}

// Handler handles the authenticated /api/invoices endpoints.
type Handler struct {
	logger    *slog.Logger
	invoices  Service
	validator middleware.TokenValidator
}

// New creates a new invoice Handler.
func New(invoices Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		invoices:  invoices,
		validator: validator,
	}
}

// Register registers the invoice routes with the chi router. Every route
// requires a valid bearer token; the owner id comes from the token, never
// from the request body.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.RequireAuth(h.validator, h.logger))
	api.Post("/", h.handleCreate)
	api.Get("/", h.handleList)
	api.Get("/{publicID}", h.handleGet)
	api.Post("/{publicID}/revoke", h.handleRevoke)
	// Records are append-only. The route exists so the contract is explicit:
	// deletion is rejected, not missing.
	api.Delete("/{publicID}", h.handleDeleteRejected)

	r.Mount("/api/invoices", api)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetOwnerID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	draft, err := req.toDraft(ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	publicID, err := h.invoices.Create(ctx, draft)
	if err != nil {
		h.logError(ctx, "invoice creation failed", err)
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.invoices.Get(ctx, ownerID, publicID)
	if err != nil {
		h.logError(ctx, "created invoice readback failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recs, err := h.invoices.List(ctx, middleware.GetOwnerID(ctx))
	if err != nil {
		h.logError(ctx, "invoice listing failed", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Invoices: out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	publicID, err := id.ParsePublicID(chi.URLParam(r, "publicID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "invoice not found"))
		return
	}

	rec, err := h.invoices.Get(ctx, middleware.GetOwnerID(ctx), publicID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	publicID, err := id.ParsePublicID(chi.URLParam(r, "publicID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "invoice not found"))
		return
	}

	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.invoices.Revoke(ctx, publicID, middleware.GetOwnerID(ctx), req.Reason); err != nil {
		h.logError(ctx, "invoice revocation failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteRejected(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error":             "method_not_allowed",
		"error_description": "invoices are never deleted; revoke instead",
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"code", string(code),
	)
}

type createRequest struct {
	ClientID  int64             `json:"client_id"`
	Number    string            `json:"number,omitempty"`
	IssueDate string            `json:"issue_date"`
	DueDate   string            `json:"due_date"`
	Currency  string            `json:"currency"`
	Subtotal  json.Number       `json:"subtotal"`
	Tax       json.Number       `json:"tax"`
	Total     json.Number       `json:"total"`
	Items     []lineItemRequest `json:"items"`
}

type lineItemRequest struct {
	Product   string      `json:"product"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unit_price"`
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (req createRequest) toDraft(ownerID id.OwnerID) (invoice.Draft, error) {
	issue, err := parseDate(req.IssueDate, "issue_date")
	if err != nil {
		return invoice.Draft{}, err
	}
	due, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		return invoice.Draft{}, err
	}
	subtotal, err := parseAmount(req.Subtotal, "subtotal")
	if err != nil {
		return invoice.Draft{}, err
	}
	tax, err := parseAmount(req.Tax, "tax")
	if err != nil {
		return invoice.Draft{}, err
	}
	total, err := parseAmount(req.Total, "total")
	if err != nil {
		return invoice.Draft{}, err
	}

	items := make([]invoice.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		price, err := parseAmount(item.UnitPrice, "unit_price")
		if err != nil {
			return invoice.Draft{}, err
		}
		items = append(items, invoice.LineItem{
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}

	return invoice.Draft{
		OwnerID:   ownerID,
		ClientID:  id.ClientID(req.ClientID),
		Number:    req.Number,
		IssueDate: issue,
		DueDate:   due,
		Currency:  req.Currency,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		Items:     items,
	}, nil
}

type recordResponse struct {
	PublicID  string             `json:"public_id"`
	Number    string             `json:"number"`
	ClientID  int64              `json:"client_id"`
	IssueDate string             `json:"issue_date"`
	DueDate   string             `json:"due_date"`
	Currency  string             `json:"currency"`
	Subtotal  string             `json:"subtotal"`
	Tax       string             `json:"tax"`
	Total     string             `json:"total"`
	Items     []lineItemResponse `json:"items"`
	Status    string             `json:"status"`
	Digest    string             `json:"digest"`
	CreatedAt string             `json:"created_at"`
	RevokedAt string             `json:"revoked_at,omitempty"`
	Reason    string             `json:"revocation_reason,omitempty"`
}

type lineItemResponse struct {
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type listResponse struct {
	Invoices []recordResponse `json:"invoices"`
}

func toRecordResponse(rec *invoice.Record) recordResponse {
	items := make([]lineItemResponse, 0, len(rec.Items))
	for _, item := range rec.Items {
		items = append(items, lineItemResponse{
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: canonical.Money(item.UnitPrice),
		})
	}
	resp := recordResponse{
		PublicID:  rec.PublicID.String(),
		Number:    rec.Number,
		ClientID:  int64(rec.ClientID),
		IssueDate: rec.IssueDate.Format(dateLayout),
		DueDate:   rec.DueDate.Format(dateLayout),
		Currency:  rec.Currency,
		Subtotal:  canonical.Money(rec.Subtotal),
		Tax:       canonical.Money(rec.Tax),
		Total:     canonical.Money(rec.Total),
		Items:     items,
		Status:    string(rec.Status),
		Digest:    rec.Digest,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.Revoked != nil {
		resp.RevokedAt = rec.Revoked.RevokedAt.Format(time.RFC3339)
		resp.Reason = rec.Revoked.Reason
	}
	return resp
}

func parseDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, field+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func parseAmount(value json.Number, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	d, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Decimal{}, dErrors.New(dErrors.CodeInvalidInput, field+" must be a decimal amount")
	}
	return d, nil
}
