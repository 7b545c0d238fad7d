// Package handler exposes the public verification endpoint. It is
// unauthenticated: anyone holding a public identifier (typically scanned from
// a QR code) may check it.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"quoteguard/internal/invoice/canonical"
	"quoteguard/internal/verification"
	id "quoteguard/pkg/domain"
	"quoteguard/pkg/platform/httputil"
	"quoteguard/pkg/requestcontext"
)

const dateLayout = "2006-01-02"

// Service defines the verification operation the handler needs.
type Service interface {
	Verify(ctx context.Context, publicID id.PublicID) (verification.Result, error)
}

type Handler struct {
	logger   *slog.Logger
	verifier Service
}

func New(verifier Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, verifier: verifier}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/verify/{publicID}", h.handleVerify)
}

// handleVerify always answers 200 for classifiable identifiers: the outcome
// is data, not an HTTP error. A malformed identifier classifies as not_found
// so probing cannot distinguish malformed from unknown.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	publicID, err := id.ParsePublicID(chi.URLParam(r, "publicID"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, resultResponse{
			Outcome:   string(verification.OutcomeNotFound),
			CheckedAt: requestcontext.Now(ctx).Format(time.RFC3339),
		})
		return
	}

	result, err := h.verifier.Verify(ctx, publicID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"public_id", publicID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResultResponse(result))
}

type resultResponse struct {
	Outcome   string `json:"outcome"`
	CheckedAt string `json:"checked_at"`

	OwnerName     string `json:"owner_name,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	IssueDate     string `json:"issue_date,omitempty"`
	DueDate       string `json:"due_date,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Total         string `json:"total,omitempty"`

	RevokedAt string `json:"revoked_at,omitempty"`
	Reason    string `json:"revocation_reason,omitempty"`
}

func toResultResponse(result verification.Result) resultResponse {
	resp := resultResponse{
		Outcome:       string(result.Outcome),
		CheckedAt:     result.CheckedAt.Format(time.RFC3339),
		OwnerName:     result.OwnerName,
		InvoiceNumber: result.InvoiceNumber,
	}
	switch result.Outcome {
	case verification.OutcomeVerified:
		resp.IssueDate = result.IssueDate.Format(dateLayout)
		resp.DueDate = result.DueDate.Format(dateLayout)
		resp.Currency = result.Currency
		resp.Total = canonical.Money(result.Total)
	case verification.OutcomeRevoked:
		resp.IssueDate = result.IssueDate.Format(dateLayout)
	}
	if result.RevokedAt != nil {
		resp.RevokedAt = result.RevokedAt.Format(time.RFC3339)
		resp.Reason = result.Reason
	}
	return resp
}
