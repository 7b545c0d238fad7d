package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"quoteguard/internal/invoice"
	"quoteguard/internal/invoice/handler/mocks"
	"quoteguard/internal/platform/middleware"
	id "quoteguard/pkg/domain"
	dErrors "quoteguard/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/invoice-mocks.go -package=mocks Service

type InvoiceHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *InvoiceHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestInvoiceHandlerSuite(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerSuite))
}

// stubValidator accepts any bearer token as owner 1.
type stubValidator struct{}

func (stubValidator) ValidateToken(string) (*middleware.OwnerClaims, error) {
	return &middleware.OwnerClaims{OwnerID: 1}, nil
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, stubValidator{}, logger).Register(r)
	return r, mockService
}

func sampleRecord(publicID id.PublicID) *invoice.Record {
	return &invoice.Record{
		PublicID:  publicID,
		OwnerID:   1,
		ClientID:  7,
		Number:    "INV-1-000001",
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Subtotal:  decimal.RequireFromString("100"),
		Tax:       decimal.RequireFromString("19"),
		Total:     decimal.RequireFromString("119"),
		Items: []invoice.LineItem{
			{Product: "Design sprint", Quantity: 2, UnitPrice: decimal.RequireFromString("50")},
		},
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Digest:    "0f3a",
		Status:    invoice.StatusActive,
	}
}

func (s *InvoiceHandlerSuite) TestCreateInvoice() {
	router, mockService := newTestRouter(s.T())
	publicID := id.NewPublicID()

	mockService.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, draft invoice.Draft) (id.PublicID, error) {
			assert.Equal(s.T(), id.OwnerID(1), draft.OwnerID)
			assert.Equal(s.T(), id.ClientID(7), draft.ClientID)
			assert.Equal(s.T(), "EUR", draft.Currency)
			assert.True(s.T(), draft.Total.Equal(decimal.RequireFromString("119.00")))
			require.Len(s.T(), draft.Items, 1)
			assert.Equal(s.T(), "Design sprint", draft.Items[0].Product)
			return publicID, nil
		})
	mockService.EXPECT().Get(gomock.Any(), id.OwnerID(1), publicID).
		Return(sampleRecord(publicID), nil)

	body := []byte(`{
		"client_id": 7,
		"issue_date": "2026-03-01",
		"due_date": "2026-03-31",
		"currency": "EUR",
		"subtotal": 100.00,
		"tax": "19.00",
		"total": 119.00,
		"items": [{"product": "Design sprint", "quantity": 2, "unit_price": 50.00}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), publicID.String(), resp["public_id"])
	assert.Equal(s.T(), "INV-1-000001", resp["number"])
	assert.Equal(s.T(), "119.00", resp["total"])
	assert.Equal(s.T(), "active", resp["status"])
}

func (s *InvoiceHandlerSuite) TestCreateInvoiceMalformedBody() {
	router, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *InvoiceHandlerSuite) TestCreateInvoiceBadDate() {
	router, _ := newTestRouter(s.T())

	body := []byte(`{"client_id": 7, "issue_date": "03/01/2026", "due_date": "2026-03-31", "currency": "EUR"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "invalid_input", resp["error"])
}

func (s *InvoiceHandlerSuite) TestCreateInvoiceMissingAmounts() {
	router, _ := newTestRouter(s.T())

	// Absent amounts must not default to 0.00 invoices.
	body := []byte(`{
		"client_id": 7,
		"issue_date": "2026-03-01",
		"due_date": "2026-03-31",
		"currency": "EUR",
		"items": [{"product": "Design sprint", "quantity": 2, "unit_price": "50.00"}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "invalid_input", resp["error"])
	assert.Contains(s.T(), resp["error_description"], "subtotal")
}

func (s *InvoiceHandlerSuite) TestCreateInvoiceDuplicateNumber() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(id.PublicID{}, dErrors.New(dErrors.CodeDuplicateNumber, "invoice number already exists for this owner"))

	body := []byte(`{"client_id": 7, "number": "2026-0042", "issue_date": "2026-03-01", "due_date": "2026-03-31", "currency": "EUR"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusConflict, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "duplicate_invoice_number", resp["error"])
}

func (s *InvoiceHandlerSuite) TestListInvoices() {
	router, mockService := newTestRouter(s.T())
	publicID := id.NewPublicID()

	mockService.EXPECT().List(gomock.Any(), id.OwnerID(1)).
		Return([]*invoice.Record{sampleRecord(publicID)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp struct {
		Invoices []map[string]any `json:"invoices"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Invoices, 1)
	assert.Equal(s.T(), publicID.String(), resp.Invoices[0]["public_id"])
}

func (s *InvoiceHandlerSuite) TestGetInvoiceMalformedIDIsNotFound() {
	router, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *InvoiceHandlerSuite) TestRevokeInvoice() {
	router, mockService := newTestRouter(s.T())
	publicID := id.NewPublicID()

	mockService.EXPECT().Revoke(gomock.Any(), publicID, id.OwnerID(1), "issued in error").
		Return(nil)

	body := []byte(`{"reason": "issued in error"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+publicID.String()+"/revoke", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}

func (s *InvoiceHandlerSuite) TestRevokeAlreadyRevoked() {
	router, mockService := newTestRouter(s.T())
	publicID := id.NewPublicID()

	mockService.EXPECT().Revoke(gomock.Any(), publicID, id.OwnerID(1), "again").
		Return(dErrors.New(dErrors.CodeAlreadyRevoked, "invoice is already revoked"))

	body := []byte(`{"reason": "again"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+publicID.String()+"/revoke", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusConflict, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "already_revoked", resp["error"])
}

func (s *InvoiceHandlerSuite) TestDeleteRejected() {
	router, _ := newTestRouter(s.T())
	publicID := id.NewPublicID()

	req := httptest.NewRequest(http.MethodDelete, "/api/invoices/"+publicID.String(), nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusMethodNotAllowed, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(s.T(), resp["error_description"], "revoke")
}

func (s *InvoiceHandlerSuite) TestMissingBearerToken() {
	router, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}
