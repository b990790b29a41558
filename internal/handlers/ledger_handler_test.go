package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLedgerService struct {
	transferFn func(ctx context.Context, traceID string, userID uuid.UUID, req views.TransferRequest) (decimal.Decimal, error)
	depositFn  func(ctx context.Context, traceID string, userID uuid.UUID, req views.DepositRequest) (decimal.Decimal, error)
	payBillFn  func(ctx context.Context, traceID string, userID uuid.UUID, req views.PayBillRequest) (decimal.Decimal, error)
}

func (f *fakeLedgerService) Transfer(ctx context.Context, traceID string, userID uuid.UUID, req views.TransferRequest) (decimal.Decimal, error) {
	return f.transferFn(ctx, traceID, userID, req)
}

func (f *fakeLedgerService) Deposit(ctx context.Context, traceID string, userID uuid.UUID, req views.DepositRequest) (decimal.Decimal, error) {
	return f.depositFn(ctx, traceID, userID, req)
}

func (f *fakeLedgerService) PayBill(ctx context.Context, traceID string, userID uuid.UUID, req views.PayBillRequest) (decimal.Decimal, error) {
	return f.payBillFn(ctx, traceID, userID, req)
}

// newLedgerRouter builds a router with the trace id and user id already in
// context, standing in for the middleware chain.
func newLedgerRouter(svc *fakeLedgerService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(pkg.TraceId, "test-trace")
		c.Set(pkg.UserId, userID.String())
	})
	NewLedgerHandler(zap.NewNop(), svc).RegisterRoutes(r.Group(""))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTransferEndpointReturnsBalance(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New().String()
	svc := &fakeLedgerService{
		transferFn: func(ctx context.Context, traceID string, gotUser uuid.UUID, req views.TransferRequest) (decimal.Decimal, error) {
			assert.Equal(t, "test-trace", traceID)
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, accountID, req.FromAccountID)
			return decimal.RequireFromString("750.00"), nil
		},
	}
	r := newLedgerRouter(svc, userID)

	w := postJSON(t, r, "/transfer", gin.H{
		"from_account_id": accountID,
		"amount":          "250.00",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp views.TransferResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("750.00")))
}

func TestTransferEndpointRejectsMalformedBody(t *testing.T) {
	svc := &fakeLedgerService{}
	r := newLedgerRouter(svc, uuid.New())

	// from_account_id is required by binding; the service is never reached.
	w := postJSON(t, r, "/transfer", gin.H{"amount": "10.00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferEndpointMapsServiceErrors(t *testing.T) {
	cases := []struct {
		code   pkg.ErrorCode
		status int
	}{
		{pkg.ErrInvalidAmountCode, http.StatusBadRequest},
		{pkg.ErrInsufficientFundsCode, http.StatusUnprocessableEntity},
		{pkg.ErrRecordNotFoundCode, http.StatusNotFound},
		{pkg.ErrBusyCode, http.StatusServiceUnavailable},
		{pkg.ErrAccountFrozenCode, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		svc := &fakeLedgerService{
			transferFn: func(ctx context.Context, traceID string, userID uuid.UUID, req views.TransferRequest) (decimal.Decimal, error) {
				return decimal.Zero, pkg.NewAppError(tc.code, tc.code.Message, nil)
			},
		}
		r := newLedgerRouter(svc, uuid.New())

		w := postJSON(t, r, "/transfer", gin.H{
			"from_account_id": uuid.New().String(),
			"amount":          "10.00",
		})
		require.Equal(t, tc.status, w.Code, tc.code.Code)

		var resp pkg.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.code.Code, resp.Code)
		assert.False(t, resp.Success)
	}
}

func TestDepositEndpoint(t *testing.T) {
	userID := uuid.New()
	svc := &fakeLedgerService{
		depositFn: func(ctx context.Context, traceID string, gotUser uuid.UUID, req views.DepositRequest) (decimal.Decimal, error) {
			assert.Equal(t, "savings", req.AccountType)
			return decimal.RequireFromString("75.50"), nil
		},
	}
	r := newLedgerRouter(svc, userID)

	w := postJSON(t, r, "/deposit", gin.H{
		"account_id": "savings",
		"amount":     "25.50",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp views.DepositResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.NewBalance.Equal(decimal.RequireFromString("75.50")))
}

func TestPayBillEndpoint(t *testing.T) {
	userID := uuid.New()
	svc := &fakeLedgerService{
		payBillFn: func(ctx context.Context, traceID string, gotUser uuid.UUID, req views.PayBillRequest) (decimal.Decimal, error) {
			return decimal.Zero, pkg.NewAppError(pkg.ErrBillAlreadyPaidCode, "bill is already paid", nil)
		},
	}
	r := newLedgerRouter(svc, userID)

	w := postJSON(t, r, "/bills/pay", gin.H{
		"bill_id":    uuid.New().String(),
		"account_id": uuid.New().String(),
		"amount":     "14500.00",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
