package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionHandlerTestSuite struct {
	suite.Suite
	router                 *gin.Engine
	mockTransactionService *MockTransactionService
	mockIdempotencyStore   *MockIdempotencyStore
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	suite.mockIdempotencyStore = new(MockIdempotencyStore)
	router, mocks := newTestRouter(handlers.Infrastructure{Idempotency: suite.mockIdempotencyStore})
	suite.router = router
	suite.mockTransactionService = mocks.transaction
}

func ownerInvestment() map[string]interface{} {
	return map[string]interface{}{
		"reference":   "TXN-001",
		"description": "Owner investment",
		"date":        "2024-01-15",
		"entries": []map[string]interface{}{
			{"debitAccountCode": "1000", "amount": "50000.00"},
			{"creditAccountCode": "3000", "amount": "50000.00"},
		},
	}
}

func pendingTransaction(reference string) *domain.Transaction {
	id := uuid.NewString()
	now := time.Now().UTC()
	return &domain.Transaction{
		TransactionID: id,
		Reference:     reference,
		Description:   "Owner investment",
		Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("50000"),
		Status:        domain.Pending,
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		Entries: []domain.JournalEntry{
			{EntryID: uuid.NewString(), TransactionID: id, DebitAccountID: "cash", Amount: decimal.RequireFromString("50000"),
				DebitAccount: &domain.AccountSummary{AccountID: "cash", Code: "1000", Name: "Cash", AccountType: domain.Asset}},
			{EntryID: uuid.NewString(), TransactionID: id, CreditAccountID: "equity", Amount: decimal.RequireFromString("50000"),
				CreditAccount: &domain.AccountSummary{AccountID: "equity", Code: "3000", Name: "Owner's Equity", AccountType: domain.Equity}},
		},
	}
}

func withReference(ref string) interface{} {
	return mock.MatchedBy(func(req dto.CreateTransactionRequest) bool { return req.Reference == ref })
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_Success() {
	txn := pendingTransaction("TXN-001")
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
		return req.Reference == "TXN-001" &&
			len(req.Entries) == 2 &&
			req.Entries[0].DebitAccountCode == "1000" &&
			req.Entries[1].Amount.Equal(decimal.RequireFromString("50000"))
	})).Return(txn, nil).Once()

	w := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(ownerInvestment()))

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(txn.TransactionID, body.TransactionID)
	suite.Equal(domain.Pending, body.Status)
	suite.Len(body.Entries, 2)
	suite.Equal("1000", body.Entries[0].DebitAccount.Code)
	suite.Nil(body.Entries[0].CreditAccount)
	suite.mockTransactionService.AssertExpectations(suite.T())
	suite.mockIdempotencyStore.AssertNotCalled(suite.T(), "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_RejectsMalformedEntries() {
	cases := map[string][]map[string]interface{}{
		"zero amount": {
			{"debitAccountCode": "1000", "amount": "0"},
			{"creditAccountCode": "3000", "amount": "0"},
		},
		"negative amount": {
			{"debitAccountCode": "1000", "amount": "-10"},
			{"creditAccountCode": "3000", "amount": "-10"},
		},
		"both sides": {
			{"debitAccountCode": "1000", "creditAccountCode": "3000", "amount": "10"},
		},
		"no side": {
			{"amount": "10"},
		},
	}
	for name, entries := range cases {
		payload := ownerInvestment()
		payload["entries"] = entries
		w := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(payload))
		suite.Equal(http.StatusBadRequest, w.Code, name)
	}

	payload := ownerInvestment()
	payload["entries"] = []map[string]interface{}{}
	w := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(payload))
	suite.Equal(http.StatusBadRequest, w.Code, "empty entries")

	suite.mockTransactionService.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_ServiceErrors() {
	cases := []struct {
		reference string
		err       error
		status    int
	}{
		{"TXN-UNBAL", fmt.Errorf("%w: %w: debits 100 credits 90", apperrors.ErrValidation, apperrors.ErrUnbalanced), http.StatusBadRequest},
		{"TXN-UNKNOWN", fmt.Errorf("%w: 9999", apperrors.ErrUnknownAccount), http.StatusBadRequest},
		{"TXN-DUP", fmt.Errorf("%w: reference TXN-DUP", apperrors.ErrDuplicate), http.StatusConflict},
		{"TXN-BOOM", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		suite.mockTransactionService.On("CreateTransaction", mock.Anything, withReference(tc.reference)).Return(nil, tc.err).Once()

		payload := ownerInvestment()
		payload["reference"] = tc.reference
		w := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(payload))

		suite.Equal(tc.status, w.Code, tc.reference)
	}
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_InternalErrorHidesCause() {
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(nil, errors.New("pq: password authentication failed")).Once()

	w := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(ownerInvestment()))

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "password")
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_RepeatedIdempotencyKey() {
	const key = "client-key-1"
	scoped := "idempotency:POST:/api/v1/transactions:" + key
	txn := pendingTransaction("TXN-001")
	suite.mockIdempotencyStore.On("Reserve", mock.Anything, scoped, time.Hour).Return(true, nil).Once()
	suite.mockIdempotencyStore.On("Reserve", mock.Anything, scoped, time.Hour).Return(false, nil).Once()
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.Anything).Return(txn, nil).Once()

	first := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(ownerInvestment()), middleware.IdempotencyHeader, key)
	second := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(ownerInvestment()), middleware.IdempotencyHeader, key)

	suite.Equal(http.StatusCreated, first.Code)
	suite.Equal(http.StatusConflict, second.Code)
	suite.mockTransactionService.AssertNumberOfCalls(suite.T(), "CreateTransaction", 1)
	suite.mockIdempotencyStore.AssertNotCalled(suite.T(), "Release", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_FailedWriteReleasesKey() {
	const key = "client-key-2"
	scoped := "idempotency:POST:/api/v1/transactions:" + key
	suite.mockIdempotencyStore.On("Reserve", mock.Anything, scoped, time.Hour).Return(true, nil).Once()
	suite.mockIdempotencyStore.On("Release", mock.Anything, scoped).Return(nil).Once()
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: 9999", apperrors.ErrUnknownAccount)).Once()

	w := serve(suite.router, http.MethodPost, "/api/v1/transactions", jsonBody(ownerInvestment()), middleware.IdempotencyHeader, key)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockIdempotencyStore.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_Paginated() {
	token := "opaque"
	resp := &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses([]domain.Transaction{*pendingTransaction("TXN-002")}),
		NextToken:    &token,
	}
	suite.mockTransactionService.On("ListTransactions", mock.Anything, mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
		return p.Limit == 1 && p.NextToken == nil
	})).Return(resp, nil).Once()

	w := serve(suite.router, http.MethodGet, "/api/v1/transactions?limit=1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListTransactionsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Transactions, 1)
	suite.Require().NotNil(body.NextToken)
	suite.Equal(token, *body.NextToken)
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_InvalidLimit() {
	w := serve(suite.router, http.MethodGet, "/api/v1/transactions?limit=501", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = serve(suite.router, http.MethodGet, "/api/v1/transactions?limit=abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockTransactionService.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	id := uuid.NewString()
	suite.mockTransactionService.On("GetTransaction", mock.Anything, id).Return(nil, apperrors.ErrNotFound).Once()

	w := serve(suite.router, http.MethodGet, "/api/v1/transactions/"+id, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestPostTransaction() {
	txn := pendingTransaction("TXN-001")
	txn.Status = domain.Posted
	suite.mockTransactionService.On("PostTransaction", mock.Anything, txn.TransactionID).Return(txn, nil).Once()

	w := serve(suite.router, http.MethodPost, "/api/v1/transactions/"+txn.TransactionID+"/post", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.Posted, body.Status)
}

func (suite *TransactionHandlerTestSuite) TestCancelTransaction_InvalidTransition() {
	id := uuid.NewString()
	suite.mockTransactionService.On("CancelTransaction", mock.Anything, id).
		Return(nil, fmt.Errorf("%w: POSTED to CANCELLED", apperrors.ErrInvalidTransition)).Once()

	w := serve(suite.router, http.MethodPost, "/api/v1/transactions/"+id+"/cancel", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "invalid status transition")
}

func TestTransactionHandler(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
