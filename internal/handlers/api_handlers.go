package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.openly.dev/pointy"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/entities"
	"github.com/brokerx/crypto-brokerage-app/backend/internal/usecases"
)

var (
	_ TransactionLifecycle = (*usecases.TransactionServiceImpl)(nil)
	_ ReviewOrchestrator   = (*usecases.ReviewService)(nil)
	_ Reporting            = (*usecases.ReportingService)(nil)
)

type HTTPHandler struct {
	logger *slog.Logger

	lifecycle TransactionLifecycle
	review    ReviewOrchestrator
	reporting Reporting
	deposits  DepositService
}

func NewHTTPHandler(
	logger *slog.Logger,
	lifecycle TransactionLifecycle,
	review ReviewOrchestrator,
	reporting Reporting,
	deposits DepositService,
) *HTTPHandler {
	return &HTTPHandler{
		logger:    logger,
		lifecycle: lifecycle,
		review:    review,
		reporting: reporting,
		deposits:  deposits,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	// User-facing endpoints.
	router.HandleFunc("/transactions/buy", h.SubmitBuy).Methods("POST")
	router.HandleFunc("/transactions/withdraw", h.SubmitWithdrawal).Methods("POST")
	router.HandleFunc("/holdings/user", h.GetUserHoldings).Methods("GET")
	router.HandleFunc("/deposits/address", h.GetDepositAddress).Methods("GET")

	// Admin review endpoints.
	router.HandleFunc("/admin/transactions/{transactionId}/verify", h.VerifyTransaction).Methods("POST")
	router.HandleFunc("/admin/transactions/bulk-verify", h.BulkVerify).Methods("POST")
	router.HandleFunc("/admin/transactions", h.ListTransactions).Methods("GET")
	router.HandleFunc("/admin/dashboard", h.GetDashboard).Methods("GET")
}

// identity is what the external auth layer attaches to each request. The
// core trusts it and does not re-authenticate.
type identity struct {
	UserID  int64
	IsAdmin bool
}

func identityFrom(r *http.Request) (identity, error) {
	userIDHeader := r.Header.Get("X-User-Id")
	if userIDHeader == "" {
		return identity{}, errors.New("missing X-User-Id header")
	}

	userID, err := strconv.ParseInt(userIDHeader, 10, 64)
	if err != nil {
		return identity{}, errors.New("invalid X-User-Id header")
	}

	return identity{
		UserID:  userID,
		IsAdmin: r.Header.Get("X-Admin") == "true",
	}, nil
}

type submitBuyRequest struct {
	CoinID          uuid.UUID `json:"coin_id"`
	Amount          string    `json:"amount"`
	TransactionHash string    `json:"transaction_hash"`
	SenderAddress   string    `json:"sender_address"`
	PaymentMethod   string    `json:"payment_method"`
}

func (h *HTTPHandler) SubmitBuy(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req submitBuyRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount format", http.StatusBadRequest)
		return
	}

	txn, err := h.lifecycle.SubmitBuy(r.Context(), caller.UserID, req.CoinID, amount, ports.BuyProof{
		TransactionHash: req.TransactionHash,
		SenderAddress:   req.SenderAddress,
		PaymentMethod:   entities.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.respondError(w, err, "submit buy")
		return
	}

	h.writeJSON(w, http.StatusCreated, txn)
}

type submitWithdrawalRequest struct {
	CoinID            uuid.UUID `json:"coin_id"`
	Amount            string    `json:"amount"`
	WithdrawalAddress string    `json:"withdrawal_address"`
}

func (h *HTTPHandler) SubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req submitWithdrawalRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount format", http.StatusBadRequest)
		return
	}

	txn, err := h.lifecycle.SubmitWithdrawal(r.Context(), caller.UserID, req.CoinID, amount, req.WithdrawalAddress)
	if err != nil {
		h.respondError(w, err, "submit withdrawal")
		return
	}

	h.writeJSON(w, http.StatusCreated, txn)
}

type verifyRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (h *HTTPHandler) VerifyTransaction(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if !caller.IsAdmin {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	transactionID, err := uuid.Parse(vars["transactionId"])
	if err != nil {
		http.Error(w, "Invalid transaction ID format", http.StatusBadRequest)
		return
	}

	var req verifyRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := h.lifecycle.Verify(r.Context(), transactionID, ports.Decision(req.Decision), req.Note)
	if err != nil {
		h.respondError(w, err, "verify transaction")
		return
	}

	h.writeJSON(w, http.StatusOK, txn)
}

type bulkVerifyRequest struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
	Decision       string      `json:"decision"`
	Note           string      `json:"note"`
}

func (h *HTTPHandler) BulkVerify(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if !caller.IsAdmin {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	var req bulkVerifyRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.review.BulkVerify(r.Context(), req.TransactionIDs, ports.Decision(req.Decision), req.Note)
	if err != nil {
		h.respondError(w, err, "bulk verify")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if !caller.IsAdmin {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	filter := ports.TransactionFilter{}

	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		filter.Status = pointy.Pointer(entities.TransactionStatus(statusParam))
	}
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		filter.Page, err = strconv.Atoi(pageParam)
		if err != nil {
			http.Error(w, "Invalid page format", http.StatusBadRequest)
			return
		}
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		filter.Limit, err = strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "Invalid limit format", http.StatusBadRequest)
			return
		}
	}

	page, err := h.reporting.ListTransactions(r.Context(), filter)
	if err != nil {
		h.respondError(w, err, "list transactions")
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if !caller.IsAdmin {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	stats, err := h.reporting.Dashboard(r.Context())
	if err != nil {
		h.respondError(w, err, "dashboard")
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) GetUserHoldings(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	holdings, err := h.reporting.UserHoldings(r.Context(), caller.UserID)
	if err != nil {
		h.respondError(w, err, "user holdings")
		return
	}

	h.writeJSON(w, http.StatusOK, holdings)
}

func (h *HTTPHandler) GetDepositAddress(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFrom(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	method := r.URL.Query().Get("method")
	if method == "" {
		http.Error(w, "Missing required parameter: method", http.StatusBadRequest)
		return
	}

	address, err := h.deposits.AddressFor(entities.PaymentMethod(method))
	if err != nil {
		h.respondError(w, err, "deposit address")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"method":  method,
		"address": address,
	})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses. Nothing is
// swallowed; business-rule rejections carry their message to the caller.
func (h *HTTPHandler) respondError(w http.ResponseWriter, err error, op string) {
	var (
		validation   *ports.ValidationError
		notFound     *ports.NotFoundError
		insufficient *ports.InsufficientBalanceError
		locked       *ports.LockedAssetError
		finalized    *ports.AlreadyFinalizedError
	)

	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &insufficient), errors.As(err, &locked):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &finalized):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("Request failed", "op", op, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
