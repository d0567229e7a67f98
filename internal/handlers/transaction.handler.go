package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/khatapp/udhaar/internal/model"
	xhttp "github.com/khatapp/udhaar/pkg/http"
)

type LedgerService interface {
	Record(ctx context.Context, ident model.Identity, p model.TransactionCreateRequest) (*model.Transaction, error)
	List(ctx context.Context, ident model.Identity, f model.TransactionFilter) ([]*model.Transaction, int64, float64, error)
}

type TransactionHandler struct {
	svc  LedgerService
	auth *Auth
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler) {
	e.POST("/transactions", h.auth.Require(h.Record))
	e.GET("/transactions/{customerID}", h.auth.Require(h.List))
}

func NewTransactionHandler(svc LedgerService, auth *Auth) *TransactionHandler {
	return &TransactionHandler{
		svc:  svc,
		auth: auth,
	}
}

type recordTransactionRequest struct {
	CustomerID string  `json:"customer_id"`
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
}

type transactionListResponse struct {
	Items   []*model.Transaction `json:"items"`
	Total   int64                `json:"total"`
	Balance float64              `json:"balance"`
}

func (h *TransactionHandler) Record(ctx *xhttp.RequestCtx, ident model.Identity) {
	var req recordTransactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	txn, err := h.svc.Record(ctx, ident, model.TransactionCreateRequest{
		CustomerID: req.CustomerID,
		Type:       req.Type,
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, txn)
}

func (h *TransactionHandler) List(ctx *xhttp.RequestCtx, ident model.Identity) {
	f := model.TransactionFilter{
		CustomerID: pathParam(ctx, "customerID"),
		Limit:      queryInt(ctx, "limit"),
		Offset:     queryInt(ctx, "offset"),
	}
	if v := query(ctx, "owner_id"); v != "" {
		f.OwnerID = &v
	}
	// display default is most-recent-first
	if order := query(ctx, "order"); order == "" || strings.EqualFold(order, "desc") {
		f.Desc = true
	}

	items, total, balance, err := h.svc.List(ctx, ident, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, transactionListResponse{
		Items:   items,
		Total:   total,
		Balance: balance,
	})
}
