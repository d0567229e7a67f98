package handlers

import (
	"context"

	"github.com/fasthttp/router"
	gateway "github.com/khatapp/udhaar/internal/gateways"
	"github.com/khatapp/udhaar/internal/model"
	xhttp "github.com/khatapp/udhaar/pkg/http"
)

type LinkageService interface {
	AddCustomer(ctx context.Context, ident model.Identity, p model.AddCustomerRequest) (*model.LinkedCustomer, error)
	ListCustomers(ctx context.Context, ident model.Identity) ([]*model.LinkedCustomer, error)
	ToggleLink(ctx context.Context, ident model.Identity, linkID int64) (*model.OwnerCustomerLink, error)
	DeleteLink(ctx context.Context, ident model.Identity, linkID int64) error
	UpdatePhone(ctx context.Context, ident model.Identity, customerID string, newPhone string) error
}

type ReminderService interface {
	Send(ctx context.Context, ident model.Identity, customerID string) (*gateway.SendResponse, error)
}

type CustomerHandler struct {
	svc       LinkageService
	reminders ReminderService
	auth      *Auth
}

func RegisterCustomerRoutes(e *router.Group, h *CustomerHandler) {
	e.POST("/customers", h.auth.Require(h.AddCustomer))
	e.GET("/customers", h.auth.Require(h.ListCustomers))
	e.PUT("/customers/{id}/phone", h.auth.Require(h.UpdatePhone))
	e.POST("/customers/{id}/remind", h.auth.Require(h.SendReminder))
	e.POST("/links/{id}/toggle", h.auth.Require(h.ToggleLink))
	e.DELETE("/links/{id}", h.auth.Require(h.DeleteLink))
}

func NewCustomerHandler(svc LinkageService, reminders ReminderService, auth *Auth) *CustomerHandler {
	return &CustomerHandler{
		svc:       svc,
		reminders: reminders,
		auth:      auth,
	}
}

type addCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Pin   string `json:"pin"`
}

type linkedCustomerResponse struct {
	LinkID   int64   `json:"link_id"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	IsActive bool    `json:"is_active"`
	Balance  float64 `json:"balance"`
}

type customerListResponse struct {
	Items []linkedCustomerResponse `json:"items"`
}

type updatePhoneRequest struct {
	Phone string `json:"phone"`
}

func toLinkedCustomerResponse(lc *model.LinkedCustomer) linkedCustomerResponse {
	return linkedCustomerResponse{
		LinkID:   lc.LinkID,
		ID:       lc.Customer.ID,
		Name:     lc.Customer.Name,
		Phone:    lc.Customer.Phone,
		IsActive: lc.IsActive,
		Balance:  lc.Balance,
	}
}

func (h *CustomerHandler) AddCustomer(ctx *xhttp.RequestCtx, ident model.Identity) {
	var req addCustomerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	lc, err := h.svc.AddCustomer(ctx, ident, model.AddCustomerRequest{
		Name:  req.Name,
		Phone: req.Phone,
		Pin:   req.Pin,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, toLinkedCustomerResponse(lc))
}

func (h *CustomerHandler) ListCustomers(ctx *xhttp.RequestCtx, ident model.Identity) {
	customers, err := h.svc.ListCustomers(ctx, ident)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	items := make([]linkedCustomerResponse, 0, len(customers))
	for _, lc := range customers {
		items = append(items, toLinkedCustomerResponse(lc))
	}
	writeJSON(ctx, xhttp.StatusOK, customerListResponse{Items: items})
}

func (h *CustomerHandler) UpdatePhone(ctx *xhttp.RequestCtx, ident model.Identity) {
	var req updatePhoneRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.svc.UpdatePhone(ctx, ident, pathParam(ctx, "id"), req.Phone); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "phone_updated"})
}

func (h *CustomerHandler) ToggleLink(ctx *xhttp.RequestCtx, ident model.Identity) {
	linkID, err := pathParamInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "link id must be an integer")
		return
	}
	link, err := h.svc.ToggleLink(ctx, ident, linkID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"link_id":   link.ID,
		"is_active": link.IsActive,
	})
}

func (h *CustomerHandler) DeleteLink(ctx *xhttp.RequestCtx, ident model.Identity) {
	linkID, err := pathParamInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "link id must be an integer")
		return
	}
	if err := h.svc.DeleteLink(ctx, ident, linkID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CustomerHandler) SendReminder(ctx *xhttp.RequestCtx, ident model.Identity) {
	resp, err := h.reminders.Send(ctx, ident, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"status":     resp.Status,
		"message_id": resp.MessageID,
	})
}
