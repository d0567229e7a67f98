package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/khatapp/udhaar/internal/model"
	xhttp "github.com/khatapp/udhaar/pkg/http"
)

type AccountService interface {
	RegisterOwner(ctx context.Context, p model.RegisterOwnerRequest) (*model.Owner, error)
	Login(ctx context.Context, role model.Role, phone, pin string) (string, model.Identity, error)
	SetPin(ctx context.Context, ident model.Identity, newPin string) error
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	svc  AccountService
	auth *Auth
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler) {
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)
	e.PUT("/pin", h.auth.Require(h.SetPin))
}

func NewAuthHandler(svc AccountService, auth *Auth) *AuthHandler {
	return &AuthHandler{
		svc:  svc,
		auth: auth,
	}
}

type registerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Pin   string `json:"pin"`
}

type registerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type loginRequest struct {
	Role  string `json:"role"`
	Phone string `json:"phone"`
	Pin   string `json:"pin"`
}

type loginResponse struct {
	Token string     `json:"token"`
	ID    string     `json:"id"`
	Role  model.Role `json:"role"`
	Name  string     `json:"name"`
}

type setPinRequest struct {
	Pin string `json:"pin"`
}

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req registerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	owner, err := h.svc.RegisterOwner(ctx, model.RegisterOwnerRequest{
		Name:  req.Name,
		Phone: req.Phone,
		Pin:   req.Pin,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, registerResponse{
		ID:    owner.ID,
		Name:  owner.Name,
		Phone: owner.Phone,
	})
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	token, ident, err := h.svc.Login(ctx, model.Role(req.Role), req.Phone, req.Pin)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, loginResponse{
		Token: token,
		ID:    ident.ID,
		Role:  ident.Role,
		Name:  ident.Name,
	})
}

func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx) {
	// unknown or absent tokens log out fine, the end state is the same
	if err := h.svc.Logout(ctx, sessionToken(ctx)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) SetPin(ctx *xhttp.RequestCtx, ident model.Identity) {
	var req setPinRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.svc.SetPin(ctx, ident, req.Pin); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "pin_updated"})
}
