package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/services"
	xhttp "github.com/khatapp/udhaar/pkg/http"
	"github.com/khatapp/udhaar/pkg/logger"
)

const sessionHeader = "X-Session-Token"

// SessionReader resolves an opaque session token to the identity it was
// issued for.
type SessionReader interface {
	Get(token string) (model.Identity, error)
}

// Auth gates handlers behind a valid session. The resolved identity is
// passed to the wrapped handler, so every route states its caller
// explicitly instead of digging it out of ambient state.
type Auth struct {
	sessions SessionReader
}

func NewAuth(sessions SessionReader) *Auth {
	return &Auth{sessions: sessions}
}

func (a *Auth) Require(next func(ctx *xhttp.RequestCtx, ident model.Identity)) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		token := sessionToken(ctx)
		if token == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "missing session token")
			return
		}
		ident, err := a.sessions.Get(token)
		if err != nil {
			writeError(ctx, xhttp.StatusUnauthorized, "invalid or expired session")
			return
		}
		next(ctx, ident)
	}
}

// sessionToken accepts the dedicated header or a bearer Authorization.
func sessionToken(ctx *xhttp.RequestCtx) string {
	if v := string(ctx.Request.Header.Peek(sessionHeader)); v != "" {
		return v
	}
	auth := string(ctx.Request.Header.Peek("Authorization"))
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode response", "path", string(ctx.Path()), "error", err)
		status = xhttp.StatusInternalServerError
		b = []byte(`{"error":"internal error"}`)
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Unclassified errors become an opaque 500; their detail goes to the log,
// not the client.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	status := statusFor(err)
	if status == xhttp.StatusInternalServerError {
		logger.Error("unhandled service error", "path", string(ctx.Path()), "error", err)
		writeError(ctx, status, "internal error")
		return
	}
	writeError(ctx, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return xhttp.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		return xhttp.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrPinNotSet):
		return xhttp.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return xhttp.StatusNotFound
	case errors.Is(err, services.ErrAlreadyLinked), errors.Is(err, services.ErrPhoneTaken):
		return xhttp.StatusConflict
	}
	return xhttp.StatusInternalServerError
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt(ctx *xhttp.RequestCtx, key string) int {
	if v := query(ctx, key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}

func pathParamInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	return strconv.ParseInt(pathParam(ctx, name), 10, 64)
}
