package handler

import (
	"io"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/api/middleware"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

const maxProxyBody = 1 << 20

// ProxyHandler forwards calls to the Gin API. Reads go out with the service
// session's token; writes only ever carry the caller's own bearer, so the Gin
// API authorizes them against the caller.
type ProxyHandler struct {
	api    ports.APICaller
	direct ports.BearerSender
}

// NewProxyHandler returns a ProxyHandler. A nil direct sender disables writes.
func NewProxyHandler(api ports.APICaller, direct ports.BearerSender) *ProxyHandler {
	return &ProxyHandler{api: api, direct: direct}
}

// Forward relays the request below /v1/proxy to the Gin API.
//
// @Summary      Authorized Gin API pass-through
// @Tags         proxy
// @Accept       json
// @Produce      json
// @Param        path  path      string  true  "Gin API path"
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  ErrorResponse
// @Failure      405   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /v1/proxy/{path} [get]
func (h *ProxyHandler) Forward(c echo.Context) error {
	method := c.Request().Method
	var token string
	if !isReadMethod(method) {
		if h.direct == nil {
			return echo.NewHTTPError(http.StatusMethodNotAllowed, "write methods are not proxied")
		}
		if token = middleware.BearerFrom(c); token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "write methods need the caller's own token")
		}
	}

	target := upstreamPath(c.Param("*"))
	if raw := c.QueryString(); raw != "" {
		target += "?" + raw
	}

	var body []byte
	if c.Request().Body != nil {
		data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxProxyBody+1))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if len(data) > maxProxyBody {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large")
		}
		if len(data) > 0 {
			body = data
		}
	}

	var payload any
	if body != nil {
		payload = body
	}
	var (
		res *ports.Response
		err error
	)
	if token != "" {
		res, err = h.direct.Send(c.Request().Context(), method, target, payload, token)
	} else {
		res, err = h.api.Call(c.Request().Context(), method, target, payload)
	}
	if err != nil {
		return err
	}

	contentType := res.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	if len(res.Body) == 0 {
		return c.NoContent(res.StatusCode)
	}
	return c.Blob(res.StatusCode, contentType, res.Body)
}

func isReadMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// upstreamPath cleans the wildcard so it cannot climb above the API root.
func upstreamPath(wildcard string) string {
	return path.Clean("/" + wildcard)
}
