package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// AuthHandler forwards interactive logins to the Gin API. Tokens issued here
// belong to the caller and are never written to the gateway's TokenStore.
type AuthHandler struct {
	api ports.GinAPI
}

func NewAuthHandler(api ports.GinAPI) *AuthHandler {
	return &AuthHandler{api: api}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required_without=Username"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

func (r loginRequest) credentials() domain.Credentials {
	id := r.Email
	if id == "" {
		id = r.Username
	}
	return domain.Credentials{Identifier: id, Password: r.Password}
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	Token *domain.TokenPair   `json:"token,omitempty"`
	User  *domain.UserProfile `json:"user,omitempty"`
}

// Login authenticates against the Gin API and returns its token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.api.Login(c.Request().Context(), req.credentials())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: &res.Tokens, User: res.User})
}

// Register creates an account on the Gin API.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	creds := domain.Credentials{Identifier: req.Email, Password: req.Password, Name: req.Name}
	user, err := h.api.Register(c.Request().Context(), creds)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Refresh exchanges a refresh token for a new pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.api.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: &pair})
}
