package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HelloHandler serves the sample endpoints used to check the security setup.
type HelloHandler struct{}

func NewHelloHandler() *HelloHandler {
	return &HelloHandler{}
}

// Insecure is reachable without credentials.
//
// @Summary      Public greeting
// @Tags         hello-world
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /hello-world/insecure [get]
func (h *HelloHandler) Insecure(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Hello World Insecure"})
}

// Secure requires the ADMIN role.
//
// @Summary      Admin greeting
// @Tags         hello-world
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Router       /hello-world/secure [get]
func (h *HelloHandler) Secure(c echo.Context) error {
	c.Response().Header().Set("X-Authenticated-User", currentUsername(c))
	return c.JSON(http.StatusOK, messageResponse{Message: "Hello World with Security"})
}
