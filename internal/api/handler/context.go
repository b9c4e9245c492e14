package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// queryInt reads an optional positive integer query parameter, returning def
// when it is absent. A non-numeric value is rejected with 400.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}

// pageRequest builds a normalized domain.PageRequest from ?page=&size=.
func pageRequest(c echo.Context) (domain.PageRequest, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := queryInt(c, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.PageRequest{Page: page, Size: size}.Normalize(), nil
}

// currentUsername returns the username of the request's principal, or
// "anonymous".
func currentUsername(c echo.Context) string {
	if p, ok := domain.CurrentPrincipal(c.Request().Context()); ok {
		return p.Username
	}
	return "anonymous"
}
