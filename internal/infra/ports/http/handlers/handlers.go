package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/soundroomhq/soundroom/internal/apperr"
)

// fail renders an error with the status its kind maps to. Internal details
// never reach the client.
func fail(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), map[string]string{"error": apperr.Detail(err)})
}
