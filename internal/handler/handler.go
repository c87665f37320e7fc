package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"todoapp/internal/errors"
)

// respondError maps a service error to its HTTP status and body. Server
// faults are logged; their detail never reaches the client.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid request body: %s", errors.ErrValidation, bindDetail(err))
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}

func bindDetail(err error) string {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}

// validationError turns the first failed validator rule into a readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	fe := verrs[0]
	var detail string
	switch fe.Tag() {
	case "required":
		detail = fe.Field() + " is required"
	case "email":
		detail = fe.Field() + " must be a valid email address"
	case "max":
		detail = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		detail = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %s", errors.ErrValidation, detail)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errors.ErrValidation, name)
	}
	return uint(id), nil
}
