package auth

import (
	stderrors "errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"todoapp/internal/errors"
	"todoapp/internal/model"
)

const (
	userContextKey  = "user"
	resolveErrorKey = "auth.resolve_error"
)

// FailureRecorder counts rejected requests by reason.
type FailureRecorder interface {
	AuthFailure(reason string)
}

// Middleware resolves the bearer token on every request and stores the user
// in the context. Any authentication failure yields the same 401 body; only
// a store fault becomes a 500. recorder may be nil.
func Middleware(resolver *Resolver, recorder FailureRecorder) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  userContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			user, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				c.Set(resolveErrorKey, err)
				return nil, err
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// without a resolve error the header was absent or not a bearer token
			err = ErrTokenMissing
			if resolveErr, ok := c.Get(resolveErrorKey).(error); ok {
				err = resolveErr
			}
			if !stderrors.Is(err, errors.ErrUnauthorized) {
				c.Logger().Errorf("resolve identity: %v", err)
				httpErr := errors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			reason := FailureReason(err)
			if recorder != nil {
				recorder.AuthFailure(reason)
			}
			c.Logger().Warnf("auth rejected %s %s: %s", c.Request().Method, c.Path(), reason)

			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, errors.Unauthorized().ToErrorResponse())
		},
	})
}

// CurrentUser returns the user resolved by Middleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok && user != nil
}
