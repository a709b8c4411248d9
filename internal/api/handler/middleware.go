package handler

import (
	"context"
	"errors"
	"strings"

	"corepulse/internal/interfaces"
	"corepulse/internal/models"
	"corepulse/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

// Authn parses the bearer token when present. It does NOT terminate
// unauthenticated requests; handlers decide through ResolveValidUser.
func Authn(verifier interface {
	Validate(token string) (*models.UserFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			user, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to leak details
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// AuthUserID returns the bearer identity when one was resolved, so
// per-user budgets can key on the account rather than the address.
func AuthUserID(c echo.Context) string {
	if user, ok := c.Request().Context().Value(ctxKeyAuthUser).(*models.UserFromAuth); ok {
		return user.ID
	}
	return ""
}

func ResolveValidUser(ctx context.Context, container *do.Injector) (*models.User, error) {
	userAuth, ok := ctx.Value(ctxKeyAuthUser).(*models.UserFromAuth)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return serviceUser.FindUserByID(ctx, userAuth.ID)
}

// RateLimit guards a route group with a per-key redis_rate budget.
func RateLimit(container *do.Injector, perMinute int, keyFn func(c echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter, err := do.InvokeNamed[interfaces.Limiter](container, "limiter")
			if err != nil {
				return next(c)
			}

			err = limiter.Allow(c.Request().Context(), keyFn(c), redis_rate.PerMinute(perMinute))
			if err != nil {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("too many requests"), errorx.Invalid), -1)
				return nil
			}

			return next(c)
		}
	}
}
