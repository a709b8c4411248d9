package handler

import (
	"errors"
	"strconv"
	"strings"

	"corepulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupCrew struct {
	container *do.Injector
}

type createCrewPayload struct {
	Name string `json:"name"`
}

func (gr *groupCrew) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	serviceCrew, err := do.Invoke[*services.ServiceCrew](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	crews, err := serviceCrew.ListCrews(ctx, page, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, crews, nil)
}

func (gr *groupCrew) Show(c echo.Context) error {
	ctx := c.Request().Context()

	serviceCrew, err := do.Invoke[*services.ServiceCrew](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	crew, err := serviceCrew.GetCrew(ctx, c.Param("crew"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	members, err := serviceCrew.ListMembers(ctx, crew.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"crew":    crew,
		"members": members,
	}, nil)
}

func (gr *groupCrew) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload createCrewPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	name := strings.TrimSpace(payload.Name)
	if len(name) < 3 || len(name) > 32 {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("crew name must be 3-32 characters"), errorx.Validation))
	}

	serviceCrew, err := do.Invoke[*services.ServiceCrew](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	crew, err := serviceCrew.CreateCrew(ctx, user, name)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, crew, nil)
}

func (gr *groupCrew) Join(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCrew, err := do.Invoke[*services.ServiceCrew](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	crew, err := serviceCrew.JoinCrew(ctx, user, c.Param("crew"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, crew, nil)
}

func (gr *groupCrew) Leave(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCrew, err := do.Invoke[*services.ServiceCrew](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceCrew.LeaveCrew(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}
