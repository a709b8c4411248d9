package handler

import (
	"corepulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupChain struct {
	container *do.Injector
}

func (gr *groupChain) Show(c echo.Context) error {
	ctx := c.Request().Context()

	serviceChain, err := do.Invoke[*services.ServiceChain](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	tx, err := serviceChain.GetTransaction(ctx, c.Param("hash"))
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
	}

	return httpx.RestAbort(c, tx, nil)
}
