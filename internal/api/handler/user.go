package handler

import (
	"errors"

	"corepulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupUser struct {
	container *do.Injector
}

var errMissingWallet = errors.New("missing wallet address")

type connectPayload struct {
	WalletAddress string  `json:"wallet_address"`
	Nonce         string  `json:"nonce"`
	ReferralCode  *string `json:"referral_code"`
}

// Nonce issues the sign-in challenge for a wallet.
func (gr *groupUser) Nonce(c echo.Context) error {
	ctx := c.Request().Context()

	walletAddress := c.QueryParam("wallet_address")
	if walletAddress == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errMissingWallet, errorx.Validation))
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	nonce, err := authentication.IssueNonce(ctx, walletAddress)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{"nonce": nonce}, nil)
}

// Connect burns the nonce, finds or creates the user and returns a JWT.
func (gr *groupUser) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	var payload connectPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	if payload.WalletAddress == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errMissingWallet, errorx.Validation))
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := authentication.ConsumeNonce(ctx, payload.WalletAddress, payload.Nonce); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Authn))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	user, err := serviceUser.ConnectWallet(ctx, payload.WalletAddress, payload.ReferralCode)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	token, err := authentication.CreateToken(user.ToUserFromAuth())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"token": token,
		"user":  user,
	}, nil)
}

func (gr *groupUser) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	me, err := serviceUser.GetMe(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, me, nil)
}

type referralPayload struct {
	Code string `json:"code"`
}

// RegisterReferral lets a user who connected without a code attach one.
func (gr *groupUser) RegisterReferral(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload referralPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	if payload.Code == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing referral code"), errorx.Validation))
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceReferral.RecordReferral(ctx, user.ID, payload.Code); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	summary, err := serviceReferral.GetSummary(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, summary, nil)
}

func (gr *groupUser) Referral(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	summary, err := serviceReferral.GetSummary(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, summary, nil)
}
