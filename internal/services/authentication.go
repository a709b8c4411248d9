package services

import (
	"context"
	"errors"
	"time"

	"corepulse/internal/datastore/redis_store"
	"corepulse/internal/models"
	"corepulse/internal/pkg"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

type CustomClaims struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret  string
	redisDB redis.UniversalClient
}

func NewAuthentication(container *do.Injector, secret string) (*Authentication, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	return &Authentication{secret, redisDB}, nil
}

// IssueNonce creates the sign-in challenge the wallet must echo back.
func (authentication *Authentication) IssueNonce(ctx context.Context, walletAddress string) (string, error) {
	nonce := pkg.GenNonce()
	err := redis_store.SetWalletNonce(ctx, authentication.redisDB, walletAddress, nonce, NONCE_TTL)
	if err != nil {
		return "", err
	}

	return nonce, nil
}

// ConsumeNonce validates and burns the challenge. Signature verification
// lives at the wallet edge; the backend only checks nonce possession.
func (authentication *Authentication) ConsumeNonce(ctx context.Context, walletAddress, nonce string) error {
	stored, err := redis_store.GetWalletNonce(ctx, authentication.redisDB, walletAddress)
	if err != nil || stored == "" || stored != nonce {
		return ErrInvalidNonce
	}

	return redis_store.DeleteWalletNonce(ctx, authentication.redisDB, walletAddress)
}

func (authentication *Authentication) CreateToken(user *models.UserFromAuth) (string, error) {
	claims := CustomClaims{
		ID:            user.ID,
		WalletAddress: user.WalletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.UserFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return []byte(authentication.secret), nil
	}
	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return &models.UserFromAuth{
		ID:            claims.ID,
		WalletAddress: claims.WalletAddress,
	}, nil
}
