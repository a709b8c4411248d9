package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"corepulse/internal/models"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/google/uuid"
	"github.com/samber/do"
)

// ChainStore persists transaction lifecycles; the Postgres-backed
// implementation lives in the datastore package and tests use an
// in-memory one.
type ChainStore interface {
	Insert(ctx context.Context, tx *models.ChainTransaction) error
	UpdateStatus(ctx context.Context, hash string, status models.TxStatus, confirmedAt *time.Time) error
	Find(ctx context.Context, hash string) (*models.ChainTransaction, error)
}

const (
	confirmDelayMin = 2 * time.Second
	confirmDelayMax = 5 * time.Second
)

// ServiceChain simulates the settlement chain: submissions confirm after
// a short random delay. When CHAIN_GATEWAY_URL is set, submissions are
// also mirrored to the external gateway.
type ServiceChain struct {
	container  *do.Injector
	store      ChainStore
	gateway    *httpclient.Client
	gatewayURL string
}

func NewServiceChain(container *do.Injector) (*ServiceChain, error) {
	store, err := do.Invoke[ChainStore](container)
	if err != nil {
		return nil, err
	}

	var gateway *httpclient.Client
	gatewayURL := os.Getenv("CHAIN_GATEWAY_URL")
	if gatewayURL != "" {
		gateway = httpclient.NewClient(
			httpclient.WithHTTPTimeout(10*time.Second),
			httpclient.WithRetryCount(3),
		)
	}

	return &ServiceChain{container, store, gateway, gatewayURL}, nil
}

// NewTxHash derives a 0x-prefixed 64-hex-char hash from two UUIDs.
func NewTxHash() string {
	a := uuid.New()
	b := uuid.New()
	return "0x" + hex.EncodeToString(a[:]) + hex.EncodeToString(b[:])
}

// Submit records a pending transaction and arms its confirmation.
func (service *ServiceChain) Submit(ctx context.Context, userID string, kind models.ActivityType, payload string) (*models.ChainTransaction, error) {
	tx := &models.ChainTransaction{
		Hash:        NewTxHash(),
		UserID:      userID,
		Kind:        models.TxKind(kind),
		Payload:     payload,
		Status:      models.TxStatusPending,
		SubmittedAt: time.Now(),
	}

	err := service.store.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}

	if service.gateway != nil {
		go service.mirror(tx)
	}

	delay := confirmDelayMin + time.Duration(rand.Int63n(int64(confirmDelayMax-confirmDelayMin)))
	time.AfterFunc(delay, func() {
		service.confirm(tx.Hash)
	})

	return tx, nil
}

func (service *ServiceChain) confirm(hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	err := service.store.UpdateStatus(ctx, hash, models.TxStatusConfirmed, &now)
	if err != nil {
		log.Println("confirm tx", hash, err)
	}
}

func (service *ServiceChain) mirror(tx *models.ChainTransaction) {
	url := fmt.Sprintf("%s/tx/%s", service.gatewayURL, tx.Hash)
	res, err := service.gateway.Post(url, nil, http.Header{"Content-Type": []string{"application/json"}})
	if err != nil {
		log.Println("mirror tx", tx.Hash, err)
		return
	}
	// nolint:errcheck
	res.Body.Close()
}

func (service *ServiceChain) GetTransaction(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	return service.store.Find(ctx, hash)
}

// FailStuckTransactions marks pendings that outlived the confirmation
// window across a restart.
func (service *ServiceChain) FailStuckTransactions(ctx context.Context, txs []*models.ChainTransaction) error {
	for _, tx := range txs {
		err := service.store.UpdateStatus(ctx, tx.Hash, models.TxStatusFailed, nil)
		if err != nil {
			return err
		}
	}
	return nil
}
