package eth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wallet-backend/internal/gateway"
	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"
)

type staticSource struct{}

func (staticSource) UsableCredentials(ctx context.Context) ([]model.ApiCredential, error) {
	return []model.ApiCredential{{ID: 1, SecretKey: "test-key"}}, nil
}

func (staticSource) IncrementUsage(ctx context.Context, id uint64, newCount int) error {
	return nil
}

func TestNewAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/newAddress", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s3cret", body["password"])
		rw.Write([]byte(`{"ok": true, "ethereumaddress": "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"}`))
	}))
	defer srv.Close()

	signer := NewSigner(gateway.NewClient(srv.URL, staticSource{}))
	addr, err := signer.NewAddress(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", addr)
}

func TestSendPassesThroughRejectionReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte(`{"ok": false, "description": "insufficient gas funds"}`))
	}))
	defer srv.Close()

	signer := NewSigner(gateway.NewClient(srv.URL, staticSource{}))
	_, err := signer.Send(context.Background(), "0xfrom", "0xto", decimal.NewFromFloat(0.5), "s3cret")
	require.ErrorIs(t, err, errno.ErrBroadcastRejected)
	assert.Contains(t, err.Error(), "insufficient gas funds")
}

func TestSendReturnsTxID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0.5", body["amount"])
		rw.Write([]byte(`{"ok": true, "txid": "0xcafe"}`))
	}))
	defer srv.Close()

	signer := NewSigner(gateway.NewClient(srv.URL, staticSource{}))
	txID, err := signer.Send(context.Background(), "0xfrom", "0xto", decimal.NewFromFloat(0.5), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "0xcafe", txID)
}

func TestReaderBalanceConvertsWei(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte(`{"status": "1", "message": "OK", "result": "1500000000000000000"}`))
	}))
	defer srv.Close()

	reader := NewReader(gateway.NewClient(srv.URL, staticSource{}))
	balance, err := reader.Balance(context.Background(), "0x71C7656EC7ab88b098defB751B7401B5f6d8976F")
	require.NoError(t, err)
	assert.Equal(t, "1.5", balance.String())
}
