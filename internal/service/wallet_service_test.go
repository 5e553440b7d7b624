package service

import (
	"context"
	"testing"

	"wallet-backend/internal/model"
	"wallet-backend/pkg/address"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/keyvault"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWalletService(store *fakeStore, signer *fakeSigner) *WalletService {
	return NewWalletService(
		store,
		address.NewBTCGenerator(&chaincfg.MainNetParams),
		keyvault.New(&chaincfg.MainNetParams),
		signer,
	)
}

func TestCreateBTCWalletStoresDecryptableKey(t *testing.T) {
	store := &fakeStore{}
	svc := newWalletService(store, &fakeSigner{})

	w, err := svc.CreateWallet(context.Background(), 7, model.ChainBTC)
	require.NoError(t, err)

	assert.NotEmpty(t, w.Address)
	assert.NotEmpty(t, w.EncryptedKey)
	assert.NotEmpty(t, w.Passphrase)
	assert.Empty(t, w.GatewayPassword)

	// 落库的密文必须能用同库的助记词解回
	enc, err := keyvault.Parse(w.EncryptedKey)
	require.NoError(t, err)
	wif, err := keyvault.New(&chaincfg.MainNetParams).Decrypt(enc, w.Passphrase)
	require.NoError(t, err)
	defer wif.PrivKey.Zero()
}

func TestCreateETHWalletDelegatesToGateway(t *testing.T) {
	store := &fakeStore{}
	signer := &fakeSigner{address: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"}
	svc := newWalletService(store, signer)

	w, err := svc.CreateWallet(context.Background(), 7, model.ChainETH)
	require.NoError(t, err)

	assert.Equal(t, signer.address, w.Address)
	assert.NotEmpty(t, w.GatewayPassword)
	assert.Equal(t, w.GatewayPassword, signer.lastPassword)
	assert.Empty(t, w.EncryptedKey)
}

func TestCreateWalletDuplicate(t *testing.T) {
	store := &fakeStore{}
	svc := newWalletService(store, &fakeSigner{})

	_, err := svc.CreateWallet(context.Background(), 7, model.ChainBTC)
	require.NoError(t, err)

	_, err = svc.CreateWallet(context.Background(), 7, model.ChainBTC)
	assert.ErrorIs(t, err, errno.ErrWalletExists)
}

func TestCreateWalletSameUserDifferentChains(t *testing.T) {
	store := &fakeStore{}
	svc := newWalletService(store, &fakeSigner{address: "0xabc"})

	_, err := svc.CreateWallet(context.Background(), 7, model.ChainBTC)
	require.NoError(t, err)
	_, err = svc.CreateWallet(context.Background(), 7, model.ChainETH)
	require.NoError(t, err)
}

func TestCreateWalletBadChain(t *testing.T) {
	svc := newWalletService(&fakeStore{}, &fakeSigner{})

	_, err := svc.CreateWallet(context.Background(), 7, "DOGE")
	assert.ErrorIs(t, err, errno.ErrBadChain)
}
