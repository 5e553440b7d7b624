package service

import (
	"context"
	"errors"

	"wallet-backend/internal/model"
	"wallet-backend/pkg/address"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/keyvault"
	"wallet-backend/pkg/logger"
	"wallet-backend/pkg/monitor"
	"wallet-backend/pkg/safe_random"

	"go.uber.org/zap"
)

// WalletService 托管钱包的创建与查询
// BTC: 本地生成密钥对，私钥加密后落库，助记词口令同库保存 (托管模式)
// ETH: 密钥由远端签名网关托管，本地只保存按钱包生成的网关口令
type WalletService struct {
	store  WalletStore
	keygen *address.BTCGenerator
	vault  *keyvault.Vault
	signer AccountSigner
}

func NewWalletService(store WalletStore, keygen *address.BTCGenerator, vault *keyvault.Vault, signer AccountSigner) *WalletService {
	return &WalletService{
		store:  store,
		keygen: keygen,
		vault:  vault,
		signer: signer,
	}
}

// CreateWallet 为用户在指定链上创建钱包
// 每个 (user, chain) 只允许一个钱包；重复创建返回 ErrWalletExists
func (s *WalletService) CreateWallet(ctx context.Context, userID uint64, chain string) (*model.Wallet, error) {
	if chain != model.ChainBTC && chain != model.ChainETH {
		return nil, errno.ErrBadChain
	}

	if _, err := s.store.WalletByUser(ctx, userID, chain); err == nil {
		return nil, errno.ErrWalletExists
	} else if !errors.Is(err, errno.ErrWalletNotFound) {
		return nil, err
	}

	var w *model.Wallet
	var err error
	switch chain {
	case model.ChainBTC:
		w, err = s.createBTCWallet(userID)
	case model.ChainETH:
		w, err = s.createETHWallet(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateWallet(ctx, w); err != nil {
		return nil, err
	}

	monitor.Business.WalletsCreatedTotal.WithLabelValues(chain).Inc()
	logger.Info("钱包已创建",
		zap.Uint64("user_id", userID),
		zap.String("chain", chain),
		zap.String("address", w.Address))
	return w, nil
}

func (s *WalletService) createBTCWallet(userID uint64) (*model.Wallet, error) {
	pair, err := s.keygen.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	enc, mnemonic, err := s.vault.Encrypt(pair.PrivateKeyWIF)
	if err != nil {
		return nil, err
	}
	encJSON, err := enc.Marshal()
	if err != nil {
		return nil, err
	}

	return &model.Wallet{
		UserID:       userID,
		Chain:        model.ChainBTC,
		Address:      pair.Address,
		PublicKey:    pair.PublicKeyHex,
		EncryptedKey: encJSON,
		Passphrase:   mnemonic,
	}, nil
}

func (s *WalletService) createETHWallet(ctx context.Context, userID uint64) (*model.Wallet, error) {
	// 网关口令按钱包随机生成，用户无感知
	password, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		return nil, err
	}

	addr, err := s.signer.NewAddress(ctx, password)
	if err != nil {
		return nil, err
	}

	return &model.Wallet{
		UserID:          userID,
		Chain:           model.ChainETH,
		Address:         addr,
		GatewayPassword: password,
	}, nil
}

// Wallet 查某用户在某链上的钱包
func (s *WalletService) Wallet(ctx context.Context, userID uint64, chain string) (*model.Wallet, error) {
	if chain != model.ChainBTC && chain != model.ChainETH {
		return nil, errno.ErrBadChain
	}
	return s.store.WalletByUser(ctx, userID, chain)
}
