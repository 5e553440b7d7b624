package store

import (
	"context"
	"errors"

	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store 持久层协作者
// 交易引擎只依赖这里列出的几个操作；通用的行级 CRUD 不属于引擎范畴
type Store struct {
	db    *gorm.DB
	quota int // 单个凭证的调用上限
}

func New(db *gorm.DB, quota int) *Store {
	return &Store{db: db, quota: quota}
}

// UsableCredentials 返回所有调用次数未达配额的凭证，按 ID 顺序
// 轮换策略就是这个顺序，不做负载均衡 (配额重置由外部管理)
func (s *Store) UsableCredentials(ctx context.Context) ([]model.ApiCredential, error) {
	var creds []model.ApiCredential
	err := s.db.WithContext(ctx).
		Where("no_of_calls < ?", s.quota).
		Order("id asc").
		Find(&creds).Error
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// IncrementUsage 写回凭证的新调用计数
// 由网关客户端在成功调用后异步触发；失败只记日志，不影响调用方
func (s *Store) IncrementUsage(ctx context.Context, id uint64, newCount int) error {
	err := s.db.WithContext(ctx).
		Model(&model.ApiCredential{}).
		Where("id = ?", id).
		Update("no_of_calls", newCount).Error
	if err != nil {
		logger.Error("更新凭证计数失败", zap.Uint64("credential_id", id), zap.Error(err))
	}
	return err
}

// WalletByUser 按 (user, chain) 查钱包；不存在返回 ErrWalletNotFound
func (s *Store) WalletByUser(ctx context.Context, userID uint64, chain string) (*model.Wallet, error) {
	var w model.Wallet
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND chain = ?", userID, chain).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// WalletByAddress 按地址查钱包
func (s *Store) WalletByAddress(ctx context.Context, address string) (*model.Wallet, error) {
	var w model.Wallet
	err := s.db.WithContext(ctx).
		Where("address = ?", address).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWallet 落库新钱包；(user, chain) 唯一索引兜底并发创建
func (s *Store) CreateWallet(ctx context.Context, w *model.Wallet) error {
	return s.db.WithContext(ctx).Create(w).Error
}

// EncryptedKeyMaterial 取某地址的密文私钥与助记词口令
// 调用方解密后仅在签名窗口内持有明文，绝不回传、绝不打日志
func (s *Store) EncryptedKeyMaterial(ctx context.Context, address string) (encryptedKey, passphrase string, err error) {
	var w model.Wallet
	e := s.db.WithContext(ctx).
		Select("encrypted_key", "passphrase").
		Where("address = ?", address).
		First(&w).Error
	if errors.Is(e, gorm.ErrRecordNotFound) {
		return "", "", errno.ErrWalletNotFound
	}
	if e != nil {
		return "", "", e
	}
	return w.EncryptedKey, w.Passphrase, nil
}

// SaveTransaction 广播成功后记录一笔交易
func (s *Store) SaveTransaction(ctx context.Context, from, to string, amount decimal.Decimal, chain, txID string) error {
	tx := &model.Transaction{
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount,
		Chain:       chain,
		TxID:        txID,
	}
	return s.db.WithContext(ctx).Create(tx).Error
}
