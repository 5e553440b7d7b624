package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 支持的链标识
const (
	ChainBTC = "BTC"
	ChainETH = "ETH"
)

// Wallet 托管钱包表，每个 (user, chain) 一行
// 地址创建后不变，本设计不做密钥轮换
// EncryptedKey/Passphrase 仅 BTC 钱包持有；ETH 的签名密钥在远端网关，本地只存网关口令
type Wallet struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint64         `gorm:"not null;uniqueIndex:idx_user_chain" json:"user_id"`
	Chain           string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_user_chain" json:"chain"` // BTC, ETH
	Address         string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"address"`
	PublicKey       string         `gorm:"type:varchar(255)" json:"-"`
	EncryptedKey    string         `gorm:"type:text" json:"-"` // keyvault.EncryptedKey JSON
	Passphrase      string         `gorm:"type:text" json:"-"` // BIP-39 助记词口令，永不出库
	GatewayPassword string         `gorm:"type:varchar(255)" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ApiCredential 第三方网关 API Key 表
// call_count 低于配额的才可用；计数自增由网关客户端异步写回，配额重置由外部管理
type ApiCredential struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SecretKey string    `gorm:"column:api_key;type:varchar(255);not null" json:"-"`
	CallCount int       `gorm:"column:no_of_calls;not null;default:0" json:"call_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction 本地交易记录表，广播成功后按 tx_id 落库
type Transaction struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	FromAddress string          `gorm:"type:varchar(255);not null;index" json:"from_address"`
	ToAddress   string          `gorm:"type:varchar(255);not null" json:"to_address"`
	Amount      decimal.Decimal `gorm:"type:decimal(32,18);not null" json:"amount"`
	Chain       string          `gorm:"type:varchar(10);not null" json:"chain"`
	TxID        string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"tx_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName 指定表名
func (Wallet) TableName() string {
	return "wallets"
}

func (ApiCredential) TableName() string {
	return "api_keys"
}

func (Transaction) TableName() string {
	return "transactions"
}
