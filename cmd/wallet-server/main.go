package main

import (
	"fmt"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/chain/eth"
	"wallet-backend/internal/gateway"
	"wallet-backend/internal/handler"
	"wallet-backend/internal/model"
	"wallet-backend/internal/server"
	"wallet-backend/internal/service"
	"wallet-backend/internal/service/mq"
	"wallet-backend/internal/store"

	"wallet-backend/pkg/address"
	"wallet-backend/pkg/config"
	"wallet-backend/pkg/database"
	"wallet-backend/pkg/keyvault"
	"wallet-backend/pkg/lock"
	"wallet-backend/pkg/logger"

	"github.com/btcsuite/btcd/chaincfg"
	"go.uber.org/zap"
)

// @title Wallet Backend API
// @version 1.0
// @description Custodial multi-chain wallet backend

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 连接数据库
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 数据库迁移
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 5. 持久层
	st := store.New(db, config.Global.Upstream.CredentialQuota)

	// 6. 网络参数
	network := networkParams(config.Global.Wallet.Network)

	// 7. 三类上游客户端，共用同一个凭证池
	btcAPI := gateway.NewClient(config.Global.Upstream.BtcAPIURL, st)
	ethAPI := gateway.NewClient(config.Global.Upstream.EthAPIURL, st)
	signerAPI := gateway.NewClient(config.Global.Upstream.GatewayURL, st)

	// 8. 链组件
	vault := keyvault.New(network)
	btcReader := btc.NewReader(btcAPI)
	btcEngine := btc.NewEngine(btcAPI, vault, network)
	feeEstimator := btc.NewFeeEstimator(config.Global.Upstream.FeeRate)
	ethReader := eth.NewReader(ethAPI)
	ethSigner := eth.NewSigner(signerAPI)

	// 9. 消息队列
	var producer mq.Producer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers, "wallet_events_payment")
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
	}

	// 10. 钱包锁
	// 多实例部署依赖 Redis 锁保证同一钱包全局只有一笔在途付款
	walletLock := lock.NewRedisLock(rdb)

	// 11. 业务服务
	wallets := service.NewWalletService(st, address.NewBTCGenerator(network), vault, ethSigner)
	balances := service.NewBalanceService(st, btcReader, ethReader)
	payments := service.NewPaymentService(st, walletLock, btcReader, btcEngine, feeEstimator, ethSigner, producer)
	history := service.NewHistoryService(st, btcReader, ethReader)

	// 12. HTTP
	walletHandler := handler.NewWalletHandler(wallets, balances, payments, history, network)
	r := server.NewHTTPRouter(walletHandler)

	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	app.Run()

	// 13. 退出后资源清理
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("系统已退出")
}

func networkParams(name string) *chaincfg.Params {
	switch name {
	case "testnet3":
		return &chaincfg.TestNet3Params
	default:
		return &chaincfg.MainNetParams
	}
}
