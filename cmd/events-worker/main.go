package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"wallet-backend/internal/event"
	"wallet-backend/internal/service/mq"
	"wallet-backend/pkg/config"
	"wallet-backend/pkg/database"
	"wallet-backend/pkg/logger"

	"go.uber.org/zap"
)

// EventsWorker 独立运行的付款事件消费端
// 目前只做审计日志；对账、通知等下游都从这里接
func main() {
	// 1. 初始化配置与日志
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	logger.Info("启动事件消费服务 (Events Worker)...", zap.String("env", config.Global.App.Env))

	// 2. 初始化消费者
	var consumer mq.Consumer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "wallet_events_group")
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		hostname, _ := os.Hostname()
		consumer = mq.NewRedisConsumer(rdb, "wallet_events_group", hostname)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 订阅付款广播事件
	go func() {
		err := consumer.Subscribe(ctx, event.TopicPaymentBroadcast, func(msg *mq.Message) error {
			var evt event.PaymentBroadcastEvent
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				logger.Error("无法解析付款事件，丢弃", zap.String("id", msg.ID), zap.Error(err))
				return nil // 解析不了的消息重试也没用
			}
			logger.Info("付款已广播",
				zap.Uint64("user_id", evt.UserID),
				zap.String("chain", evt.Chain),
				zap.String("from", evt.FromAddress),
				zap.String("to", evt.ToAddress),
				zap.String("amount", evt.Amount),
				zap.String("tx_id", evt.TxID))
			return nil
		})
		if err != nil {
			logger.Error("订阅失败", zap.Error(err))
		}
	}()

	// 4. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭事件消费服务...")
	cancel()
	consumer.Close()
	logger.Info("系统已退出")
}
