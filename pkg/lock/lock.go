package lock

import (
	"context"
	"sync"
	"time"
)

// DistributedLock 定义分布式锁接口
// 支付服务用它在 select→sign→broadcast 全程独占一个钱包地址，
// 避免两笔并发付款选中同一批 UTXO 造成双花
type DistributedLock interface {
	// Acquire 尝试获取锁，不阻塞
	// key: 锁的唯一标识 (钱包地址)
	// ttl: 锁的过期时间
	// 返回: (是否成功, error)
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release 释放锁
	Release(ctx context.Context, key string) error
}

// LocalLock 进程内实现：按 key 维护一张持有表
// 单实例部署和测试用；多实例部署换 RedisLock，接口不变
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time // key -> 过期时刻
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time)}
}

func (l *LocalLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, ok := l.held[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	l.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *LocalLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
