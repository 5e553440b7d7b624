package gateway

import (
	"sync"

	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"
)

// Pool 是单次逻辑操作内的凭证轮换器
// 从持久层拿到的可用凭证快照上线性取用；Reject 只在本次轮换内屏蔽凭证，
// 不写回持久层——配额重置和永久失效都由外部管理。
// 每次调用新建一个 Pool，请求间不共享可变状态。
type Pool struct {
	mu       sync.Mutex
	creds    []model.ApiCredential
	rejected map[uint64]bool
}

func NewPool(creds []model.ApiCredential) *Pool {
	return &Pool{
		creds:    creds,
		rejected: make(map[uint64]bool),
	}
}

// Acquire 返回第一个未被屏蔽的凭证
// 全部耗尽时返回 ErrCredentialsExhausted，调用方不得再重试
func (p *Pool) Acquire() (*model.ApiCredential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.creds {
		if !p.rejected[p.creds[i].ID] {
			return &p.creds[i], nil
		}
	}
	return nil, errno.ErrCredentialsExhausted
}

// Reject 在本次轮换内屏蔽一个被远端拒绝的凭证
func (p *Pool) Reject(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejected[id] = true
}

// RecordSuccess 在快照内自增调用计数，返回新值供异步写回
func (p *Pool) RecordSuccess(id uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.creds {
		if p.creds[i].ID == id {
			p.creds[i].CallCount++
			return p.creds[i].CallCount
		}
	}
	return 0
}

// Size 凭证总数，也是轮换重试的上界
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}
