package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"
)

func makeCreds(n int) []model.ApiCredential {
	creds := make([]model.ApiCredential, 0, n)
	for i := 1; i <= n; i++ {
		creds = append(creds, model.ApiCredential{ID: uint64(i), SecretKey: "key", CallCount: 0})
	}
	return creds
}

func TestPoolLinearOrder(t *testing.T) {
	pool := NewPool(makeCreds(3))

	cred, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cred.ID)

	// 未 Reject 时重复获取同一个
	cred, err = pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cred.ID)
}

// 池大小为 N，依次拒绝 N-1 个后第 N 个仍可用
func TestPoolRejectNMinusOne(t *testing.T) {
	const n = 5
	pool := NewPool(makeCreds(n))

	for i := 1; i < n; i++ {
		cred, err := pool.Acquire()
		require.NoError(t, err)
		assert.Equal(t, uint64(i), cred.ID)
		pool.Reject(cred.ID)
	}

	cred, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint64(n), cred.ID)
}

// 全部拒绝后必须返回 CredentialsExhausted
func TestPoolAllRejected(t *testing.T) {
	const n = 4
	pool := NewPool(makeCreds(n))

	for i := 0; i < n; i++ {
		cred, err := pool.Acquire()
		require.NoError(t, err)
		pool.Reject(cred.ID)
	}

	_, err := pool.Acquire()
	assert.ErrorIs(t, err, errno.ErrCredentialsExhausted)
}

func TestPoolEmpty(t *testing.T) {
	pool := NewPool(nil)
	_, err := pool.Acquire()
	assert.ErrorIs(t, err, errno.ErrCredentialsExhausted)
	assert.Equal(t, 0, pool.Size())
}

func TestPoolRecordSuccess(t *testing.T) {
	pool := NewPool(makeCreds(2))

	assert.Equal(t, 1, pool.RecordSuccess(1))
	assert.Equal(t, 2, pool.RecordSuccess(1))
	assert.Equal(t, 1, pool.RecordSuccess(2))
	// 未知 ID 不会 panic
	assert.Equal(t, 0, pool.RecordSuccess(99))
}
