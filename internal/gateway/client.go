package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/logger"
	"wallet-backend/pkg/monitor"

	"go.uber.org/zap"
)

// Source 提供凭证快照和用量写回，由持久层实现
type Source interface {
	UsableCredentials(ctx context.Context) ([]model.ApiCredential, error)
	IncrementUsage(ctx context.Context, id uint64, newCount int) error
}

// Client 是带凭证轮换的第三方 API 客户端
// 每次 Call 取一份凭证快照，被拒则换下一个，上界为池大小，不会无限递归
type Client struct {
	baseURL string
	source  Source
	http    *http.Client
}

const (
	requestTimeout   = 30 * time.Second
	incrementTimeout = 5 * time.Second
)

func NewClient(baseURL string, source Source) *Client {
	return &Client{
		baseURL: baseURL,
		source:  source,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// forbiddenProbe 探测嵌在响应体里的鉴权拒绝
// 有些上游返回 HTTP 200 但 body 里带 status:403
type forbiddenProbe struct {
	Status int `json:"status"`
}

// Call 发起一次带鉴权的请求并把响应解码到 out
// method GET 时忽略 payload；out 传 nil 表示不关心响应体
func (c *Client) Call(ctx context.Context, method, endpoint string, payload any, out any) error {
	creds, err := c.source.UsableCredentials(ctx)
	if err != nil {
		return fmt.Errorf("加载凭证失败: %w", err)
	}
	pool := NewPool(creds)

	// 有界轮换：最多尝试池里的每个凭证一次
	for attempt := 0; attempt < pool.Size(); attempt++ {
		cred, err := pool.Acquire()
		if err != nil {
			return err
		}

		body, err := c.do(ctx, method, endpoint, payload, cred.SecretKey)
		if err != nil {
			// 网络层失败：transient，原样上抛，由调用方决定是否整体重试
			return errno.ErrUpstreamUnavailable.WithMessage(err.Error())
		}

		var probe forbiddenProbe
		_ = json.Unmarshal(body, &probe)
		if probe.Status == http.StatusForbidden {
			logger.Info("凭证被上游拒绝，轮换下一个",
				zap.Uint64("credential_id", cred.ID),
				zap.String("endpoint", endpoint))
			pool.Reject(cred.ID)
			monitor.Business.CredentialRotationsTotal.Inc()
			continue
		}

		// 用量写回是遥测不是正确性：fire-and-forget，失败不影响本次请求
		newCount := pool.RecordSuccess(cred.ID)
		go func(id uint64, n int) {
			bgCtx, cancel := context.WithTimeout(context.Background(), incrementTimeout)
			defer cancel()
			_ = c.source.IncrementUsage(bgCtx, id, n)
		}(cred.ID, newCount)

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				return errno.ErrUpstreamUnavailable.WithMessage("unexpected upstream response")
			}
		}
		return nil
	}

	return errno.ErrCredentialsExhausted
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, secret string) ([]byte, error) {
	var reqBody io.Reader
	if method != http.MethodGet && payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// 状态行层面的 403 与 body 层面的一致处理：包装成探针能识别的形状
	if resp.StatusCode == http.StatusForbidden {
		return []byte(`{"status":403}`), nil
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}

	return body, nil
}
