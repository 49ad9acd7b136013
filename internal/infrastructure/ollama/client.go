// Package ollama 提供生成服务客户端
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookgen/internal/application/generation"
	apperrors "bookgen/pkg/errors"
	"bookgen/pkg/logger"
	"bookgen/pkg/metrics"
)

const (
	defaultRetries     = 3
	defaultTimeout     = 240 * time.Second
	defaultBackoffUnit = 2 * time.Second

	// 健康检查超时的钳位区间
	healthTimeoutMin = 5 * time.Second
	healthTimeoutMax = 30 * time.Second

	// 固定的采样参数，与生成服务约定一致
	topP       = 0.9
	numPredict = 4096
)

// Config 客户端配置
type Config struct {
	Endpoint string
	Model    string
	// Timeout 单次调用超时
	Timeout time.Duration
	// Retries 总尝试次数预算（含首次）
	Retries int
	// Seed 可选的确定性种子
	Seed *int64
	// BackoffUnit 线性退避单位；第 n 次失败后等待 n*BackoffUnit
	BackoffUnit time.Duration
}

// Client 生成服务客户端
type Client struct {
	endpoint    string
	model       string
	retries     int
	seed        *int64
	backoffUnit time.Duration
	timeout     time.Duration
	httpClient  *http.Client
}

var _ generation.TextGenerator = (*Client)(nil)

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backoffUnit := cfg.BackoffUnit
	if backoffUnit <= 0 {
		backoffUnit = defaultBackoffUnit
	}
	return &Client{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		model:       cfg.Model,
		retries:     retries,
		seed:        cfg.Seed,
		backoffUnit: backoffUnit,
		timeout:     timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
	Seed        *int64  `json:"seed,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate 发起一次生成调用。
// 瞬时失败（网络错误、非 2xx、响应体不可解析、空响应文本）在预算内
// 线性退避重试；预算耗尽后返回携带最后一次底层错误的终态失败。
func (c *Client) Generate(ctx context.Context, req generation.GenerateRequest) (string, error) {
	payload, err := json.Marshal(&generateRequest{
		Model:  c.model,
		System: req.System,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			TopP:        topP,
			NumPredict:  numPredict,
			Seed:        c.seed,
		},
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "failed to marshal generate request")
	}

	url := c.endpoint + "/api/generate"
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		start := time.Now()
		text, err := c.doGenerate(ctx, url, payload)
		metrics.LLMCallDuration.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.LLMCallTotal.WithLabelValues(req.Operation, "ok").Inc()
			return text, nil
		}
		metrics.LLMCallTotal.WithLabelValues(req.Operation, "error").Inc()
		lastErr = err

		// 外部中断不消耗重试预算，直接向上传播
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt >= c.retries {
			break
		}

		metrics.LLMRetriesTotal.WithLabelValues(req.Operation).Inc()
		logger.Warn(ctx, "retrying generation call",
			"operation", req.Operation,
			"attempt", attempt,
			"retries", c.retries,
			"error", err.Error(),
		)
		if err := sleepBackoff(ctx, time.Duration(attempt)*c.backoffUnit); err != nil {
			return "", err
		}
	}

	return "", apperrors.Wrap(lastErr, apperrors.CodeLLMCallFailed,
		fmt.Sprintf("generation failed after %d attempts", c.retries))
}

func (c *Client) doGenerate(ctx context.Context, url string, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", fmt.Errorf("generation request failed: status=%d", httpResp.StatusCode)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		// 空响应不是有效的空章节
		return "", fmt.Errorf("empty response from generation service")
	}
	return text, nil
}

// Health 检查生成服务可达性。
// 使用单独钳位的短超时；失败对整个运行是致命的。
func (c *Client) Health(ctx context.Context) error {
	timeout := c.timeout
	if timeout > healthTimeoutMax {
		timeout = healthTimeoutMax
	}
	if timeout < healthTimeoutMin {
		timeout = healthTimeoutMin
	}

	url := c.endpoint + "/api/tags"
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(hctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeServiceUnreachable, "failed to create health request")
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeServiceUnreachable,
			fmt.Sprintf("cannot reach generation service at %s; ensure it is running (e.g. `ollama serve`)", url))
	}
	defer httpResp.Body.Close()
	_, _ = io.Copy(io.Discard, httpResp.Body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return apperrors.Newf(apperrors.CodeServiceUnreachable,
			"cannot reach generation service at %s: unexpected status %d", url, httpResp.StatusCode)
	}
	return nil
}

// Endpoint 返回配置的服务地址
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Model 返回配置的模型标识
func (c *Client) Model() string {
	return c.model
}

// sleepBackoff 可被 context 打断的退避等待
func sleepBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
