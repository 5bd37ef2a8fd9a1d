package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
	apperrors "timeline-press/pkg/errors"
	"timeline-press/pkg/logger"
)

var tracer = otel.Tracer("imagegen")

// Client 图像/视频生成提供商客户端
// 同步路径一次 POST 返回结果；慢模型走提交-轮询-取结果的三段式队列协议。
// 所有失败以 GenerationResult{Success:false} 表达，从不跨模块边界抛错。
type Client struct {
	endpoint     string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewClient 创建生成客户端
func NewClient(cfg *config.ImageGenConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.SyncTimeout,
		},
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
	}
}

// Generate 按模型速度档位分派同步或队列路径
func (c *Client) Generate(ctx context.Context, req entity.GenerationRequest) entity.GenerationResult {
	if TierFor(req.ModelID) == entity.TierFast {
		return c.GenerateSync(ctx, req)
	}

	job, err := c.SubmitToQueue(ctx, req)
	if err != nil {
		return entity.FailureResult(err.Error())
	}
	ctx = logger.WithContext(ctx, logger.JobIDKey, job.RequestID)
	logger.Info(ctx, "queue job submitted", "model", req.ModelID)
	return c.WaitForCompletion(ctx, req.ModelID, job.RequestID, c.maxWait, c.pollInterval)
}

// GenerateSync 同步生成：一次 POST，固定超时
func (c *Client) GenerateSync(ctx context.Context, req entity.GenerationRequest) entity.GenerationResult {
	ctx, span := tracer.Start(ctx, "imagegen.GenerateSync",
		trace.WithAttributes(attribute.String("imagegen.model", req.ModelID)))
	defer span.End()

	start := time.Now()

	body, err := c.post(ctx, fmt.Sprintf("%s/%s", c.endpoint, req.ModelID), req)
	if err != nil {
		span.RecordError(err)
		return entity.FailureResult(err.Error())
	}

	resp, err := parseResult(body)
	if err != nil {
		return entity.FailureResult("malformed provider response: " + err.Error())
	}
	if resp.Error != "" {
		return entity.FailureResult("provider error: " + resp.Error)
	}

	mediaURL := extractMediaURL(resp)
	if mediaURL == "" {
		return entity.FailureResult("provider response contains no media url")
	}

	return entity.GenerationResult{
		Success:  true,
		MediaURL: mediaURL,
		Cost:     resp.Cost,
		Elapsed:  time.Since(start),
	}
}

// SubmitToQueue 提交队列任务，返回提供商签发的任务句柄
func (c *Client) SubmitToQueue(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "imagegen.SubmitToQueue",
		trace.WithAttributes(attribute.String("imagegen.model", req.ModelID)))
	defer span.End()

	body, err := c.post(ctx, fmt.Sprintf("%s/%s/requests", c.endpoint, req.ModelID), req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("queue submit failed: %w", err)
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed submit response: %w", err)
	}
	if resp.RequestID == "" {
		return nil, fmt.Errorf("submit response missing request_id")
	}

	return &entity.GenerationJob{
		RequestID:   resp.RequestID,
		ModelID:     req.ModelID,
		Status:      entity.JobStatusQueued,
		SubmittedAt: time.Now(),
	}, nil
}

// CheckStatus 查询队列任务状态
func (c *Client) CheckStatus(ctx context.Context, modelID, requestID string) (entity.JobStatus, error) {
	ctx, span := tracer.Start(ctx, "imagegen.CheckStatus",
		trace.WithAttributes(attribute.String("imagegen.request_id", requestID)))
	defer span.End()

	body, err := c.get(ctx, fmt.Sprintf("%s/%s/requests/%s/status", c.endpoint, modelID, requestID))
	if err != nil {
		span.RecordError(err)
		return entity.JobStatusFailed, fmt.Errorf("status check failed: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entity.JobStatusFailed, fmt.Errorf("malformed status response: %w", err)
	}
	if resp.Error != "" {
		return entity.JobStatusFailed, fmt.Errorf("provider error: %s", resp.Error)
	}
	return mapStatus(resp.Status), nil
}

// GetResult 获取队列任务结果，仅在 completed 之后有效
func (c *Client) GetResult(ctx context.Context, modelID, requestID string) entity.GenerationResult {
	ctx, span := tracer.Start(ctx, "imagegen.GetResult",
		trace.WithAttributes(attribute.String("imagegen.request_id", requestID)))
	defer span.End()

	body, err := c.get(ctx, fmt.Sprintf("%s/%s/requests/%s", c.endpoint, modelID, requestID))
	if err != nil {
		span.RecordError(err)
		return entity.FailureResult("result fetch failed: " + err.Error())
	}

	resp, err := parseResult(body)
	if err != nil {
		return entity.FailureResult("malformed provider response: " + err.Error())
	}
	if resp.Error != "" {
		return entity.FailureResult("provider error: " + resp.Error)
	}

	mediaURL := extractMediaURL(resp)
	if mediaURL == "" {
		return entity.FailureResult("provider response contains no media url")
	}

	return entity.GenerationResult{
		Success:  true,
		MediaURL: mediaURL,
		Cost:     resp.Cost,
	}
}

// WaitForCompletion 有界固定间隔轮询直到任务完成
// maxWait 内未完成返回超时失败结果；不做指数退避。
func (c *Client) WaitForCompletion(ctx context.Context, modelID, requestID string, maxWait, pollInterval time.Duration) entity.GenerationResult {
	ctx, span := tracer.Start(ctx, "imagegen.WaitForCompletion",
		trace.WithAttributes(
			attribute.String("imagegen.request_id", requestID),
			attribute.Int64("imagegen.max_wait_ms", maxWait.Milliseconds()),
		))
	defer span.End()

	start := time.Now()
	deadline := start.Add(maxWait)

	for {
		status, err := c.CheckStatus(ctx, modelID, requestID)
		if err != nil {
			span.RecordError(err)
			return entity.FailureResult(err.Error())
		}

		if status.Terminal() {
			if status == entity.JobStatusFailed {
				return entity.FailureResult(fmt.Sprintf("generation job %s failed", requestID))
			}
			result := c.GetResult(ctx, modelID, requestID)
			result.Elapsed = time.Since(start)
			return result
		}

		if time.Now().After(deadline) {
			timeoutErr := fmt.Errorf("%w: job %s after %s", apperrors.ErrProviderTimeout, requestID, maxWait)
			span.RecordError(timeoutErr)
			return entity.FailureResult(timeoutErr.Error())
		}

		select {
		case <-ctx.Done():
			return entity.FailureResult("cancelled: " + ctx.Err().Error())
		case <-time.After(pollInterval):
		}
	}
}

// post 发起 JSON POST 请求，非 2xx 响应降级为错误
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.apiKey)

	return c.do(req)
}

// get 发起 GET 请求
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
