package entity

import (
	"time"
)

// ModelTier 模型速度档位，决定走同步路径还是队列路径
type ModelTier string

const (
	TierFast ModelTier = "fast"
	TierSlow ModelTier = "slow"
)

// GenerationRequest 单次生成调用的请求，按调用创建、不独立持久化
type GenerationRequest struct {
	ModelID        string  `json:"model_id"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	GuidanceScale  float64 `json:"guidance_scale,omitempty"`
	DurationSec    int     `json:"duration_sec,omitempty"`
}

// GenerationResult 生成结果
// 所有失败以数据形式表达（Success=false），从不跨模块抛出。
// 不变式：Success 为真时 MediaURL 或 Content 必非空。
type GenerationResult struct {
	Success  bool          `json:"success"`
	MediaURL string        `json:"media_url,omitempty"`
	Content  string        `json:"content,omitempty"`
	Cost     float64       `json:"cost,omitempty"`
	Elapsed  time.Duration `json:"elapsed,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// FailureResult 构造失败结果
func FailureResult(msg string) GenerationResult {
	return GenerationResult{Success: false, Error: msg}
}

// JobStatus 队列任务状态（提供商三段式协议）
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// GenerationJob 队列路径的任务句柄
// RequestID 由提供商签发，仅在 completed 之后才允许取结果。
type GenerationJob struct {
	RequestID   string    `json:"request_id"`
	ModelID     string    `json:"model_id"`
	Status      JobStatus `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Terminal 判断状态是否为终态
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
