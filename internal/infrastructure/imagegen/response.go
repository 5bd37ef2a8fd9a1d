// Package imagegen 提供图像/视频生成提供商客户端
package imagegen

import (
	"encoding/json"
	"strings"

	"timeline-press/internal/domain/entity"
)

// mediaRef 响应中的单个媒体引用
type mediaRef struct {
	URL string `json:"url"`
}

// providerResponse 提供商生成结果的已知形态联合
// 不同模型族返回不同字段，按 extractMediaURL 中的固定顺序取首个命中。
type providerResponse struct {
	Video  *mediaRef  `json:"video,omitempty"`
	Images []mediaRef `json:"images,omitempty"`
	Image  *mediaRef  `json:"image,omitempty"`
	Output *mediaRef  `json:"output,omitempty"`
	URL    string     `json:"url,omitempty"`

	Cost   float64 `json:"cost,omitempty"`
	Detail string  `json:"detail,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// extractMediaURL 按固定优先级提取媒体 URL，首个命中即返回
// 顺序：video.url -> images[0].url -> image.url -> output.url -> url
func extractMediaURL(resp *providerResponse) string {
	if resp == nil {
		return ""
	}
	if resp.Video != nil && resp.Video.URL != "" {
		return resp.Video.URL
	}
	if len(resp.Images) > 0 && resp.Images[0].URL != "" {
		return resp.Images[0].URL
	}
	if resp.Image != nil && resp.Image.URL != "" {
		return resp.Image.URL
	}
	if resp.Output != nil && resp.Output.URL != "" {
		return resp.Output.URL
	}
	return resp.URL
}

// parseResult 解析生成结果响应体
func parseResult(body []byte) (*providerResponse, error) {
	var resp providerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// submitResponse 队列提交响应
type submitResponse struct {
	RequestID string `json:"request_id"`
	Detail    string `json:"detail,omitempty"`
}

// statusResponse 队列状态响应
type statusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// mapStatus 把提供商状态字符串归一到四态
func mapStatus(raw string) entity.JobStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "IN_QUEUE", "QUEUED", "PENDING":
		return entity.JobStatusQueued
	case "IN_PROGRESS", "PROCESSING", "RUNNING":
		return entity.JobStatusInProgress
	case "COMPLETED", "OK", "SUCCEEDED":
		return entity.JobStatusCompleted
	default:
		return entity.JobStatusFailed
	}
}
