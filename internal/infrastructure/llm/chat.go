package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timeline-press/internal/domain/entity"
)

var chatTracer = otel.Tracer("llm")

// ChatModelFactory 文本生成层对 ChatModel 的最小依赖（port）
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// Client 文本生成客户端
// 所有提供商错误转换为失败结果返回，从不跨流水线边界抛错。
type Client struct {
	factory ChatModelFactory
}

// NewClient 创建文本生成客户端
func NewClient(factory ChatModelFactory) *Client {
	return &Client{factory: factory}
}

// Generate 同步生成一段文本
func (c *Client) Generate(ctx context.Context, provider, system, user string) entity.GenerationResult {
	ctx, span := chatTracer.Start(ctx, "llm.Generate",
		trace.WithAttributes(attribute.String("llm.provider", provider)))
	defer span.End()

	start := time.Now()

	chatModel, err := c.factory.Get(ctx, provider)
	if err != nil {
		span.RecordError(err)
		return entity.FailureResult("llm client init failed: " + err.Error())
	}

	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	outMsg, err := chatModel.Generate(ctx, msgs)
	if err != nil {
		span.RecordError(err)
		return entity.FailureResult("llm call failed: " + err.Error())
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return entity.FailureResult("llm returned empty content")
	}

	return entity.GenerationResult{
		Success: true,
		Content: strings.TrimSpace(outMsg.Content),
		Elapsed: time.Since(start),
	}
}
