package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
)

func newTestClient(endpoint string) *Client {
	return NewClient(&config.ImageGenConfig{
		APIKey:       "test-key",
		Endpoint:     endpoint,
		SyncTimeout:  5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		MaxWait:      200 * time.Millisecond,
	})
}

func TestGenerateSync(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/flux/schnell", r.URL.Path)
			assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"images": []map[string]string{{"url": "https://cdn.example/out.png"}},
				"cost":   0.003,
			})
		}))
		defer srv.Close()

		result := newTestClient(srv.URL).GenerateSync(context.Background(), entity.GenerationRequest{
			ModelID: "flux/schnell",
			Prompt:  "a test prompt",
		})
		require.True(t, result.Success, "error: %s", result.Error)
		assert.Equal(t, "https://cdn.example/out.png", result.MediaURL)
		assert.Equal(t, 0.003, result.Cost)
	})

	t.Run("provider error becomes failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":"prompt rejected"}`)
		}))
		defer srv.Close()

		result := newTestClient(srv.URL).GenerateSync(context.Background(), entity.GenerationRequest{ModelID: "flux/schnell"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "422")
	})

	t.Run("missing media url becomes failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"cost": 0.1}`)
		}))
		defer srv.Close()

		result := newTestClient(srv.URL).GenerateSync(context.Background(), entity.GenerationRequest{ModelID: "flux/schnell"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "no media url")
	})
}

func TestQueueProtocol(t *testing.T) {
	t.Run("submit then poll then fetch result", func(t *testing.T) {
		var statusCalls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/slow-model/requests":
				fmt.Fprint(w, `{"request_id":"req-123"}`)
			case "/slow-model/requests/req-123/status":
				statusCalls++
				if statusCalls < 3 {
					fmt.Fprint(w, `{"status":"IN_PROGRESS"}`)
				} else {
					fmt.Fprint(w, `{"status":"COMPLETED"}`)
				}
			case "/slow-model/requests/req-123":
				fmt.Fprint(w, `{"image":{"url":"https://cdn.example/slow.png"}}`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		result := newTestClient(srv.URL).Generate(context.Background(), entity.GenerationRequest{
			ModelID: "slow-model",
			Prompt:  "a queue prompt",
		})
		require.True(t, result.Success, "error: %s", result.Error)
		assert.Equal(t, "https://cdn.example/slow.png", result.MediaURL)
		assert.GreaterOrEqual(t, statusCalls, 3)
	})

	t.Run("submit without request_id fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).SubmitToQueue(context.Background(), entity.GenerationRequest{ModelID: "slow-model"})
		assert.Error(t, err)
	})

	t.Run("failed job reported as failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/slow-model/requests":
				fmt.Fprint(w, `{"request_id":"req-9"}`)
			default:
				fmt.Fprint(w, `{"status":"FAILED"}`)
			}
		}))
		defer srv.Close()

		result := newTestClient(srv.URL).Generate(context.Background(), entity.GenerationRequest{ModelID: "slow-model"})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "failed")
	})
}

func TestWaitForCompletionTimeout(t *testing.T) {
	// 任务永不完成：等待必须在 maxWait 加一个轮询间隔内返回超时失败
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"IN_PROGRESS"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	maxWait := 100 * time.Millisecond
	pollInterval := 20 * time.Millisecond

	start := time.Now()
	result := client.WaitForCompletion(context.Background(), "slow-model", "req-stuck", maxWait, pollInterval)
	elapsed := time.Since(start)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timeout")
	assert.Contains(t, result.Error, "req-stuck")
	assert.Less(t, elapsed, maxWait+5*pollInterval, "wait must be bounded")
}

func TestWaitForCompletionCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"IN_QUEUE"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	result := newTestClient(srv.URL).WaitForCompletion(ctx, "slow-model", "req-c", time.Minute, 50*time.Millisecond)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "cancelled")
}

func TestExtractMediaURL(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"video wins over images", `{"video":{"url":"v"},"images":[{"url":"i"}]}`, "v"},
		{"images wins over image", `{"images":[{"url":"i"}],"image":{"url":"j"}}`, "i"},
		{"image wins over output", `{"image":{"url":"j"},"output":{"url":"o"}}`, "j"},
		{"output wins over url", `{"output":{"url":"o"},"url":"u"}`, "o"},
		{"bare url last", `{"url":"u"}`, "u"},
		{"empty images falls through", `{"images":[],"url":"u"}`, "u"},
		{"nothing present", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResult([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, extractMediaURL(resp))
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want entity.JobStatus
	}{
		{"IN_QUEUE", entity.JobStatusQueued},
		{"queued", entity.JobStatusQueued},
		{"PENDING", entity.JobStatusQueued},
		{"IN_PROGRESS", entity.JobStatusInProgress},
		{"processing", entity.JobStatusInProgress},
		{"COMPLETED", entity.JobStatusCompleted},
		{"ok", entity.JobStatusCompleted},
		{" succeeded ", entity.JobStatusCompleted},
		{"EXPLODED", entity.JobStatusFailed},
		{"", entity.JobStatusFailed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapStatus(tt.raw), "raw=%q", tt.raw)
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, entity.TierFast, TierFor("flux/schnell"))
	assert.Equal(t, entity.TierFast, TierFor(" flux/dev "))
	assert.Equal(t, entity.TierSlow, TierFor("kling-video/v1.6/pro"))
	assert.Equal(t, entity.TierSlow, TierFor("some-new-model"))
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, entity.JobStatusQueued.Terminal())
	assert.False(t, entity.JobStatusInProgress.Terminal())
	assert.True(t, entity.JobStatusCompleted.Terminal())
	assert.True(t, entity.JobStatusFailed.Terminal())
}
