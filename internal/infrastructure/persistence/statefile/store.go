// Package statefile 提供时间线状态的扁平 JSON 文件存取
//
// 单进程 CLI 假设：同一状态文件不会有并发写入方，
// 因此采用读-改-全量覆写，不加文件锁。
package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"timeline-press/internal/domain/entity"
)

// Store 时间线状态文件存储
type Store struct {
	path string
}

// NewStore 创建状态文件存储
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path 状态文件路径
func (s *Store) Path() string {
	return s.path
}

// Load 加载状态文件；文件不存在时合成零值初始状态
func (s *Store) Load() (*entity.TimelineState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entity.NewTimelineState(), nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	var state entity.TimelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	if state.Branches == nil {
		state.Branches = entity.NewTimelineState().Branches
	}
	return &state, nil
}

// Raw 读取状态文件原始字节；文件不存在时返回零值状态的 JSON
func (s *Store) Raw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return json.MarshalIndent(entity.NewTimelineState(), "", "  ")
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}
	return data, nil
}

// Save 全量覆写状态文件
func (s *Store) Save(state *entity.TimelineState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", s.path, err)
	}
	return nil
}
