// Package bookfile 提供基于本地文件的单书持久化存储。
// 每本书三个产物：<slug>.state.json（权威状态）、<slug>.txt（派生手稿）、
// <slug>.meta.json（终态元数据）。
package bookfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bookgen/internal/domain/entity"
	"bookgen/internal/domain/repository"
	apperrors "bookgen/pkg/errors"
)

// Store 文件存储
type Store struct {
	dir string
}

var _ repository.BookStateRepository = (*Store)(nil)

// NewStore 创建存储，确保输出目录存在
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStateStoreFailed,
			fmt.Sprintf("failed to create output directory %s", dir))
	}
	return &Store{dir: dir}, nil
}

// StatePath 状态文档路径
func (s *Store) StatePath(slug string) string {
	return filepath.Join(s.dir, slug+".state.json")
}

// ManuscriptPath 手稿路径
func (s *Store) ManuscriptPath(slug string) string {
	return filepath.Join(s.dir, slug+".txt")
}

// MetadataPath 元数据路径
func (s *Store) MetadataPath(slug string) string {
	return filepath.Join(s.dir, slug+".meta.json")
}

// LoadState 读取状态；文件不存在返回 (nil, nil)
func (s *Store) LoadState(_ context.Context, slug string) (*entity.GenerationState, error) {
	raw, err := os.ReadFile(s.StatePath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to read state file")
	}

	var state entity.GenerationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to parse state file")
	}
	if !state.Consistent() {
		return nil, apperrors.Newf(apperrors.CodeStateStoreFailed,
			"state file %s is inconsistent: %d chapters vs %d summaries",
			s.StatePath(slug), len(state.Chapters), len(state.ChapterSummaries))
	}
	return &state, nil
}

// SaveState 原子落盘：写临时文件后重命名替换，保证状态文档永不可见半写入
func (s *Store) SaveState(_ context.Context, slug string, state *entity.GenerationState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to marshal state")
	}

	final := s.StatePath(slug)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to write temporary state file")
	}
	if err := os.Rename(tmp, final); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to replace state file")
	}
	return nil
}

// WriteManuscript 重写派生手稿；手稿永远可由状态重建，仅用于崩溃时的可见性
func (s *Store) WriteManuscript(_ context.Context, slug string, text string) (string, error) {
	path := s.ManuscriptPath(slug)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to write manuscript")
	}
	return path, nil
}

// WriteMetadata 写出终态元数据
func (s *Store) WriteMetadata(_ context.Context, slug string, meta *entity.Metadata) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to marshal metadata")
	}
	if err := os.WriteFile(s.MetadataPath(slug), raw, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStateStoreFailed, "failed to write metadata")
	}
	return nil
}
