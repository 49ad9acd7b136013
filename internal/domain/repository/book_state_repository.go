// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"bookgen/internal/domain/entity"
)

// BookStateRepository 单本书的持久化仓储。
// 状态文档是唯一权威来源；手稿与元数据是派生产物。
type BookStateRepository interface {
	// LoadState 读取状态；不存在时返回 (nil, nil)
	LoadState(ctx context.Context, slug string) (*entity.GenerationState, error)
	// SaveState 原子落盘状态（写临时文件后替换）
	SaveState(ctx context.Context, slug string, state *entity.GenerationState) error
	// WriteManuscript 重写派生手稿，返回手稿路径
	WriteManuscript(ctx context.Context, slug string, text string) (string, error)
	// WriteMetadata 写出终态元数据
	WriteMetadata(ctx context.Context, slug string, meta *entity.Metadata) error
	// StatePath 状态文档路径
	StatePath(slug string) string
	// ManuscriptPath 手稿路径
	ManuscriptPath(slug string) string
}
