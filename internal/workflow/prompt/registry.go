// Package prompt 提供提示词模板注册表。
// 模板以 system/user 成对的文本文件内嵌，按需解析并缓存。
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptChapterGenV1     PromptID = "chapter_gen_v1"
	PromptChapterSummaryV1 PromptID = "chapter_summary_v1"
	PromptMemoryMergeV1    PromptID = "memory_merge_v1"
)

// Pair 一组 system/user 提示词模板
type Pair struct {
	system *template.Template
	user   *template.Template
}

// Format 渲染 system 与 user 提示词
func (p *Pair) Format(vars any) (system string, user string, err error) {
	if p == nil {
		return "", "", fmt.Errorf("prompt pair is nil")
	}
	var sb, ub strings.Builder
	if err := p.system.Execute(&sb, vars); err != nil {
		return "", "", fmt.Errorf("render system prompt: %w", err)
	}
	if err := p.user.Execute(&ub, vars); err != nil {
		return "", "", fmt.Errorf("render user prompt: %w", err)
	}
	return sb.String(), ub.String(), nil
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]*Pair
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]*Pair),
	}
}

func (r *Registry) Prompt(id PromptID) (*Pair, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if p, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache[id]; ok {
		return p, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := parseEmbeddedTemplate(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := parseEmbeddedTemplate(userPath)
	if err != nil {
		return nil, err
	}

	p := &Pair{system: system, user: user}
	r.cache[id] = p
	return p, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptChapterGenV1:
		return "templates/chapter_gen_v1.system.txt", "templates/chapter_gen_v1.user.txt", nil
	case PromptChapterSummaryV1:
		return "templates/chapter_summary_v1.system.txt", "templates/chapter_summary_v1.user.txt", nil
	case PromptMemoryMergeV1:
		return "templates/memory_merge_v1.system.txt", "templates/memory_merge_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func parseEmbeddedTemplate(path string) (*template.Template, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return template.New(path).Parse(strings.TrimSpace(string(b)))
}
