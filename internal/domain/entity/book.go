// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"

	"bookgen/internal/textutil"
)

// MemorySentinel 首章生成前的故事记忆占位值
const MemorySentinel = "No chapters yet."

// GenerationState 单本书的持久化生成状态。
// 不变式：len(Chapters) == len(ChapterSummaries)，章节号 1 基且连续；
// 章节与其摘要、记忆更新必须通过 AppendChapter 一并写入。
type GenerationState struct {
	Title            string    `json:"title"`
	Genre            string    `json:"genre"`
	Chapters         []string  `json:"chapters"`
	ChapterSummaries []string  `json:"chapter_summaries"`
	StoryMemory      string    `json:"story_memory"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
	WordCount        int       `json:"word_count"`
}

// NewGenerationState 创建空白生成状态
func NewGenerationState(title, genre string) *GenerationState {
	return &GenerationState{
		Title:            title,
		Genre:            genre,
		Chapters:         []string{},
		ChapterSummaries: []string{},
		StoryMemory:      MemorySentinel,
		CreatedAt:        time.Now(),
	}
}

// NextChapterNumber 下一个待生成章节号（1 基）
func (s *GenerationState) NextChapterNumber() int {
	return len(s.Chapters) + 1
}

// ChapterCount 已接受章节数
func (s *GenerationState) ChapterCount() int {
	return len(s.Chapters)
}

// AppendChapter 接受一个完整章节：正文、摘要与记忆更新一并写入，
// 同时刷新 UpdatedAt 与全稿词数。调用后状态可安全持久化。
func (s *GenerationState) AppendChapter(chapterText, summary, memory string) {
	s.Chapters = append(s.Chapters, chapterText)
	s.ChapterSummaries = append(s.ChapterSummaries, summary)
	s.StoryMemory = memory
	s.UpdatedAt = time.Now()
	s.WordCount = textutil.CountWords(s.ManuscriptText())
}

// ManuscriptText 由状态派生的全稿文本：标题行、空行、章节以空行连接
func (s *GenerationState) ManuscriptText() string {
	header := s.Title + "\n\n"
	return header + strings.TrimSpace(strings.Join(s.Chapters, "\n\n")) + "\n"
}

// Consistent 校验章节与摘要的对齐不变式
func (s *GenerationState) Consistent() bool {
	return len(s.Chapters) == len(s.ChapterSummaries)
}

// Metadata 书籍生成结束后写出的终态元数据文档
type Metadata struct {
	Title            string    `json:"title"`
	Genre            string    `json:"genre"`
	Model            string    `json:"model"`
	Endpoint         string    `json:"endpoint"`
	TotalWords       int       `json:"total_words"`
	Chapters         int       `json:"chapters"`
	TargetMinWords   int       `json:"target_min_words"`
	GeneratedAt      time.Time `json:"generated_at"`
	StateFile        string    `json:"state_file"`
	RunID            string    `json:"run_id,omitempty"`
	ChapterSummaries []string  `json:"chapter_summaries"`
}
