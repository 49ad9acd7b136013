package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// stubGenerator 按操作类型返回可控文本的测试替身
type stubGenerator struct {
	mu sync.Mutex

	// chapterWords 每章正文词数（标题行之外）
	chapterWords int
	// chapterTextFn 可选的自定义章节文本
	chapterTextFn func(call int, req GenerateRequest) (string, error)
	// failOps 指定操作的固定错误
	failOps map[string]error

	calls       []GenerateRequest
	chapterCall int
	summaryCall int
	mergeCall   int
}

func newStubGenerator(chapterWords int) *stubGenerator {
	return &stubGenerator{
		chapterWords: chapterWords,
		failOps:      map[string]error{},
	}
}

func (s *stubGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)

	if err, ok := s.failOps[req.Operation]; ok && err != nil {
		return "", err
	}

	switch req.Operation {
	case OpChapter:
		s.chapterCall++
		if s.chapterTextFn != nil {
			return s.chapterTextFn(s.chapterCall, req)
		}
		return "Chapter 1: Stub\n\n" + wordRun(s.chapterWords), nil
	case OpSummary:
		s.summaryCall++
		return fmt.Sprintf("summary %d", s.summaryCall), nil
	case OpMemoryMerge:
		s.mergeCall++
		return fmt.Sprintf("merged memory %d", s.mergeCall), nil
	default:
		return "", fmt.Errorf("unexpected operation %q", req.Operation)
	}
}

func (s *stubGenerator) callsFor(op string) []GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []GenerateRequest
	for _, c := range s.calls {
		if c.Operation == op {
			out = append(out, c)
		}
	}
	return out
}

// wordRun 生成 n 个词的文本
func wordRun(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}
