// Package textutil 提供生成流程共享的文本工具函数。
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 词的定义：字母数字与撇号的最长连续串，大小写不敏感
var wordRe = regexp.MustCompile(`[A-Za-z0-9']+`)

// 文件名安全的 slug：非小写字母数字折叠为下划线
var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// CountWords 统计文本词数
func CountWords(text string) int {
	return len(wordRe.FindAllString(text, -1))
}

// Slug 将标题转换为文件系统安全的标识
func Slug(title string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(title), "_")
	return strings.Trim(s, "_")
}

// TruncateByRunes 按 rune 数量截断字符串
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
