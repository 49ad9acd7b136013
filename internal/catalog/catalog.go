// Package catalog 提供书籍规格目录的加载功能。
// 目录是只读配置数据：每本书的题材、标题、前提、基调与逐章情节目标。
package catalog

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "bookgen/pkg/errors"
)

//go:embed books.yaml
var defaultCatalogFS embed.FS

// BookSpec 书籍规格，构造后不可变
type BookSpec struct {
	Genre        string   `yaml:"genre"`
	Title        string   `yaml:"title"`
	Premise      string   `yaml:"premise"`
	Tone         string   `yaml:"tone"`
	ChapterPlans []string `yaml:"chapter_plans"`
}

type catalogFile struct {
	Books []BookSpec `yaml:"books"`
}

// Load 加载书籍目录。
// path 为空时使用内置默认目录（三本书：惊悚、爱情、奇幻）。
func Load(path string) ([]BookSpec, error) {
	var raw []byte
	var err error

	if strings.TrimSpace(path) == "" {
		raw, err = defaultCatalogFS.ReadFile("books.yaml")
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeCatalogInvalid, "failed to read embedded catalog")
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeCatalogInvalid, fmt.Sprintf("failed to read catalog file %s", path))
		}
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCatalogInvalid, "failed to parse catalog")
	}
	if len(file.Books) == 0 {
		return nil, apperrors.New(apperrors.CodeCatalogInvalid, "catalog contains no books")
	}

	for i := range file.Books {
		if err := validateSpec(&file.Books[i]); err != nil {
			return nil, err
		}
	}

	return file.Books, nil
}

func validateSpec(spec *BookSpec) error {
	if strings.TrimSpace(spec.Title) == "" {
		return apperrors.New(apperrors.CodeCatalogInvalid, "book title is required")
	}
	if strings.TrimSpace(spec.Genre) == "" {
		return apperrors.Newf(apperrors.CodeCatalogInvalid, "book %q: genre is required", spec.Title)
	}
	if strings.TrimSpace(spec.Premise) == "" {
		return apperrors.Newf(apperrors.CodeCatalogInvalid, "book %q: premise is required", spec.Title)
	}
	if len(spec.ChapterPlans) == 0 {
		return apperrors.Newf(apperrors.CodeCatalogInvalid, "book %q: chapter_plans is required", spec.Title)
	}
	return nil
}
