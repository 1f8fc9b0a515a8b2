// Package local provides file based stand-ins for the spreadsheet: a YAML
// catalog and a SQLite application sink.
package local

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/vacancy-bot/internal/catalog"
)

type catalogFile struct {
	Vacancies []map[string]any `yaml:"vacancies"`
	Questions []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"questions"`
}

// FileCatalog serves the catalog and FAQ from a YAML file. The file is read
// again on every call so edits show up without a restart.
type FileCatalog struct {
	path string
}

func NewFileCatalog(path string) (*FileCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog file path is required")
	}

	return &FileCatalog{path: path}, nil
}

func (c *FileCatalog) FetchSnapshot(ctx context.Context) ([]catalog.Row, error) {
	f, err := c.read(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]catalog.Row, 0, len(f.Vacancies))
	for _, v := range f.Vacancies {
		rows = append(rows, catalog.Row(v))
	}

	return rows, nil
}

func (c *FileCatalog) FetchQuestions(ctx context.Context) ([]catalog.Question, error) {
	f, err := c.read(ctx)
	if err != nil {
		return nil, err
	}

	questions := make([]catalog.Question, 0, len(f.Questions))
	for _, q := range f.Questions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		questions = append(questions, catalog.Question{Question: q.Question, Answer: q.Answer})
	}

	return questions, nil
}

func (c *FileCatalog) read(ctx context.Context) (*catalogFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", c.path, err)
	}

	return &f, nil
}
