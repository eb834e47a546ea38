package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wlxklyh/pubmed2zhihu/internal/resolve"
)

// Data aggregates every per-step JSON artifact of one project, in the shape
// the project detail API serves. Missing artifacts stay as empty JSON values
// rather than nulls so clients can index into them unconditionally.
type Data struct {
	Summary      json.RawMessage `json:"summary"`
	Search       json.RawMessage `json:"search"`
	Papers       json.RawMessage `json:"papers"`
	Figures      json.RawMessage `json:"figures"`
	PromptsInfo  json.RawMessage `json:"prompts_info"`
	OverviewInfo json.RawMessage `json:"overview_info"`
	ReportInfo   json.RawMessage `json:"report_info"`
}

var (
	emptyObject = json.RawMessage(`{}`)
	emptyArray  = json.RawMessage(`[]`)
)

// Data loads the aggregate view of one project. The report info is read
// through the tiered metadata resolver, so a project generated before the
// FinalOutput move still reports its step6_report metadata.
func (s *Store) Data(name string) (*Data, error) {
	dir, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	data := &Data{
		Summary:      emptyObject,
		Search:       emptyObject,
		Papers:       emptyArray,
		Figures:      emptyObject,
		PromptsInfo:  emptyObject,
		OverviewInfo: emptyObject,
		ReportInfo:   emptyObject,
	}

	loadInto(filepath.Join(dir, resolve.SummaryFile), &data.Summary)
	loadInto(filepath.Join(dir, resolve.Step1SearchDir, "search_results.json"), &data.Search)
	loadInto(filepath.Join(dir, resolve.Step3FiguresDir, "figures_info.json"), &data.Figures)
	loadInto(filepath.Join(dir, resolve.Step4PromptsDir, "prompts_info.json"), &data.PromptsInfo)
	loadInto(filepath.Join(dir, resolve.Step5OverviewDir, "overview_info.json"), &data.OverviewInfo)

	// Step 2 wraps the paper list in a details object.
	var details struct {
		Papers json.RawMessage `json:"papers"`
	}
	if err := readJSON(filepath.Join(dir, resolve.Step2DetailsDir, "papers_details.json"), &details); err == nil && len(details.Papers) > 0 {
		data.Papers = details.Papers
	}

	if path, ok, err := s.FindArtifact(name, resolve.KindMetadata, ""); err == nil && ok {
		loadInto(path, &data.ReportInfo)
	}

	return data, nil
}

// ReadMetadata returns the raw report_info.json of a project from the first
// metadata tier that holds it.
func (s *Store) ReadMetadata(name string) ([]byte, error) {
	path, ok, err := s.FindArtifact(name, resolve.KindMetadata, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata %s: %w", path, err)
	}
	return raw, nil
}

// Prompt is one generated per-paper prompt file.
type Prompt struct {
	PMID     string `json:"pmid"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Prompts lists the step4 per-paper prompt files and the step5 overview
// prompt. Absent directories yield empty results.
func (s *Store) Prompts(name string) ([]Prompt, string, error) {
	dir, err := s.Path(name)
	if err != nil {
		return nil, "", err
	}

	var prompts []Prompt
	promptsDir := filepath.Join(dir, resolve.Step4PromptsDir)
	entries, err := os.ReadDir(promptsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read prompts dir %s: %w", promptsDir, err)
	}
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fname, "prompt_") || !strings.HasSuffix(fname, ".txt") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(promptsDir, fname))
		if err != nil {
			continue
		}
		prompts = append(prompts, Prompt{
			PMID:     strings.TrimSuffix(strings.TrimPrefix(fname, "prompt_"), ".txt"),
			Filename: fname,
			Content:  string(content),
		})
	}

	var overview string
	if raw, err := os.ReadFile(filepath.Join(dir, resolve.Step5OverviewDir, "overview_prompt.txt")); err == nil {
		overview = string(raw)
	}

	return prompts, overview, nil
}

// Scaffold creates a project directory with every step subdirectory the
// pipeline expects, returning the project path. Used by the pipeline entry
// point and by tests that need a realistic tree.
func (s *Store) Scaffold(name string) (string, error) {
	dir, err := s.Path(name)
	if err != nil {
		return "", err
	}
	for _, step := range append([]string{"."}, resolve.StepDirs()...) {
		if err := os.MkdirAll(filepath.Join(dir, step), 0755); err != nil {
			return "", fmt.Errorf("failed to scaffold %s: %w", name, err)
		}
	}
	s.logger.Info("scaffolded project", zap.String("project", name))
	return dir, nil
}

// ClearCache removes and recreates the cache directory.
func (s *Store) ClearCache() error {
	if s.cacheDir == "" {
		return nil
	}
	if err := os.RemoveAll(s.cacheDir); err != nil {
		return fmt.Errorf("failed to clear cache %s: %w", s.cacheDir, err)
	}
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to recreate cache %s: %w", s.cacheDir, err)
	}
	return nil
}

func loadInto(path string, dst *json.RawMessage) {
	var raw json.RawMessage
	if err := readJSON(path, &raw); err == nil {
		*dst = raw
	}
}

func readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
