// Package resolve maps (project, artifact) requests to project-relative file
// paths. It is pure path computation: nothing here touches the file system,
// callers check existence against the returned candidates in order.
package resolve

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// Directory layout of one project, as produced by the generation pipeline.
const (
	Step1SearchDir   = "step1_search"
	Step2DetailsDir  = "step2_details"
	Step3FiguresDir  = "step3_figures"
	Step4PromptsDir  = "step4_prompts"
	Step5OverviewDir = "step5_overview"
	Step6ReportDir   = "step6_report"
	FinalOutputDir   = "FinalOutput"

	ImagesSubdir = "images"
	PDFsSubdir   = "pdfs"

	// DefaultReportFile is served when a report request names no file.
	DefaultReportFile = "overview_report.html"

	// MetadataFile lives in FinalOutput, with a step6_report fallback kept
	// for projects generated before the output directory moved.
	MetadataFile = "report_info.json"

	// SummaryFile sits at the project root and tracks pipeline progress.
	SummaryFile = "project_summary.json"
)

var (
	// ErrUnsafeName reports a project name that is not a plain directory name.
	ErrUnsafeName = errors.New("unsafe project name")

	// ErrUnsafePath reports a filename that would escape its artifact directory.
	ErrUnsafePath = errors.New("unsafe file path")
)

// Kind identifies an artifact category with a known location convention.
type Kind int

const (
	// KindReport is an HTML report page under FinalOutput.
	KindReport Kind = iota
	// KindMetadata is the report_info.json metadata file.
	KindMetadata
	// KindImage is a figure image under step3_figures/images.
	KindImage
	// KindPaper is a per-paper detail page under FinalOutput.
	KindPaper
)

func (k Kind) String() string {
	switch k {
	case KindReport:
		return "report"
	case KindMetadata:
		return "metadata"
	case KindImage:
		return "image"
	case KindPaper:
		return "paper"
	default:
		return "unknown"
	}
}

// tier is one location a kind of artifact may live in, tried in order.
// Keeping this a list makes adding another fallback location additive.
type tier struct {
	dir string
}

var kindTiers = map[Kind][]tier{
	KindReport:   {{dir: FinalOutputDir}},
	KindMetadata: {{dir: FinalOutputDir}, {dir: Step6ReportDir}},
	KindImage:    {{dir: path.Join(Step3FiguresDir, ImagesSubdir)}},
	KindPaper:    {{dir: FinalOutputDir}},
}

// CheckProjectName rejects names that are not a single local path element.
// Project directories are created by the pipeline as "<timestamp>_<slug>",
// so anything with separators, "..", or absolute form is an attack, not a typo.
func CheckProjectName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrUnsafeName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrUnsafeName
	}
	if !filepath.IsLocal(name) {
		return ErrUnsafeName
	}
	return nil
}

// CheckFilename rejects filenames that would resolve outside their artifact
// directory. Nested paths are allowed (detail pages link relatively), but the
// cleaned path must stay local.
func CheckFilename(name string) error {
	if name == "" {
		return ErrUnsafePath
	}
	if strings.Contains(name, `\`) {
		return ErrUnsafePath
	}
	cleaned := path.Clean(name)
	if cleaned != name {
		return ErrUnsafePath
	}
	if !filepath.IsLocal(filepath.FromSlash(cleaned)) {
		return ErrUnsafePath
	}
	return nil
}

// Candidates returns the project-relative paths to try for one artifact, in
// priority order. filename is ignored for KindMetadata, and defaults to
// DefaultReportFile for KindReport when empty. Inputs are validated before
// any path is assembled.
func Candidates(kind Kind, filename string) ([]string, error) {
	switch kind {
	case KindMetadata:
		filename = MetadataFile
	case KindReport:
		if filename == "" {
			filename = DefaultReportFile
		}
	}
	if err := CheckFilename(filename); err != nil {
		return nil, err
	}

	tiers, ok := kindTiers[kind]
	if !ok {
		return nil, ErrUnsafePath
	}
	paths := make([]string, 0, len(tiers))
	for _, t := range tiers {
		paths = append(paths, filepath.Join(filepath.FromSlash(t.dir), filepath.FromSlash(filename)))
	}
	return paths, nil
}

// StepDirs lists every directory the pipeline creates inside a project,
// in pipeline order. Used when scaffolding a project and by the check command.
func StepDirs() []string {
	return []string{
		Step1SearchDir,
		filepath.Join(Step2DetailsDir, PDFsSubdir),
		filepath.Join(Step3FiguresDir, ImagesSubdir),
		Step4PromptsDir,
		Step5OverviewDir,
		Step6ReportDir,
		FinalOutputDir,
	}
}
