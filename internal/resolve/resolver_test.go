package resolve

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCandidates_MetadataTiers(t *testing.T) {
	got, err := Candidates(KindMetadata, "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{
		filepath.Join("FinalOutput", "report_info.json"),
		filepath.Join("step6_report", "report_info.json"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidates_ReportDefaultFilename(t *testing.T) {
	implicit, err := Candidates(KindReport, "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	explicit, err := Candidates(KindReport, DefaultReportFile)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if diff := cmp.Diff(explicit, implicit); diff != "" {
		t.Errorf("default filename must resolve like the explicit one (-explicit +implicit):\n%s", diff)
	}
	if len(implicit) != 1 || implicit[0] != filepath.Join("FinalOutput", "overview_report.html") {
		t.Errorf("unexpected report candidates: %v", implicit)
	}
}

func TestCandidates_NestedReportFile(t *testing.T) {
	got, err := Candidates(KindReport, "figures/fig1.html")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if got[0] != filepath.Join("FinalOutput", "figures", "fig1.html") {
		t.Errorf("unexpected nested candidate: %v", got)
	}
}

func TestCandidates_Image(t *testing.T) {
	got, err := Candidates(KindImage, "12345_fig1.jpg")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := filepath.Join("step3_figures", "images", "12345_fig1.jpg")
	if len(got) != 1 || got[0] != want {
		t.Errorf("expected [%s], got %v", want, got)
	}
}

func TestCheckProjectName(t *testing.T) {
	valid := []string{
		"20260101_120000_cancer",
		"2026-01-01_foo",
		"test_project",
	}
	for _, name := range valid {
		if err := CheckProjectName(name); err != nil {
			t.Errorf("CheckProjectName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		".",
		"..",
		"../other",
		"a/b",
		`a\b`,
		"/etc",
		"..\\secrets",
	}
	for _, name := range invalid {
		if err := CheckProjectName(name); err == nil {
			t.Errorf("CheckProjectName(%q) = nil, want error", name)
		}
	}
}

func TestCheckFilename(t *testing.T) {
	valid := []string{
		"overview_report.html",
		"12345_details.html",
		"figures/fig1.png",
	}
	for _, name := range valid {
		if err := CheckFilename(name); err != nil {
			t.Errorf("CheckFilename(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"..",
		"../project_summary.json",
		"a/../../b",
		"/etc/passwd",
		"./report.html",
		`a\b.html`,
	}
	for _, name := range invalid {
		if err := CheckFilename(name); err == nil {
			t.Errorf("CheckFilename(%q) = nil, want error", name)
		}
	}
}

func TestCandidates_RejectsTraversal(t *testing.T) {
	if _, err := Candidates(KindReport, "../project_summary.json"); err == nil {
		t.Error("expected traversal rejection for report filename")
	}
	if _, err := Candidates(KindImage, "../../FinalOutput/report_info.json"); err == nil {
		t.Error("expected traversal rejection for image filename")
	}
}
