package web

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/wlxklyh/pubmed2zhihu/internal/project"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexData struct {
	Projects []project.Info
}

type projectData struct {
	Name string
	Data *project.Data
}

type promptsData struct {
	Name           string
	Prompts        []project.Prompt
	OverviewPrompt string
}

type errorData struct {
	Message string
}

func (s *Server) renderIndex(w http.ResponseWriter, projects []project.Info) {
	s.render(w, http.StatusOK, "index.html", indexData{Projects: projects})
}

func (s *Server) renderProject(w http.ResponseWriter, name string, data *project.Data) {
	s.render(w, http.StatusOK, "project.html", projectData{Name: name, Data: data})
}

func (s *Server) renderPrompts(w http.ResponseWriter, name string, prompts []project.Prompt, overview string) {
	s.render(w, http.StatusOK, "prompts.html", promptsData{
		Name:           name,
		Prompts:        prompts,
		OverviewPrompt: overview,
	})
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "error.html", errorData{Message: message})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template render failed",
			zap.String("template", name),
			zap.Error(err))
	}
}
