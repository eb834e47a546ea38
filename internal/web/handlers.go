package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/wlxklyh/pubmed2zhihu/internal/project"
	"github.com/wlxklyh/pubmed2zhihu/internal/resolve"
)

const pendingReportMessage = "The report has not been generated yet. " +
	"Open the project page and run steps 4-6 to generate it."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	projects, err := s.listProjects()
	if err != nil {
		s.serverError(w, "failed to list projects", err)
		return
	}
	s.renderIndex(w, projects)
}

func (s *Server) handleProjectPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.requireProject(w, name) {
		return
	}
	data, err := s.store.Data(name)
	if err != nil {
		s.serverError(w, "failed to load project data", err)
		return
	}
	s.renderProject(w, name, data)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	file := r.PathValue("file")

	// The bare /report URL means the default overview page, and only that
	// page earns the "not generated yet" wording when missing. A missing
	// explicitly named file is just a missing file.
	pendingMsg := ""
	if file == "" || file == resolve.DefaultReportFile {
		pendingMsg = pendingReportMessage
	}
	s.serveArtifact(w, r, name, resolve.KindReport, file, pendingMsg)
}

func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	file := r.PathValue("file")
	s.serveArtifact(w, r, name, resolve.KindPaper, file, "")
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	file := r.PathValue("file")
	s.serveArtifact(w, r, name, resolve.KindImage, file, "")
}

func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.requireProject(w, name) {
		return
	}
	prompts, overview, err := s.store.Prompts(name)
	if err != nil {
		s.serverError(w, "failed to load prompts", err)
		return
	}
	s.renderPrompts(w, name, prompts, overview)
}

func (s *Server) handleAPIProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.listProjects()
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []project.Info{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleAPIProject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := resolve.CheckProjectName(name); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid project name")
		return
	}
	exists, err := s.store.Exists(name)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to check project")
		return
	}
	if !exists {
		s.jsonError(w, http.StatusNotFound, "project does not exist")
		return
	}
	data, err := s.store.Data(name)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to load project data")
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleAPIMetadata(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := resolve.CheckProjectName(name); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid project name")
		return
	}
	if exists, err := s.store.Exists(name); err != nil || !exists {
		if err != nil {
			s.jsonError(w, http.StatusInternalServerError, "failed to check project")
			return
		}
		s.jsonError(w, http.StatusNotFound, "project does not exist")
		return
	}
	raw, err := s.store.ReadMetadata(name)
	switch {
	case errors.Is(err, project.ErrNotFound):
		s.jsonError(w, http.StatusNotFound, "report metadata not generated yet")
	case err != nil:
		s.logger.Error("metadata read failed", zap.String("project", name), zap.Error(err))
		s.jsonError(w, http.StatusInternalServerError, "failed to read metadata")
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(raw)
	}
}

// serveArtifact is the single artifact-serving path: validate, resolve,
// check existence in tier order, then stream or explain.
func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, name string, kind resolve.Kind, file, pendingMsg string) {
	if !s.requireProject(w, name) {
		return
	}

	path, ok, err := s.store.FindArtifact(name, kind, file)
	switch {
	case errors.Is(err, resolve.ErrUnsafeName), errors.Is(err, resolve.ErrUnsafePath):
		s.renderError(w, http.StatusBadRequest, "Invalid project or file name.")
		return
	case err != nil:
		s.serverError(w, "artifact resolution failed", err)
		return
	}

	s.logger.Info("artifact request",
		zap.String("project", name),
		zap.Stringer("kind", kind),
		zap.String("file", file),
		zap.String("resolved", path),
		zap.Bool("exists", ok))

	if !ok {
		msg := pendingMsg
		if msg == "" {
			msg = "File not found: " + file
		}
		s.renderError(w, http.StatusNotFound, msg)
		return
	}

	http.ServeFile(w, r, path)
}

// requireProject validates the name and renders an error page unless the
// project directory exists. Validation happens before any filesystem access.
func (s *Server) requireProject(w http.ResponseWriter, name string) bool {
	if err := resolve.CheckProjectName(name); err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid project or file name.")
		return false
	}
	exists, err := s.store.Exists(name)
	if err != nil {
		s.serverError(w, "failed to check project", err)
		return false
	}
	if !exists {
		s.renderError(w, http.StatusNotFound, "Project does not exist: "+name)
		return false
	}
	return true
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	s.renderError(w, http.StatusInternalServerError, "Internal server error.")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
