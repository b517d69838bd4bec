package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/promark/internal/dropzone"
	"github.com/dgallion1/promark/internal/parser"
	"github.com/dgallion1/promark/internal/pipeline"
)

// multipartOverhead is allowed on top of MaxUploadBytes for form framing.
const multipartOverhead = 1 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = baseName(header.Filename)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	content, err := parser.Import(file, name, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		s.log.Warn("upload import failed", "file", name, "error", err)
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	doc := pipeline.AcceptUpload(content, name)
	s.state.Replace(doc.Content, doc.FileName)
	s.log.Info("document uploaded", "file", doc.FileName, "bytes", len(doc.Content))
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

type dragRequest struct {
	Target   string `json:"target"`
	HasFiles bool   `json:"has_files"`
}

// dragEvent decodes a drag request into an event on the surface. An empty
// body targets the root.
func (s *Server) dragEvent(w http.ResponseWriter, r *http.Request) (dropzone.Event, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEditBytes)

	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return dropzone.Event{}, false
	}
	return dropzone.Event{
		Target:   s.dropzone.Surface().Element(req.Target),
		HasFiles: req.HasFiles,
	}, true
}

func (s *Server) handleDragState(w http.ResponseWriter, r *http.Request) {
	s.writeDragState(w, http.StatusOK, nil)
}

func (s *Server) handleDragEnter(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.dragEvent(w, r)
	if !ok {
		return
	}
	s.dropzone.DragEnter(ev)
	s.writeDragState(w, http.StatusOK, nil)
}

func (s *Server) handleDragOver(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.dragEvent(w, r)
	if !ok {
		return
	}
	prevent := s.dropzone.DragOver(ev)
	s.writeDragState(w, http.StatusOK, map[string]any{"prevent_default": prevent})
}

func (s *Server) handleDragLeave(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.dragEvent(w, r)
	if !ok {
		return
	}
	s.dropzone.DragLeave(ev)
	s.writeDragState(w, http.StatusOK, nil)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	err := r.ParseMultipartForm(32 << 20)
	switch {
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, io.EOF):
		// No file payload: the drag ends and nothing is loaded.
		s.dropzone.Drop(dropzone.Event{Target: s.dropzone.Surface().Root()})
		s.writeDragState(w, http.StatusOK, map[string]any{"accepted": false})
		return
	case err != nil:
		// The drop still ends the drag.
		s.dropzone.Drop(dropzone.Event{Target: s.dropzone.Surface().Root()})
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	ev := dropzone.Event{
		Target: s.dropzone.Surface().Element(r.FormValue("target")),
		Files:  s.dropFiles(r.MultipartForm.File["files"]),
	}
	job, accepted := s.dropzone.Drop(ev)
	if !accepted {
		s.writeDragState(w, http.StatusOK, map[string]any{"accepted": false})
		return
	}

	snap := job.Snapshot()
	s.writeDragState(w, http.StatusAccepted, map[string]any{
		"accepted": true,
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/ingest/%s/status", snap.ID),
	})
}

// dropFiles adapts multipart parts to pipeline files. Form temp files are
// removed when the handler returns, so the first part, the only one
// AcceptDrop reads, is buffered here. Later parts keep only their names.
func (s *Server) dropFiles(headers []*multipart.FileHeader) []pipeline.File {
	files := make([]pipeline.File, 0, len(headers))
	for i, fh := range headers {
		name := baseName(fh.Filename)
		if i > 0 {
			files = append(files, &pipeline.BytesFile{FileName: name})
			continue
		}
		data, err := readPart(fh, s.cfg.MaxUploadBytes)
		if err != nil {
			files = append(files, &failedFile{name: name, err: err})
			continue
		}
		files = append(files, &pipeline.BytesFile{FileName: name, Data: data})
	}
	return files
}

// readPart reads at most limit+1 bytes so the worker can tell an oversized
// file from one exactly at the limit.
func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

// failedFile reports a read error that happened before the job ran.
type failedFile struct {
	name string
	err  error
}

func (f *failedFile) Name() string { return f.name }

func (f *failedFile) Open() (io.ReadCloser, error) { return nil, f.err }

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) writeDragState(w http.ResponseWriter, code int, extra map[string]any) {
	body := map[string]any{
		"active": s.dropzone.Active(),
		"state":  s.dropzone.State(),
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, code, body)
}

// baseName strips any directory a client put in a filename, in either
// separator style. The rest of the name is kept verbatim.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
