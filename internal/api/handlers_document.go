package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/promark/internal/document"
)

// maxEditBytes bounds JSON bodies that are not file uploads.
const maxEditBytes = 1 << 10

// jsonEscapeFactor is the worst-case growth of a string once JSON-escaped
// (one byte becomes \u00XX).
const jsonEscapeFactor = 6

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

// handleSetContent applies an edit. The limit is on the decoded text, the
// same one uploads get, not on its JSON encoding.
func (s *Server) handleSetContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*jsonEscapeFactor+maxEditBytes)

	var req struct {
		Content *string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == nil {
		jsonError(w, "content is required", http.StatusBadRequest)
		return
	}
	if int64(len(*req.Content)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("content exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	s.state.SetContent(*req.Content)
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEditBytes)

	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The page shows the prompt itself; the request carries the answer.
	cleared := s.state.Clear(r.Context(), document.ConfirmFunc(func(context.Context, string) bool {
		return req.Confirm
	}))
	writeJSON(w, http.StatusOK, map[string]any{
		"cleared":  cleared,
		"prompt":   document.ClearPrompt,
		"document": s.state.Snapshot(),
	})
}

// handleEvents streams a snapshot on connect and after every change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snaps, cancel := s.state.Subscribe()
	defer cancel()

	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				s.log.Error("encode snapshot", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: document\ndata: %s\n\n", snap.Revision, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	out, err := s.renderer.HTML(s.state.Document().Content)
	if err != nil {
		s.log.Error("render preview", "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.outliner.Outline(s.state.Document().Content))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
