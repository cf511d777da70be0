package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kantai-tool/fleetdeck/internal/application/auth"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/commands"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/queries"
	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/logging"
)

var kindPattern = func() string {
	names := make([]string, 0, len(storage.Kinds()))
	for _, k := range storage.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, "|")
}()

var validate = validator.New()

type loginRequest struct {
	Username string `json:"username" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		return
	}
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "username is required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, "username is required")
		return
	}

	resp, err := s.mediator.Send(r.Context(), &commands.LoginCommand{Username: req.Username})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: resp.(*commands.LoginResponse).Token})
}

func (s *Server) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	kind, err := storage.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeText(w, http.StatusNotFound, err.Error())
		return
	}
	username, err := auth.UsernameFromContext(r.Context())
	if err != nil {
		writeText(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	resp, err := s.mediator.Send(r.Context(), &queries.LoadDocumentQuery{Username: username, Kind: kind})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc := resp.(*queries.LoadDocumentResponse)
	if s.metrics.IsEnabled() {
		s.metrics.Documents.RecordLoad(kind.String(), doc.Found)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	kind, err := storage.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeText(w, http.StatusNotFound, err.Error())
		return
	}
	username, err := auth.UsernameFromContext(r.Context())
	if err != nil {
		writeText(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.BodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("document exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeText(w, http.StatusBadRequest, "failed to read body")
		return
	}

	resp, err := s.mediator.Send(r.Context(), &commands.SaveDocumentCommand{Username: username, Kind: kind, Data: body})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	saved := resp.(*commands.SaveDocumentResponse)
	if s.metrics.IsEnabled() {
		s.metrics.Documents.RecordSave(kind.String(), saved.Bytes)
	}
	writeText(w, http.StatusOK, fmt.Sprintf("%s saved", kind))
}

// writeError maps domain and application errors onto status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *shared.ValidationError
		invalid    *storage.ErrInvalidDocument
		storageErr *shared.StorageError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invalid), errors.Is(err, catalog.ErrMissingTables):
		writeText(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		writeText(w, http.StatusUnauthorized, "unauthenticated")
	case errors.As(err, &storageErr):
		logging.FromContext(r.Context()).Error("storage failure", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "storage failure")
	default:
		logging.FromContext(r.Context()).Error("request failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "internal error")
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
