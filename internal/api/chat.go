package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"chat-backend/internal/chat"
	"chat-backend/internal/session"
	"chat-backend/pkg/api"
)

const (
	maxUploadFiles = 10
	maxUploadBytes = 32 << 20
)

// Uploader forwards a staged file to the provider's file storage.
type Uploader interface {
	Upload(ctx context.Context, path, mimeType, displayName string) (api.FileReference, error)
}

type ChatService struct {
	store    session.Store
	relay    *chat.Relay
	uploader Uploader
	tmpDir   string
}

func NewChatService(store session.Store, relay *chat.Relay, uploader Uploader, tmpDir string) *ChatService {
	return &ChatService{
		store:    store,
		relay:    relay,
		uploader: uploader,
		tmpDir:   tmpDir,
	}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/session", RestHandler(s.CreateSession))
		r.Get("/history", RestHandler(s.GetHistory))
		r.Post("/reset", RestHandler(s.ResetSession))
		r.Post("/upload", RestHandler(s.UploadFiles))
		r.Post("/chat", RestHandler(s.Chat))
	})
}

func (s *ChatService) CreateSession(r *http.Request) (any, error) {
	sessionID := s.store.Create()
	slog.Info("created session", "session_id", sessionID)
	return api.CreateSessionResponse{SessionID: sessionID}, nil
}

func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[api.HistoryRequest](r)
	if err != nil {
		return nil, err
	}

	// Unknown ids read as an empty history, never an error. Clients rely on
	// this when polling before their first turn.
	return api.HistoryResponse{History: s.store.History(req.SessionID)}, nil
}

func (s *ChatService) ResetSession(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ResetRequest](r)
	if err != nil {
		return nil, err
	}

	s.store.Reset(req.SessionID)
	return api.ResetResponse{Ok: true}, nil
}

func (s *ChatService) UploadFiles(r *http.Request) (any, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Error("error parsing multipart form", "error", err)
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form")
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Error("error removing multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) > maxUploadFiles {
		return nil, CodedErrorf(http.StatusBadRequest, "at most %d files per upload", maxUploadFiles)
	}

	// All-or-nothing: the first failing upload fails the whole request.
	uploaded := make([]api.FileReference, 0, len(headers))
	for _, hdr := range headers {
		ref, err := s.uploadOne(r.Context(), hdr)
		if err != nil {
			slog.Error("error relaying file upload", "file", hdr.Filename, "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "upload failed")
		}
		uploaded = append(uploaded, ref)
	}

	return api.UploadResponse{Files: uploaded}, nil
}

// uploadOne stages one multipart part to a temp file and relays it upstream.
// The temp file is removed on success and failure alike.
func (s *ChatService) uploadOne(ctx context.Context, hdr *multipart.FileHeader) (api.FileReference, error) {
	path, err := stageFile(hdr, s.tmpDir)
	if err != nil {
		return api.FileReference{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Error("error removing staged upload", "path", path, "error", err)
		}
	}()

	return s.uploader.Upload(ctx, path, hdr.Header.Get("Content-Type"), hdr.Filename)
}

func stageFile(hdr *multipart.FileHeader, dir string) (string, error) {
	src, err := hdr.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return dst.Name(), nil
}

func (s *ChatService) Chat(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return nil, err
	}

	reply, err := s.relay.Converse(r.Context(), req.SessionID, req.Text, req.Files)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidInput) {
			return nil, CodedError(http.StatusBadRequest, err)
		}
		slog.Error("error relaying chat turn", "session_id", req.SessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "chat request failed")
	}

	return api.ChatResponse{Text: reply}, nil
}
