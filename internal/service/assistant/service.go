package assistant

import (
	"context"
	"errors"

	"secassist/internal/config"
	"secassist/internal/document"
	"secassist/internal/models"
	"secassist/internal/session"
)

var (
	ErrFileRequired    = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyMessage    = errors.New("no message provided")
	ErrStorage         = errors.New("document storage failure")
)

// Completer is the upstream completion call used by Chat.
type Completer interface {
	Complete(ctx context.Context, history []*models.Message, prompt string) (*models.Message, error)
}

// DocumentReader validates upload extensions and extracts document text.
type DocumentReader interface {
	Allowed(ext string) bool
	Read(ctx context.Context, path string) (document.Extract, error)
}

type Options struct {
	UploadDir      string
	MaxUploadBytes int64
}

// Service implements upload, chat and clear over one shared session store.
type Service struct {
	store     *session.Store
	completer Completer
	readers   DocumentReader
	uploadDir string
	maxUpload int64
}

// NewService builds a new assistant service.
func NewService(store *session.Store, completer Completer, readers DocumentReader, opts Options) *Service {
	if opts.UploadDir == "" {
		opts.UploadDir = config.DefaultUploadDir
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	return &Service{
		store:     store,
		completer: completer,
		readers:   readers,
		uploadDir: opts.UploadDir,
		maxUpload: opts.MaxUploadBytes,
	}
}

func (s *Service) MaxUploadBytes() int64 {
	return s.maxUpload
}

// ListDocuments returns metadata for every uploaded file.
func (s *Service) ListDocuments() []*models.UploadedFile {
	return s.store.ListFiles()
}
