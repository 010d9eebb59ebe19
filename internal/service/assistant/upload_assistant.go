package assistant

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"secassist/internal/models"
)

// SaveUpload validates and stores one uploaded file. Nothing is left on disk
// or in the store when it fails. size is the size the client declared; the
// ceiling is enforced again while copying.
func (s *Service) SaveUpload(ctx context.Context, filename string, size int64, src io.Reader) (*models.UploadedFile, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if src == nil || name == "" || name == "." || name == string(filepath.Separator) {
		return nil, ErrFileRequired
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !s.readers.Allowed(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if size > s.maxUpload {
		return nil, ErrFileTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		log.Printf("create upload dir %s failed: %v", s.uploadDir, err)
		return nil, fmt.Errorf("%w: create directory: %w", ErrStorage, err)
	}
	id := uuid.NewString()
	destPath := filepath.Join(s.uploadDir, id+ext)
	written, err := s.writeFile(destPath, src)
	if err != nil {
		return nil, err
	}

	record := &models.UploadedFile{
		ID:         id,
		FileName:   name,
		StoredPath: destPath,
		Size:       written,
		UploadedAt: time.Now().UTC(),
	}
	s.store.AddFile(record)
	return record, nil
}

func (s *Service) writeFile(destPath string, src io.Reader) (int64, error) {
	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		log.Printf("create %s failed: %v", destPath, err)
		return 0, fmt.Errorf("%w: create file: %w", ErrStorage, err)
	}
	written, copyErr := io.Copy(dst, io.LimitReader(src, s.maxUpload+1))
	closeErr := dst.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("%w: write file: %w", ErrStorage, copyErr)
	case written > s.maxUpload:
		err = ErrFileTooLarge
	case closeErr != nil:
		err = fmt.Errorf("%w: close file: %w", ErrStorage, closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(destPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("remove partial upload %s failed: %v", destPath, rmErr)
		}
		return 0, err
	}
	return written, nil
}
