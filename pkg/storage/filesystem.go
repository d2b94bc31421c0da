package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/dept-comm-api/internal/models"
)

// AttachmentUpload describes one incoming file payload bound for storage.
type AttachmentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// LocalStorage persists announcement attachments on disk under a base
// directory and hands out durable descriptors with signed download URLs.
// Callers treat it as an opaque store: a stored file is addressed only by
// the key returned from Store.
type LocalStorage struct {
	baseDir string
	baseURL string
	signer  *SignedURLSigner
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, baseURL string, signer *SignedURLSigner) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
	}, nil
}

// Store writes the upload to disk and returns the attachment descriptor plus
// the storage key used for later retrieval or removal.
func (s *LocalStorage) Store(upload AttachmentUpload) (models.Attachment, string, error) {
	key := uuid.NewString() + "-" + sanitizeFilename(upload.Filename)
	path := filepath.Join(s.baseDir, key)

	file, err := os.Create(path)
	if err != nil {
		return models.Attachment{}, "", fmt.Errorf("create attachment file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, upload.Content); err != nil {
		_ = os.Remove(path)
		return models.Attachment{}, "", fmt.Errorf("write attachment file: %w", err)
	}

	url := fmt.Sprintf("%s/files/%s", s.baseURL, key)
	if s.signer != nil {
		token, _, err := s.signer.Generate(key)
		if err != nil {
			_ = os.Remove(path)
			return models.Attachment{}, "", fmt.Errorf("sign attachment url: %w", err)
		}
		url = fmt.Sprintf("%s?token=%s", url, token)
	}

	return models.Attachment{
		Name: upload.Filename,
		URL:  url,
		Type: upload.MimeType,
	}, key, nil
}

// Open returns a read-only handle and size for the stored key.
func (s *LocalStorage) Open(key string) (*os.File, int64, error) {
	path := filepath.Join(s.baseDir, filepath.Base(key))
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open attachment file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fmt.Errorf("stat attachment file: %w", err)
	}
	return file, info.Size(), nil
}

// Remove deletes a stored file if present.
func (s *LocalStorage) Remove(key string) error {
	path := filepath.Join(s.baseDir, filepath.Base(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete attachment file: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "attachment"
	}
	return name
}
