// Package storage persists resume artifacts for job applications. The
// portal core only keeps the returned reference; bytes live behind the
// ResumeStore contract.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredResume describes one persisted resume artifact.
type StoredResume struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	// Ref is the reference recorded on the application. Either a public
	// URL or a rooted storage path.
	Ref       string    `json:"ref"`
	CreatedAt time.Time `json:"created_at"`
}

// ResumeStore persists resume bytes and returns a stable reference.
type ResumeStore interface {
	Save(ctx context.Context, ownerID, fileName, contentType string, data []byte) (*StoredResume, error)
}

// LocalStore writes resumes under a base directory. Used for dev and tests.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates the base directory when missing.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "data/resumes"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create resume directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Save(_ context.Context, ownerID, fileName, contentType string, data []byte) (*StoredResume, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty resume payload")
	}

	id := uuid.NewString()
	name := id + "-" + sanitizeFileName(fileName)
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write resume: %w", err)
	}

	return &StoredResume{
		ID:          id,
		OwnerID:     ownerID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Ref:         "/resumes/" + name,
		CreatedAt:   time.Now(),
	}, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "resume"
	}
	return name
}
