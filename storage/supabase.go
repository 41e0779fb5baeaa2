package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	supabase "github.com/nedpals/supabase-go"
)

// SupabaseStore indexes resume artifacts in a Supabase table and
// references them through the project's public object URL.
type SupabaseStore struct {
	client *supabase.Client
	url    string
	bucket string
	table  string
}

// NewSupabaseStore creates a SupabaseStore. It reads SUPABASE_URL and
// SUPABASE_KEY from environment variables if empty values are provided.
func NewSupabaseStore(supabaseURL, supabaseKey, bucket string) (*SupabaseStore, error) {
	if supabaseURL == "" {
		supabaseURL = os.Getenv("SUPABASE_URL")
	}
	if supabaseKey == "" {
		supabaseKey = os.Getenv("SUPABASE_KEY")
	}
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided via args or SUPABASE_URL / SUPABASE_KEY env vars")
	}
	if bucket == "" {
		bucket = "resumes"
	}

	client := supabase.CreateClient(supabaseURL, supabaseKey)
	return &SupabaseStore{
		client: client,
		url:    strings.TrimRight(supabaseURL, "/"),
		bucket: bucket,
		table:  "resume_artifacts",
	}, nil
}

func (s *SupabaseStore) Save(_ context.Context, ownerID, fileName, contentType string, data []byte) (*StoredResume, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty resume payload")
	}

	record := StoredResume{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		FileName:    sanitizeFileName(fileName),
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now(),
	}
	record.Ref = s.publicURL(record.ID, record.FileName)

	var results []StoredResume
	if err := s.client.DB.From(s.table).Insert(record).Execute(&results); err != nil {
		return nil, fmt.Errorf("failed to index resume artifact: %w", err)
	}

	return &record, nil
}

// List returns every indexed artifact for an owner.
func (s *SupabaseStore) List(_ context.Context, ownerID string) ([]StoredResume, error) {
	var res []StoredResume
	err := s.client.DB.From(s.table).Select("*").Eq("owner_id", ownerID).Execute(&res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SupabaseStore) publicURL(id, fileName string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s-%s", s.url, s.bucket, id, fileName)
}
