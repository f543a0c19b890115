package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SupabaseStorage stores audio in one Supabase Storage bucket.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseStorage(supabaseURL, serviceKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    supabaseURL + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *SupabaseStorage) Name() string { return "supabase" }

func (s *SupabaseStorage) objectURL(name string) string {
	return fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, name)
}

func (s *SupabaseStorage) do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return s.httpClient.Do(req)
}

func (s *SupabaseStorage) Save(ctx context.Context, name string, data io.Reader, contentType string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, data); err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, s.objectURL(name), buf, contentType)
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Open streams an object. Supabase answers a missing object with 400 or 404.
func (s *SupabaseStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, http.MethodGet, s.objectURL(name), nil, "")
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, fmt.Errorf("download failed (%d)", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	resp, err := s.do(ctx, http.MethodDelete, s.objectURL(name), nil, "")
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("delete failed (%d)", resp.StatusCode)
	}
	return nil
}

type supabaseListReq struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type supabaseObject struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Metadata  struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

const supabasePageSize = 1000

func (s *SupabaseStorage) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	for offset := 0; ; offset += supabasePageSize {
		body, err := json.Marshal(supabaseListReq{Limit: supabasePageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("marshal list request: %w", err)
		}

		resp, err := s.do(ctx, http.MethodPost, fmt.Sprintf("%s/object/list/%s", s.baseURL, s.bucket), bytes.NewReader(body), "application/json")
		if err != nil {
			return nil, fmt.Errorf("list bucket: %w", err)
		}

		var page []supabaseObject
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("list failed (%d)", resp.StatusCode)
		}
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}

		for _, o := range page {
			// Folder placeholders carry no timestamps.
			if o.UpdatedAt.IsZero() {
				continue
			}
			objects = append(objects, Object{Name: o.Name, Size: o.Metadata.Size, ModTime: o.UpdatedAt})
		}
		if len(page) < supabasePageSize {
			return objects, nil
		}
	}
}

func (s *SupabaseStorage) Check(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/bucket/%s", s.baseURL, s.bucket), nil, "")
	if err != nil {
		return fmt.Errorf("supabase: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("supabase bucket %s: status %d", s.bucket, resp.StatusCode)
	}
	return nil
}
