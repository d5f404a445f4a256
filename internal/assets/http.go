package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	uploadPath         = "/v1/files"
	defaultHTTPTimeout = 30 * time.Second
)

// HTTPStore talks to a remote file storage API: multipart POST to upload,
// DELETE by reference to remove.
type HTTPStore struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTP constructs a remote store client with a bounded timeout.
func NewHTTP(baseURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams the file to the storage service and returns its remote reference.
func (s *HTTPStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+uploadPath, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assets: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("assets: upload: unexpected status %d", resp.StatusCode)
	}
	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("assets: upload: decode response: %w", err)
	}
	if payload.URL == "" {
		return "", fmt.Errorf("assets: upload: empty reference in response")
	}
	return payload.URL, nil
}

// Delete removes an uploaded asset by its remote reference.
func (s *HTTPStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	u := s.baseURL + uploadPath + "?ref=" + url.QueryEscape(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("assets: delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("assets: delete: unexpected status %d", resp.StatusCode)
	}
	return nil
}
