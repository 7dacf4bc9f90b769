package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/admin/app"
)

const (
	defaultBaseURL = "https://api.cloudinary.com/v1_1"
	maxErrorBody   = 1024
)

// UploadError is a non-success answer from the image host.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %d %s", e.StatusCode, e.Body)
}

// Client uploads unsigned images with an upload preset.
type Client struct {
	baseURL   string
	cloudName string
	preset    string
	http      *http.Client
}

var _ app.ImageUploader = (*Client)(nil)

type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func NewClient(cloudName, uploadPreset string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	c := &Client{
		baseURL:   defaultBaseURL,
		cloudName: cloudName,
		preset:    uploadPreset,
		http:      httpClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.cloudName != "" && c.preset != ""
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends content as a multipart form and returns the hosted URL, preferring the
// https one.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if !c.Configured() {
		return "", app.ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeForm(mw, filename, content, c.preset); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UploadError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", errors.New("upload response has no url")
}

func writeForm(mw *multipart.Writer, filename string, content io.Reader, preset string) error {
	if filename == "" {
		filename = "upload"
	}

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	if err := mw.WriteField("upload_preset", preset); err != nil {
		return err
	}
	return mw.Close()
}
