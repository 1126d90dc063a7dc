// Package imghost uploads product photos to the external image host.
package imghost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tilemart/tilemart-api/pkg/config"
)

// Client forwards image bytes to the configured host and returns the public
// URL.
type Client struct {
	uploadURL string
	apiKey    string
	http      *http.Client
}

// New builds the upload client.
func New(cfg config.ImgHostConfig) *Client {
	return &Client{
		uploadURL: cfg.UploadURL,
		apiKey:    cfg.APIKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends one image and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("imghost: missing API key")
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		defer form.Close()
		if err := form.WriteField("key", c.apiKey); err != nil {
			pw.CloseWithError(err)
			return
		}
		part, err := form.CreateFormFile("image", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, image); err != nil {
			pw.CloseWithError(err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pr)
	if err != nil {
		return "", fmt.Errorf("imghost: build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("imghost: upload: %w", err)
	}
	defer resp.Body.Close()

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("imghost: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		msg := body.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("imghost: upload failed: %s", msg)
	}
	if body.Data.URL == "" {
		return body.Data.DisplayURL, nil
	}
	return body.Data.URL, nil
}
