package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ParserClient talks to the external brochure parser service, which turns
// PDF bytes into markdown with product/price tables preserved.
type ParserClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewParserClient creates a client for the parser service at baseURL.
func NewParserClient(baseURL string) *ParserClient {
	return &ParserClient{
		baseURL: baseURL,
		// Brochure parsing is slow: the service runs layout analysis on
		// every page.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

type parseResponse struct {
	Markdown string `json:"markdown"`
}

// Parse submits the document and returns the extracted markdown.
func (c *ParserClient) Parse(ctx context.Context, filename string, content []byte) (string, error) {
	var requestBody bytes.Buffer
	w := multipart.NewWriter(&requestBody)

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("write file content: %w", err)
	}

	if err := w.WriteField("result_type", "markdown"); err != nil {
		return "", fmt.Errorf("write result type: %w", err)
	}
	if err := w.WriteField("language", "de"); err != nil {
		return "", fmt.Errorf("write language: %w", err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/parse", &requestBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("parser request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("parser service returned %s: %s", resp.Status, string(body))
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode parser response: %w", err)
	}
	if parsed.Markdown == "" {
		return "", fmt.Errorf("parser service returned empty result")
	}

	return parsed.Markdown, nil
}
