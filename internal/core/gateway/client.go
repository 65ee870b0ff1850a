package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/storycards/internal/core/logger"
)

const (
	uploadPath = "/upload"
	exportPath = "/download_ppt"
	deletePath = "/delete_file"

	// Error bodies beyond this are truncated in messages
	maxErrorBody = 4096
)

// Client talks to the story server over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.ComponentLogger("gateway"),
	}
}

// BaseURL returns the server address requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload implements Gateway
func (c *Client) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	var result UploadResult

	body, contentType, err := buildUploadBody(req)
	if err != nil {
		return result, &Failure{Op: "upload", Message: err.Error(), Err: err}
	}
	c.log.Debug("sending upload", "file", req.FileName, "size", humanize.Bytes(uint64(body.Len())), "prompt", req.Prompt != "")

	respBody, err := c.post(ctx, "upload", uploadPath, contentType, body)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return result, &Failure{Op: "upload", Message: fmt.Sprintf("invalid response: %v", err), Err: err}
	}

	c.log.Info("upload finished", "file", req.FileName, "story_bytes", len(result.Story), "ref", result.FileRef)
	return result, nil
}

// ExportDeck implements Gateway
func (c *Client) ExportDeck(ctx context.Context, req ExportRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Failure{Op: "export", Message: err.Error(), Err: err}
	}

	deck, err := c.post(ctx, "export", exportPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	c.log.Info("export finished", "paragraphs", len(req.Paragraphs), "size", humanize.Bytes(uint64(len(deck))))
	return deck, nil
}

// DeleteArtifact implements Gateway
func (c *Client) DeleteArtifact(ctx context.Context, ref string) error {
	payload, err := json.Marshal(DeleteRequest{FilePath: ref})
	if err != nil {
		return &Failure{Op: "delete", Message: err.Error(), Err: err}
	}

	if _, err := c.post(ctx, "delete", deletePath, "application/json", bytes.NewReader(payload)); err != nil {
		return err
	}

	c.log.Info("artifact deleted", "ref", ref)
	return nil
}

func buildUploadBody(req UploadRequest) (*bytes.Buffer, string, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", req.Path, err)
	}
	defer f.Close()

	name := req.FileName
	if name == "" {
		name = f.Name()
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", req.Path, err)
	}

	if req.Prompt != "" {
		if err := w.WriteField("prompt", req.Prompt); err != nil {
			return nil, "", fmt.Errorf("write prompt field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// post sends one request and returns the full response body. Any transport
// error or non-2xx status comes back as *Failure.
func (c *Client) post(ctx context.Context, op, path, contentType string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, &Failure{Op: op, Message: err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("request failed", "op", op, "error", err)
		return nil, &Failure{Op: op, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Failure{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("server rejected request", "op", op, "status", resp.StatusCode)
		return nil, &Failure{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp, respBody)}
	}

	return respBody, nil
}

// errorMessage prefers the server's {"error": "..."} field
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if text == "" {
		return fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text)
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	return err.Error()
}
