package gateway

import (
	"context"
	"fmt"
)

// Gateway is the narrow boundary to the story server. Implementations only
// marshal requests and unmarshal responses; they never retry, since a retried
// upload can leave a duplicate artifact on the server.
type Gateway interface {
	// Upload sends the document and returns the generated story plus the
	// server-side handle for the stored artifact
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)

	// ExportDeck renders paragraphs into a slide deck and returns its bytes
	ExportDeck(ctx context.Context, req ExportRequest) ([]byte, error)

	// DeleteArtifact removes the server-held file behind ref
	DeleteArtifact(ctx context.Context, ref string) error
}

// UploadRequest describes one document upload
type UploadRequest struct {
	Path     string // Local file to send
	FileName string // Name reported to the server
	Prompt   string // Optional free-text instruction, omitted when empty
}

// UploadResult is the decoded /upload response
type UploadResult struct {
	Story   string `json:"story"`
	FileRef string `json:"file_path"`
	Message string `json:"message,omitempty"`
}

// ExportRequest is the /download_ppt body
type ExportRequest struct {
	Paragraphs   []string `json:"paragraphs"`
	DocumentName string   `json:"pdf_name,omitempty"`
}

// DeleteRequest is the /delete_file body
type DeleteRequest struct {
	FilePath string `json:"file_path"`
}

// Failure is the single error type every gateway operation returns.
type Failure struct {
	Op         string // "upload", "export" or "delete"
	StatusCode int    // HTTP status, 0 for transport errors
	Message    string
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed: %s", f.Op, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
