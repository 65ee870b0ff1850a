package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeTempPDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.pdf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClient_Upload(t *testing.T) {
	path := writeTempPDF(t, "%PDF-1.4 fake")

	var gotFile, gotName, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		gotFile = string(data)
		gotName = hdr.Filename
		gotPrompt = r.FormValue("prompt")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"story":     "para1\npara2",
			"file_path": "uploads/lecture.pdf",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	res, err := c.Upload(context.Background(), UploadRequest{
		Path:     path,
		FileName: "lecture.pdf",
		Prompt:   "keep it short",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if res.Story != "para1\npara2" {
		t.Errorf("Story = %q", res.Story)
	}
	if res.FileRef != "uploads/lecture.pdf" {
		t.Errorf("FileRef = %q", res.FileRef)
	}
	if gotFile != "%PDF-1.4 fake" {
		t.Errorf("server got file %q", gotFile)
	}
	if gotName != "lecture.pdf" {
		t.Errorf("server got filename %q", gotName)
	}
	if gotPrompt != "keep it short" {
		t.Errorf("server got prompt %q", gotPrompt)
	}
}

func TestClient_Upload_OmitsEmptyPrompt(t *testing.T) {
	path := writeTempPDF(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		if _, ok := r.MultipartForm.Value["prompt"]; ok {
			t.Error("prompt field sent although empty")
		}
		_, _ = w.Write([]byte(`{"story":"s","file_path":"p"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 5*time.Second).Upload(context.Background(), UploadRequest{Path: path}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
}

func TestClient_Upload_ServerError(t *testing.T) {
	path := writeTempPDF(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No selected file"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5*time.Second).Upload(context.Background(), UploadRequest{Path: path})

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if f.Message != "No selected file" {
		t.Errorf("Message = %q", f.Message)
	}
	if f.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", f.StatusCode)
	}
	if f.Op != "upload" {
		t.Errorf("Op = %q", f.Op)
	}
}

func TestClient_Upload_MissingFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	_, err := c.Upload(context.Background(), UploadRequest{Path: filepath.Join(t.TempDir(), "nope.pdf")})

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestClient_Upload_TransportError(t *testing.T) {
	path := writeTempPDF(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Upload(context.Background(), UploadRequest{Path: path})

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if f.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport errors", f.StatusCode)
	}
}

func TestClient_ExportDeck(t *testing.T) {
	var got ExportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download_ppt" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
		_, _ = w.Write([]byte("PK\x03\x04deck"))
	}))
	defer srv.Close()

	deck, err := NewClient(srv.URL, 5*time.Second).ExportDeck(context.Background(), ExportRequest{
		Paragraphs:   []string{"a", "b"},
		DocumentName: "lecture.pdf",
	})
	if err != nil {
		t.Fatalf("ExportDeck() error = %v", err)
	}
	if string(deck) != "PK\x03\x04deck" {
		t.Errorf("deck = %q", deck)
	}
	if !reflect.DeepEqual(got.Paragraphs, []string{"a", "b"}) || got.DocumentName != "lecture.pdf" {
		t.Errorf("server got %+v", got)
	}
}

func TestClient_ExportDeck_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5*time.Second).ExportDeck(context.Background(), ExportRequest{Paragraphs: []string{"a"}})

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if f.Message != "HTTP 500: boom" {
		t.Errorf("Message = %q", f.Message)
	}
}

func TestClient_DeleteArtifact(t *testing.T) {
	var got DeleteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/delete_file" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL+"/", 5*time.Second).DeleteArtifact(context.Background(), "uploads/a.pdf"); err != nil {
		t.Fatalf("DeleteArtifact() error = %v", err)
	}
	if got.FilePath != "uploads/a.pdf" {
		t.Errorf("server got file_path %q", got.FilePath)
	}
}

func TestClient_DeleteArtifact_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, 5*time.Second).DeleteArtifact(context.Background(), "gone")

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if f.Message != "HTTP 404 Not Found" {
		t.Errorf("Message = %q", f.Message)
	}
}

func TestFailure_Error(t *testing.T) {
	f := &Failure{Op: "export", Message: "network down"}
	if f.Error() != "export failed: network down" {
		t.Errorf("Error() = %q", f.Error())
	}
}
