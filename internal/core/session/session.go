package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Status is the request currently in flight for a session
type Status int

const (
	StatusIdle Status = iota
	StatusUploading
	StatusExporting
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusExporting:
		return "exporting"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Input is a local document chosen for upload
type Input struct {
	Name string // Base name sent to the server
	Path string
	Size int64
}

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds upload limit")
	ErrNotRegular      = errors.New("not a regular file")
)

// NewInput stats path and applies the type filter. accept holds lowercase
// extensions including the dot (".pdf"); an empty list accepts anything.
// maxBytes <= 0 disables the size check.
func NewInput(path string, accept []string, maxBytes int64) (Input, error) {
	if len(accept) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		ok := false
		for _, a := range accept {
			if ext == strings.ToLower(a) {
				ok = true
				break
			}
		}
		if !ok {
			return Input{}, fmt.Errorf("%s: %w (accepted: %s)", filepath.Base(path), ErrUnsupportedType, strings.Join(accept, ", "))
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Input{}, err
	}
	if !info.Mode().IsRegular() {
		return Input{}, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return Input{}, fmt.Errorf("%s is %s: %w of %s", filepath.Base(path),
			humanize.Bytes(uint64(info.Size())), ErrTooLarge, humanize.Bytes(uint64(maxBytes)))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return Input{
		Name: filepath.Base(path),
		Path: abs,
		Size: info.Size(),
	}, nil
}

// Session is everything one upload-to-export cycle knows. Only Controller
// mutates it; callers get copies from Controller.Session.
type Session struct {
	Input      *Input
	ServerRef  string
	Status     Status
	Paragraphs []string
	Cursor     int
}

func (s Session) clone() Session {
	out := s
	if s.Input != nil {
		in := *s.Input
		out.Input = &in
	}
	out.Paragraphs = append([]string(nil), s.Paragraphs...)
	return out
}

// Deck is an exported slide deck ready to be written to disk
type Deck struct {
	SourceName string // Document the story came from
	Paragraphs int
	Data       []byte
}
