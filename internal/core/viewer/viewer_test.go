package viewer

import (
	"reflect"
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name    string
		opener  Opener
		want    []string
		wantErr bool
	}{
		{
			name:   "macOS",
			opener: Opener{GOOS: "darwin"},
			want:   []string{"open", "/tmp/flashcards.pptx"},
		},
		{
			name:   "linux",
			opener: Opener{GOOS: "linux"},
			want:   []string{"xdg-open", "/tmp/flashcards.pptx"},
		},
		{
			name:   "windows",
			opener: Opener{GOOS: "windows"},
			want:   []string{"rundll32", "url.dll,FileProtocolHandler", "/tmp/flashcards.pptx"},
		},
		{
			name:   "custom command wins",
			opener: Opener{GOOS: "darwin", CustomCommand: "libreoffice --show {path}"},
			want:   []string{"sh", "-c", "libreoffice --show '/tmp/flashcards.pptx'"},
		},
		{
			name:    "unknown platform",
			opener:  Opener{GOOS: "plan9"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := tt.opener.Command("/tmp/flashcards.pptx")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Command() error = %v", err)
			}
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("Args = %q, want %q", cmd.Args, tt.want)
			}
		})
	}
}

func TestShellEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "'simple'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
	}

	for _, tt := range tests {
		if got := shellEscape(tt.input); got != tt.want {
			t.Errorf("shellEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
