package deck

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()

	path, err := Save(dir, "flashcards.pptx", []byte("deck1"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, "flashcards.pptx") {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "deck1" {
		t.Errorf("content = %q", data)
	}
}

func TestSave_DoesNotClobber(t *testing.T) {
	dir := t.TempDir()

	want := []string{"flashcards.pptx", "flashcards-1.pptx", "flashcards-2.pptx"}
	for i, name := range want {
		path, err := Save(dir, "flashcards.pptx", []byte{byte(i)})
		if err != nil {
			t.Fatalf("Save() #%d error = %v", i, err)
		}
		if filepath.Base(path) != name {
			t.Errorf("Save() #%d wrote %s, want %s", i, filepath.Base(path), name)
		}
	}

	first, _ := os.ReadFile(filepath.Join(dir, "flashcards.pptx"))
	if len(first) != 1 || first[0] != 0 {
		t.Errorf("first deck overwritten: %v", first)
	}
}

func TestSave_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "decks", "2026")
	if _, err := Save(dir, "flashcards.pptx", []byte("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "flashcards.pptx")); err != nil {
		t.Error(err)
	}
}
