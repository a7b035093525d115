package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"catoseq/internal/apperr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCSVLoader_DropsEmptyFields(t *testing.T) {
	path := writeFile(t, "data.csv", "name,tag\nA,t1\nB,\n")
	got, err := CSVLoader{}.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["name"] != "A" || got[0]["tag"] != "t1" {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if _, present := got[1]["tag"]; present {
		t.Errorf("expected empty tag to be omitted, got %+v", got[1])
	}
	if got[1]["name"] != "B" {
		t.Errorf("unexpected second record: %+v", got[1])
	}
}

func TestCSVLoader_NotFound(t *testing.T) {
	_, err := CSVLoader{}.Load(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected InputNotFound error")
	}
	if kind, ok := apperr.KindOf(err); !ok || kind != apperr.InputNotFound {
		t.Errorf("expected apperr.InputNotFound, got %v (%v)", kind, err)
	}
}

func TestCSVLoader_HeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "name,tag\n")
	got, err := CSVLoader{}.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %+v", got)
	}
}

func TestCSVLoader_Malformed(t *testing.T) {
	path := writeFile(t, "bad.csv", "name,tag\n\"unterminated")
	_, err := CSVLoader{}.Load(path)
	if err == nil {
		t.Fatal("expected malformed error")
	}
	if kind, ok := apperr.KindOf(err); !ok || kind != apperr.InputMalformed {
		t.Errorf("expected apperr.InputMalformed, got %v (%v)", kind, err)
	}
}
