package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "start", ImagePath: "images/start.png", FEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{ID: "kings", ImagePath: "https://example.com/kings.png", FEN: "8/8/8/4k3/8/8/8/4K3 w - - 0 1"},
		{ID: "empty", ImagePath: "/abs/empty.png", FEN: "8/8/8/8/8/8/8/8 w - - 0 1"},
	}
}

func TestNewLoader(t *testing.T) {
	path := "./testdata/boards.parquet"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
	if loader.BaseDir() != "testdata" {
		t.Errorf("Expected base dir testdata, got %s", loader.BaseDir())
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.parquet")
	if err := parquet.WriteFile(path, sampleRecords()); err != nil {
		t.Fatalf("failed to write parquet: %v", err)
	}

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[1] != sampleRecords()[1] {
		t.Errorf("Expected %+v, got %+v", sampleRecords()[1], records[1])
	}

	sample, err := NewLoader(path).LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(sample) != 2 {
		t.Errorf("Expected 2 records, got %d", len(sample))
	}
}

func TestLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.jsonl")
	content := `{"id":"start","image_path":"start.png","fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}

{"id":"kings","image_path":"kings.png","fen":"8/8/8/4k3/8/8/8/4K3 w - - 0 1"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[1].ID != "kings" {
		t.Errorf("Expected second record kings, got %s", records[1].ID)
	}

	sample, err := NewLoader(path).LoadSample(1)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(sample) != 1 {
		t.Errorf("Expected 1 record, got %d", len(sample))
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := NewLoader("boards.csv").Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}

	path := filepath.Join(t.TempDir(), "broken.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for malformed JSONL")
	}
}

func TestResolveImagePath(t *testing.T) {
	records := sampleRecords()
	tests := []struct {
		name     string
		record   Record
		expected string
	}{
		{name: "relative", record: records[0], expected: filepath.Join("data", "images/start.png")},
		{name: "url", record: records[1], expected: "https://example.com/kings.png"},
		{name: "absolute", record: records[2], expected: "/abs/empty.png"},
		{name: "missing", record: Record{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.ResolveImagePath("data"); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
