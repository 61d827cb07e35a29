package runlog

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RANKWATCH_LOG_DIR", dir)

	err := Append(RunEntry{
		RunID:         "run-1",
		Mode:          "DRY_RUN",
		TotalKeywords: 5,
		Qualifying:    2,
		Delivered:     true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	err = Append(RunEntry{RunID: "run-2", Mode: "LIVE", DeliveryError: "HTTP 429"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Expected daily file, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var first RunEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if first.RunID != "run-1" || first.Qualifying != 2 || !first.Delivered {
		t.Errorf("Unexpected entry: %+v", first)
	}
	if first.Time == "" {
		t.Error("Expected Time to be stamped")
	}
	if strings.Contains(lines[0], "DeliveryError") {
		t.Error("Expected empty DeliveryError to be omitted")
	}
	if !strings.Contains(lines[1], "HTTP 429") {
		t.Error("Expected DeliveryError in second entry")
	}
}

func TestAppendVerdictWritesSubdirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RANKWATCH_LOG_DIR", dir)

	err := AppendVerdict(VerdictEntry{
		RunID:        "run-1",
		Keyword:      "seo tools",
		PreviousRank: "3",
		CurrentRank:  "7",
		Reason:       "RANK_WORSENED",
		Qualifies:    true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	data, err := os.ReadFile(filepath.Join(dir, "verdicts", name))
	if err != nil {
		t.Fatalf("Expected verdicts file, got %v", err)
	}
	if !strings.Contains(string(data), "seo tools") {
		t.Errorf("Expected keyword in entry, got %s", data)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RANKWATCH_LOG_DIR", dir)

	old := filepath.Join(dir, "2026-01-01.txt")
	if err := os.WriteFile(old, []byte("{\"RunID\":\"old\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "2026-08-25.txt")
	if err := os.WriteFile(fresh, []byte("{\"RunID\":\"new\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old file to be removed")
	}
	gz, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatalf("Expected gz file, got %v", err)
	}
	defer gz.Close()
	gr, err := gzip.NewReader(gz)
	if err != nil {
		t.Fatalf("Expected valid gzip, got %v", err)
	}
	content, _ := io.ReadAll(gr)
	if !strings.Contains(string(content), "old") {
		t.Errorf("Expected original content, got %s", content)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected fresh file to survive")
	}
}

func TestCompressOlderZeroRetentionNoop(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RANKWATCH_LOG_DIR", dir)

	p := filepath.Join(dir, "2026-01-01.txt")
	if err := os.WriteFile(p, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	_ = os.Chtimes(p, past, past)

	if err := CompressOlder(0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Error("Expected file untouched with zero retention")
	}
}
