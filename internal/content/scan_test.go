package content

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validBible = `{
	"translation": {"id": "web", "name": "World English Bible"},
	"books": [
		{"id": "gen", "name": "Genesis", "chapters": [["In the beginning...", "The earth was formless..."]]}
	]
}`

const validXrefs = `{
	"Gen 1:1": ["John 1:1", "Heb 11:3"],
	"John 3:16": ["Rom 5:8"]
}`

const validTheology = `{
	"entries": [
		{"id": "trinity", "title": "The Trinity", "body": "One God in three persons.", "refs": ["Matt 28:19"]}
	]
}`

func writeContent(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScan_AllValid(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "bibles/web/web.json", validBible)
	writeContent(t, root, "xrefs/xrefs.json", validXrefs)
	writeContent(t, root, "theology/basics.json", validTheology)

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Checked != 3 {
		t.Errorf("expected 3 files checked, got %d", report.Checked)
	}
	if report.Failed() {
		t.Errorf("expected clean report, got problems: %v", report.Problems)
	}
}

func TestScan_AggregatesProblems(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "bibles/web/web.json", validBible)
	writeContent(t, root, "bibles/kjv/broken.json", `{"translation": {"id": "kjv"}}`)
	writeContent(t, root, "xrefs/empty-refs.json", `{"Gen 1:1": []}`)
	writeContent(t, root, "theology/garbage.json", `{{{`)

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Checked != 4 {
		t.Errorf("expected 4 files checked, got %d", report.Checked)
	}
	if len(report.Problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(report.Problems), report.Problems)
	}
	if !report.Failed() {
		t.Error("expected report to fail")
	}
}

func TestScan_IgnoresNonJSONAndMissingDirs(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "bibles/notes.txt", "not json")
	// no xrefs/ or theology/ at all

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Checked != 0 {
		t.Errorf("expected 0 files checked, got %d", report.Checked)
	}
	if report.Failed() {
		t.Error("expected clean report")
	}
}

func TestScan_BibleShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty chapter", `{"translation": {"id": "web", "name": "WEB"}, "books": [{"id": "gen", "name": "Genesis", "chapters": [[]]}]}`},
		{"blank verse", `{"translation": {"id": "web", "name": "WEB"}, "books": [{"id": "gen", "name": "Genesis", "chapters": [["ok", "  "]]}]}`},
		{"no books", `{"translation": {"id": "web", "name": "WEB"}, "books": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeContent(t, root, "bibles/bad.json", tt.content)
			report, err := NewScanner().Scan(root)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(report.Problems) != 1 {
				t.Errorf("expected 1 problem, got %v", report.Problems)
			}
		})
	}
}

func TestScan_XrefShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad key form", `{"Genesis one one": ["John 1:1"]}`},
		{"empty ref", `{"Gen 1:1": ["John 1:1", ""]}`},
		{"no entries", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeContent(t, root, "xrefs/bad.json", tt.content)
			report, err := NewScanner().Scan(root)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(report.Problems) != 1 {
				t.Errorf("expected 1 problem, got %v", report.Problems)
			}
		})
	}
}

func TestScan_TheologyDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "theology/dup.json", `{
		"entries": [
			{"id": "grace", "title": "Grace", "body": "..."},
			{"id": "grace", "title": "Grace again", "body": "..."}
		]
	}`)

	report, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %v", report.Problems)
	}
	if !strings.Contains(report.Problems[0].Reason, "duplicate") {
		t.Errorf("expected duplicate-id reason, got %q", report.Problems[0].Reason)
	}
}

func TestReport_Print(t *testing.T) {
	report := &Report{
		Checked:  2,
		Problems: []Problem{{Path: "xrefs/bad.json", Reason: "no references"}},
	}

	var buf bytes.Buffer
	report.Print(&buf)

	out := buf.String()
	if !strings.Contains(out, "xrefs/bad.json") {
		t.Errorf("expected path in report, got %q", out)
	}
	if !strings.Contains(out, "1 problem(s)") {
		t.Errorf("expected problem count in report, got %q", out)
	}
}
