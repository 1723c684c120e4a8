package content

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Problem is one structural error found in a content file.
type Problem struct {
	Path   string
	Reason string
}

// Report aggregates the results of a content scan.
type Report struct {
	Checked  int
	Problems []Problem
}

// Failed reports whether any structural errors accumulated.
func (r *Report) Failed() bool {
	return len(r.Problems) > 0
}

// Print writes a textual report.
func (r *Report) Print(w io.Writer) {
	for _, p := range r.Problems {
		fmt.Fprintf(w, "ERROR %s: %s\n", p.Path, p.Reason)
	}
	if r.Failed() {
		fmt.Fprintf(w, "%d file(s) checked, %d problem(s) found\n", r.Checked, len(r.Problems))
		return
	}
	fmt.Fprintf(w, "%d file(s) checked, all OK\n", r.Checked)
}

// contentDirs are the directories scanned, each with its own shape check.
var contentDirs = []string{"bibles", "xrefs", "theology"}

// Scanner validates the JSON content trees of the study app.
type Scanner struct {
	validator *validator.Validate
}

// NewScanner creates a content scanner.
func NewScanner() *Scanner {
	return &Scanner{validator: validator.New()}
}

// Scan walks bibles/, xrefs/ and theology/ under root, validating every
// .json file. Individual problems are aggregated, not fatal; only I/O
// errors while walking abort the scan.
func (s *Scanner) Scan(root string) (*Report, error) {
	report := &Report{}
	for _, dir := range contentDirs {
		base := filepath.Join(root, dir)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
				return nil
			}
			report.Checked++
			if reason := s.checkFile(dir, path); reason != "" {
				report.Problems = append(report.Problems, Problem{Path: path, Reason: reason})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", base, err)
		}
	}
	return report, nil
}

// checkFile validates one file; returns "" when the file is sound.
func (s *Scanner) checkFile(kind, path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("read: %v", err)
	}

	switch kind {
	case "bibles":
		var doc BibleDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Sprintf("parse: %v", err)
		}
		if err := validateBible(s.validator, &doc); err != nil {
			return err.Error()
		}
	case "xrefs":
		var doc CrossRefDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Sprintf("parse: %v", err)
		}
		if err := validateCrossRefs(doc); err != nil {
			return err.Error()
		}
	case "theology":
		var doc TheologyDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Sprintf("parse: %v", err)
		}
		if err := validateTheology(s.validator, &doc); err != nil {
			return err.Error()
		}
	}
	return ""
}
