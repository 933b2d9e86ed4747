package reporter

import (
	"cmp"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"

	"github.com/wharflab/fnlint/internal/rules"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files holds one entry per file with violations or a file error,
	// ordered by path.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the total number of files scanned.
	FilesScanned int `json:"files_scanned"`
	// RulesEnabled is the total number of rules that were active.
	RulesEnabled int `json:"rules_enabled"`
	// FilesFailed is the number of entries in Files that carry an Error.
	FilesFailed int `json:"files_failed"`
}

// FileResult contains the linting results for a single file. A file that
// failed to parse has an Error and no violations; a rule fault leaves the
// violations of the other rules in place.
type FileResult struct {
	File       string            `json:"file"`
	Violations []rules.Violation `json:"violations"`
	Error      *FileError        `json:"error,omitempty"`
}

// Summary contains aggregate statistics about violations.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Style    int `json:"style"`
	Files    int `json:"files"`
	// Fixable counts violations that carry a fix.
	Fixable int `json:"fixable"`
	// Rules counts violations per rule name.
	Rules map[string]int `json:"rules,omitempty"`
}

// JSONReporter formats violations as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(violations []rules.Violation, _ map[string][]byte, metadata ReportMetadata) error {
	byFile := make(map[string]*FileResult)
	entry := func(file string) *FileResult {
		file = filepath.ToSlash(file)
		if fr, ok := byFile[file]; ok {
			return fr
		}
		fr := &FileResult{File: file, Violations: []rules.Violation{}}
		byFile[file] = fr
		return fr
	}

	for _, v := range SortViolations(violations) {
		v.Location.File = filepath.ToSlash(v.Location.File)
		fr := entry(v.Location.File)
		fr.Violations = append(fr.Violations, v)
	}
	withViolations := len(byFile)

	failed := 0
	for _, fe := range metadata.FileErrors {
		fr := entry(fe.File)
		if fr.Error != nil {
			continue
		}
		fe.File = fr.File
		fr.Error = &fe
		failed++
	}

	output := JSONOutput{
		Files:        make([]FileResult, 0, len(byFile)),
		Summary:      calculateSummary(violations, withViolations),
		FilesScanned: metadata.FilesScanned,
		RulesEnabled: metadata.RulesEnabled,
		FilesFailed:  failed,
	}
	for _, fr := range byFile {
		output.Files = append(output.Files, *fr)
	}
	slices.SortFunc(output.Files, func(a, b FileResult) int {
		return cmp.Compare(a.File, b.File)
	})

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// calculateSummary computes aggregate statistics from violations.
func calculateSummary(violations []rules.Violation, fileCount int) Summary {
	summary := Summary{
		Total: len(violations),
		Files: fileCount,
	}
	if len(violations) > 0 {
		summary.Rules = make(map[string]int)
	}

	for _, v := range violations {
		summary.Rules[v.Rule]++
		if v.Fix != nil {
			summary.Fixable++
		}
		switch v.Severity {
		case rules.SeverityError:
			summary.Errors++
		case rules.SeverityWarning:
			summary.Warnings++
		case rules.SeverityInfo:
			summary.Info++
		case rules.SeverityStyle:
			summary.Style++
		case rules.SeverityOff:
			// filtered by EnableFilter
		}
	}

	return summary
}
