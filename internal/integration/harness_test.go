package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// jsonReport is the subset of the JSON report the tests look at.
type jsonReport struct {
	Files []struct {
		File       string `json:"file"`
		Violations []struct {
			Rule     string `json:"rule"`
			Severity string `json:"severity"`
			Location struct {
				Start struct {
					Line int `json:"line"`
				} `json:"start"`
			} `json:"location"`
		} `json:"violations"`
		Error *struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"files"`
	Summary struct {
		Total    int `json:"total"`
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
		Fixable  int `json:"fixable"`
	} `json:"summary"`
	FilesScanned int `json:"files_scanned"`
	RulesEnabled int `json:"rules_enabled"`
	FilesFailed  int `json:"files_failed"`
}

// fileErrorKinds maps the base name of each failed file to its error kind.
func (r jsonReport) fileErrorKinds() map[string]string {
	out := make(map[string]string)
	for _, f := range r.Files {
		if f.Error != nil {
			out[filepath.Base(f.File)] = f.Error.Kind
		}
	}
	return out
}

// findings flattens the report into "file:line rule" entries, file being
// the base name.
func (r jsonReport) findings() []string {
	var out []string
	for _, f := range r.Files {
		for _, v := range f.Violations {
			out = append(out, fmt.Sprintf("%s:%d %s", filepath.Base(f.File), v.Location.Start.Line, v.Rule))
		}
	}
	return out
}

type lintCase struct {
	name       string
	dir        string
	args       []string
	wantExit   int
	want       []string // findings, see jsonReport.findings
	afterCheck func(t *testing.T, report jsonReport, stderr string)
}

type fixCase struct {
	name        string
	input       string
	args        []string
	config      string // contents of .fnlint.toml; empty keeps the defaults
	want        string // file contents after fixing
	wantApplied int
}

var fixedSummaryRE = regexp.MustCompile(`(?m)^Fixed (\d+) issues? in \d+ files?$`)

// runFnlint runs the binary and returns its output and exit code.
func runFnlint(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"GOCOVERDIR="+coverageDir,
	)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("command failed to start: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	stdout := strings.ReplaceAll(stdoutBuf.String(), "\r\n", "\n")
	return stdout, stderrBuf.String(), exitCode
}

func runLintCase(t *testing.T, tc lintCase) {
	t.Helper()

	args := make([]string, 0, 4+len(tc.args))
	args = append(args, "lint", "--format", "json")
	args = append(args, tc.args...)
	args = append(args, filepath.Join("testdata", tc.dir))

	stdout, stderr, exitCode := runFnlint(t, args...)
	if exitCode != tc.wantExit {
		t.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s", tc.wantExit, exitCode, stdout, stderr)
	}

	var report jsonReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode report: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	got := report.findings()
	if strings.Join(got, "\n") != strings.Join(tc.want, "\n") {
		t.Errorf("findings mismatch\ngot:\n  %s\nwant:\n  %s", strings.Join(got, "\n  "), strings.Join(tc.want, "\n  "))
	}

	if tc.afterCheck != nil {
		tc.afterCheck(t, report, stderr)
	}
}

func runFixCase(t *testing.T, tc fixCase) {
	t.Helper()

	tmpDir := t.TempDir()
	sourcePath := filepath.Join(tmpDir, "index.js")
	if err := os.WriteFile(sourcePath, []byte(tc.input), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	// An explicit config keeps repository configs out of the picture.
	configPath := filepath.Join(tmpDir, ".fnlint.toml")
	if err := os.WriteFile(configPath, []byte(tc.config), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	args := append([]string{"lint", "--config", configPath, "--fix"}, tc.args...)
	args = append(args, sourcePath)
	stdout, stderr, exitCode := runFnlint(t, args...)
	// Non-zero exits are valid when unfixed violations remain.
	if exitCode == 2 {
		t.Fatalf("lint --fix failed\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}

	fixed, err := os.ReadFile(sourcePath)
	if err != nil {
		t.Fatalf("failed to read fixed source: %v", err)
	}
	if string(fixed) != tc.want {
		t.Errorf("fixed source mismatch\ngot:\n%s\nwant:\n%s", fixed, tc.want)
	}

	gotApplied, ok, err := parseFixedCount(stderr)
	if err != nil {
		t.Fatalf("failed to parse fixed summary: %v\nstderr:\n%s", err, stderr)
	}
	if tc.wantApplied > 0 && !ok {
		t.Fatalf("expected fixed summary in output, got:\n%s", stderr)
	}
	if gotApplied != tc.wantApplied {
		t.Errorf("expected %d fixes applied, got %d\nstderr:\n%s", tc.wantApplied, gotApplied, stderr)
	}
}

func parseFixedCount(output string) (int, bool, error) {
	match := fixedSummaryRE.FindStringSubmatch(output)
	if len(match) == 0 {
		return 0, false, nil
	}
	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}
