package reporter

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wharflab/fnlint/internal/rules"
)

// GitHubActionsReporter formats violations as GitHub Actions workflow commands.
// These commands appear as annotations in the GitHub Actions UI. Each
// annotation is titled rule/messageId so problems of one kind group together;
// files that could not be linted get an error annotation of their own.
//
// Format: ::{level} file={file},line={line},col={col},title={title}::{message}
//
// See: https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions#setting-an-error-message
type GitHubActionsReporter struct {
	writer io.Writer
}

// NewGitHubActionsReporter creates a new GitHub Actions reporter.
func NewGitHubActionsReporter(w io.Writer) *GitHubActionsReporter {
	return &GitHubActionsReporter{writer: w}
}

// annotation is one workflow command. Zero positions are omitted;
// columns are 1-based here.
type annotation struct {
	level              string
	file               string
	line, col          int
	endLine, endColumn int
	title, message     string
}

func (a annotation) String() string {
	props := []string{"file=" + escapeGitHubProperty(filepath.ToSlash(a.file))}
	for _, p := range []struct {
		key string
		n   int
	}{
		{"line", a.line},
		{"col", a.col},
		{"endLine", a.endLine},
		{"endColumn", a.endColumn},
	} {
		if p.n > 0 {
			props = append(props, fmt.Sprintf("%s=%d", p.key, p.n))
		}
	}
	props = append(props, "title="+escapeGitHubProperty(a.title))
	return fmt.Sprintf("::%s %s::%s", a.level, strings.Join(props, ","), escapeGitHubMessage(a.message))
}

func violationAnnotation(v rules.Violation) annotation {
	a := annotation{
		level:   severityToGitHubLevel(v.Severity),
		file:    v.Location.File,
		title:   v.Rule + "/" + v.MessageID,
		message: v.Message,
	}
	loc := v.Location
	if loc.IsFileLevel() {
		return a
	}
	a.line = loc.Start.Line
	if loc.Start.Column >= 0 {
		a.col = loc.Start.Column + 1
	}
	switch {
	case loc.IsPointLocation():
	case loc.End.Line > loc.Start.Line:
		a.endLine = loc.End.Line
	case loc.End.Column > loc.Start.Column:
		a.endColumn = loc.End.Column + 1
	}
	return a
}

func fileErrorAnnotation(fe FileError) annotation {
	a := annotation{level: ghLevelError, file: fe.File, message: fe.Message}
	switch fe.Kind {
	case FileErrorParse:
		a.title = "parse error"
		if fe.Line > 0 {
			a.line, a.col = fe.Line, fe.Column+1
		}
	case FileErrorFault:
		a.title = fe.Rule + "/fault"
	default:
		a.title = "invalid file"
	}
	return a
}

// Report implements Reporter.
func (r *GitHubActionsReporter) Report(violations []rules.Violation, _ map[string][]byte, metadata ReportMetadata) error {
	annotations := make([]annotation, 0, len(violations)+len(metadata.FileErrors))
	for _, v := range SortViolations(violations) {
		annotations = append(annotations, violationAnnotation(v))
	}
	fileErrors := slices.Clone(metadata.FileErrors)
	slices.SortStableFunc(fileErrors, func(a, b FileError) int { return cmp.Compare(a.File, b.File) })
	for _, fe := range fileErrors {
		annotations = append(annotations, fileErrorAnnotation(fe))
	}

	for _, a := range annotations {
		if _, err := fmt.Fprintln(r.writer, a.String()); err != nil {
			return err
		}
	}
	return nil
}

// GitHub Actions annotation levels.
const (
	ghLevelError   = "error"
	ghLevelWarning = "warning"
	ghLevelNotice  = "notice"
)

// severityToGitHubLevel maps our Severity to GitHub Actions levels.
// GitHub supports: "error", "warning", "notice", "debug"
func severityToGitHubLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return ghLevelError
	case rules.SeverityWarning:
		return ghLevelWarning
	case rules.SeverityInfo, rules.SeverityStyle:
		return ghLevelNotice
	default:
		return ghLevelWarning
	}
}

// escapeGitHubMessage escapes special characters in GitHub Actions workflow command messages.
// Messages use escapeData() rules which escape "%", "\r", "\n" but NOT ":" or ",".
// See: https://github.com/actions/toolkit/blob/main/packages/core/src/command.ts
func escapeGitHubMessage(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeGitHubProperty escapes special characters in GitHub Actions workflow command properties.
// Properties (file, title, etc.) use escapeProperty() rules which escape "%", "\r", "\n", ":", and ",".
// See: https://github.com/actions/toolkit/blob/main/packages/core/src/command.ts
func escapeGitHubProperty(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
