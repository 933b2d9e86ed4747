package ruletest

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MatchSourceSnapshot compares fixed JavaScript output against a standalone
// snapshot file, byte for byte.
//
// go-snaps' MatchStandaloneSnapshot pretty-prints its input, which expands
// tabs; fixed source must round-trip exactly. Snapshot files follow go-snaps'
// naming convention for standalone snapshots:
//
//	__snapshots__/<TestName>_1.snap.js
//
// Set UPDATE_SNAPS=true to create or update snapshot files.
func MatchSourceSnapshot(tb testing.TB, content string) {
	tb.Helper()

	_, callerFile, _, ok := runtime.Caller(1)
	if !ok {
		tb.Fatal("ruletest.MatchSourceSnapshot: unable to determine caller")
	}

	name := strings.ReplaceAll(tb.Name(), "/", "_")
	snapFile := filepath.Join(filepath.Dir(callerFile), "__snapshots__", name+"_1.snap.js")

	if os.Getenv("UPDATE_SNAPS") == "true" {
		if err := os.MkdirAll(filepath.Dir(snapFile), 0o750); err != nil {
			tb.Fatalf("mkdir snapshot dir: %v", err)
		}
		if err := os.WriteFile(snapFile, []byte(content), 0o644); err != nil { //nolint:gosec // test-only snapshot
			tb.Fatalf("write snapshot: %v", err)
		}
		return
	}

	prev, err := os.ReadFile(snapFile)
	if err != nil {
		tb.Fatalf("snapshot not found: %s\nRun with UPDATE_SNAPS=true to create", snapFile)
	}
	if string(prev) != content {
		tb.Errorf("snapshot mismatch: %s\n%s", snapFile, Diff(string(prev), content))
	}
}

// Diff renders the difference between want and got as a unified patch.
func Diff(want, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, true)
	diffs = dmp.DiffCleanupSemanticLossless(diffs)
	return dmp.PatchToText(dmp.PatchMake(want, diffs))
}
