package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"seqguard/internal/order"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// testCommand returns a bare command wired to buffers, and resets the
// package flag state to defaults.
func testCommand(t *testing.T, stdin string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	rootFlags.pipeline = ""
	rootFlags.order = "ascending"
	rootFlags.forward = []string{"alert"}
	validateFlags.signal = "alert"
	validateFlags.data = nil
	validateFlags.dataFile = ""
	batchFlags.input = ""
	batchFlags.parallel = 1

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const descendingPipeline = `
pipeline: snews
nodes:
  - name: sort-times
    family: validate-sort
    config:
      list_order: descending
      field: times
      on_reset: true
`

func TestValidate_DefaultNodeSorts(t *testing.T) {
	cmd, out := testCommand(t, "")
	validateFlags.data = []float64{3, 1, 2}

	if err := runValidate(cmd, nil); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, out.String())
	}
	if diff := cmp.Diff(map[string]any{"data": []any{1.0, 2.0, 3.0}}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidate_SuppressedSignal(t *testing.T) {
	cmd, out := testCommand(t, "")
	validateFlags.signal = "report"
	validateFlags.data = []float64{3, 1, 2}

	if err := runValidate(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "suppressed" {
		t.Errorf("output = %q, want suppressed", out.String())
	}
}

func TestValidate_PipelineFileAndStdinPayload(t *testing.T) {
	cmd, out := testCommand(t, `{"times": [0.5, 2, 1], "t_true": 3}`)
	rootFlags.pipeline = writeFile(t, "pipeline.yaml", descendingPipeline)
	validateFlags.signal = "reset"
	validateFlags.dataFile = "-"

	if err := runValidate(cmd, nil); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"times": []any{2.0, 1.0, 0.5}, "t_true": 3.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidate_Errors(t *testing.T) {
	cmd, _ := testCommand(t, "")
	validateFlags.signal = "ping"
	if err := runValidate(cmd, nil); err == nil {
		t.Error("expected unknown signal error")
	}

	cmd, _ = testCommand(t, "")
	if err := runValidate(cmd, nil); err == nil || !strings.Contains(err.Error(), "empty sequence") {
		t.Errorf("err = %v, want empty sequence error", err)
	}

	cmd, _ = testCommand(t, "")
	rootFlags.forward = []string{"alert", "ping"}
	validateFlags.data = []float64{1}
	if err := runValidate(cmd, nil); err == nil {
		t.Error("expected error for unknown --forward kind")
	}
}

func TestClassify(t *testing.T) {
	cmd, out := testCommand(t, "")
	rootFlags.order = "descending"

	if err := runClassify(cmd, []string{"1", "3", "2"}); err != nil {
		t.Fatal(err)
	}
	var got classifyOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := classifyOutput{Order: "descending", Coerced: true, Data: []float64{3, 2, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	cmd, _ = testCommand(t, "")
	if err := runClassify(cmd, []string{"1", "x"}); err == nil {
		t.Error("expected parse error")
	}
}

func TestNonFiniteValuesRejected(t *testing.T) {
	cmd, out := testCommand(t, "")
	err := runClassify(cmd, []string{"1", "inf"})
	var cerr *order.ComparisonError
	if !errors.As(err, &cerr) || cerr.Index != 1 {
		t.Errorf("classify err = %v, want ComparisonError at index 1", err)
	}
	if out.Len() != 0 {
		t.Errorf("classify wrote output on error: %s", out)
	}

	cmd, out = testCommand(t, "")
	validateFlags.data = []float64{math.Inf(-1), 2}
	if err := runValidate(cmd, nil); !errors.As(err, &cerr) {
		t.Errorf("validate err = %v, want ComparisonError", err)
	}
	if out.Len() != 0 {
		t.Errorf("validate wrote output on error: %s", out)
	}
}

func TestBatch(t *testing.T) {
	cmd, out := testCommand(t, "")
	rootFlags.forward = []string{"alert", "revoke"}
	batchFlags.parallel = 4
	batchFlags.input = writeFile(t, "inv.yaml", `
- signal: alert
  data: [3, 1, 2]
- signal: report
  data: [3, 1, 2]
- signal: revoke
  data: [9, 9]
`)

	if err := runBatch(cmd, nil); err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	var second batchLine
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if !second.Suppressed || second.Signal != "report" {
		t.Errorf("line 2 = %+v", second)
	}
	if !strings.Contains(lines[0], `"data":[1,2,3]`) {
		t.Errorf("line 1 = %s", lines[0])
	}
}

func TestBatch_FailureReported(t *testing.T) {
	cmd, out := testCommand(t, "")
	batchFlags.input = writeFile(t, "inv.yaml", "- signal: alert\n  data: []\n")

	err := runBatch(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Fatalf("err = %v, want failure count", err)
	}
	if !strings.Contains(out.String(), "empty sequence") {
		t.Errorf("failure not reported inline:\n%s", out.String())
	}
}

func TestInitLogging_RejectsBadLevel(t *testing.T) {
	cmd, _ := testCommand(t, "")
	rootFlags.logLevel = "loud"
	defer func() { rootFlags.logLevel = "info" }()
	if err := initLogging(cmd, nil); err == nil {
		t.Error("expected error for unknown log level")
	}
}
