package batch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seqguard/internal/batch"
	"seqguard/internal/order"
	"seqguard/internal/validatesort"
	"seqguard/pkg/framework"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func newPipeline(t *testing.T) *framework.Pipeline {
	t.Helper()
	n, err := validatesort.New("sort", validatesort.Config{ListOrder: order.Ascending, OnAlert: true, OnReset: true})
	if err != nil {
		t.Fatal(err)
	}
	p, err := framework.NewPipeline("batch-test", []framework.Node{n})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadInvocations(t *testing.T) {
	invs, err := batch.LoadInvocations([]byte(`
- signal: alert
  data: [3, 1, 2]
  source: detector-a
- signal: report
  data: [1]
`))
	if err != nil {
		t.Fatalf("LoadInvocations: %v", err)
	}
	want := []batch.Invocation{
		{Signal: framework.SignalAlert, Payload: framework.Payload{"data": []any{3, 1, 2}, "source": "detector-a"}},
		{Signal: framework.SignalReport, Payload: framework.Payload{"data": []any{1}}},
	}
	if diff := cmp.Diff(want, invs); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadInvocations_JSON(t *testing.T) {
	invs, err := batch.LoadInvocations([]byte(`[{"signal": "revoke", "data": [2.5, 1]}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(invs) != 1 || invs[0].Signal != framework.SignalRevoke {
		t.Errorf("invs = %+v", invs)
	}
}

func TestLoadInvocations_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"missing signal": "- data: [1]",
		"unknown signal": "- signal: ping\n  data: [1]",
		"bad yaml":       "- signal: [",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := batch.LoadInvocations([]byte(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_SerialAndParallelAgree(t *testing.T) {
	p := newPipeline(t)
	var invs []batch.Invocation
	for i := 0; i < 40; i++ {
		sig := framework.Signals()[i%4]
		invs = append(invs, batch.Invocation{
			Signal:  sig,
			Payload: framework.Payload{"data": []float64{float64(i % 7), 3, float64(i % 5), 1}},
		})
	}
	invs = append(invs, batch.Invocation{Signal: framework.SignalAlert, Payload: framework.Payload{"data": []float64{}}})

	serial, err := batch.Run(context.Background(), p, invs, batch.Options{Parallel: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := batch.Run(context.Background(), p, invs, batch.Options{Parallel: 8})
	if err != nil {
		t.Fatal(err)
	}

	if len(serial) != len(invs) || len(parallel) != len(invs) {
		t.Fatalf("outcome counts %d/%d, want %d", len(serial), len(parallel), len(invs))
	}
	for i := range invs {
		s, q := serial[i], parallel[i]
		if s.Index != i || q.Index != i {
			t.Fatalf("outcome %d out of order", i)
		}
		if (s.Err == nil) != (q.Err == nil) {
			t.Errorf("outcome %d: error mismatch %v / %v", i, s.Err, q.Err)
			continue
		}
		if diff := cmp.Diff(s.Result, q.Result); diff != "" {
			t.Errorf("outcome %d differs:\n%s", i, diff)
		}
	}

	last := parallel[len(parallel)-1]
	if !errors.Is(last.Err, order.ErrEmptyInput) {
		t.Errorf("last outcome err = %v, want ErrEmptyInput", last.Err)
	}
	if parallel[2].Result.Emitted {
		t.Error("revoke is disabled and must be suppressed")
	}
}

func TestRun_DoesNotAliasPayloads(t *testing.T) {
	p := newPipeline(t)
	shared := []float64{5, 2, 9}
	invs := make([]batch.Invocation, 10)
	for i := range invs {
		invs[i] = batch.Invocation{Signal: framework.SignalAlert, Payload: framework.Payload{"data": shared}}
	}
	if _, err := batch.Run(context.Background(), p, invs, batch.Options{Parallel: 4}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{5, 2, 9}, shared); diff != "" {
		t.Errorf("shared input mutated:\n%s", diff)
	}
	for i, inv := range invs {
		if _, ok := inv.Payload["data"].([]float64); !ok {
			t.Errorf("invocation %d payload replaced", i)
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	p := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	invs := make([]batch.Invocation, 6)
	for i := range invs {
		invs[i] = batch.Invocation{Signal: framework.SignalAlert, Payload: framework.Payload{"data": []float64{2, 1}}}
	}
	for _, par := range []int{1, 3} {
		t.Run(fmt.Sprintf("parallel=%d", par), func(t *testing.T) {
			outcomes, err := batch.Run(ctx, p, invs, batch.Options{Parallel: par})
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want context.Canceled", err)
			}
			for i, o := range outcomes {
				if o.Signal != "" || o.Result.Emitted || o.Err != nil {
					t.Errorf("outcome %d delivered after cancel: %+v", i, o)
				}
			}
		})
	}
}
