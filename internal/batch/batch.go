// Package batch delivers many independent signal invocations to one shared
// pipeline, optionally in parallel.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"seqguard/internal/logging"
	"seqguard/pkg/framework"
)

// Invocation is one unit of work: a single signal with its payload.
type Invocation struct {
	Signal  framework.Signal
	Payload framework.Payload
}

// Outcome records what the pipeline did with one invocation. Err is set
// when the delivery failed; Result is meaningful only when Err is nil.
type Outcome struct {
	Index  int
	Signal framework.Signal
	Result framework.Result
	Err    error
}

// Options controls a batch run.
type Options struct {
	Parallel int // max concurrent deliveries; <= 1 runs serially
}

// LoadInvocations parses a YAML (or JSON) list of records. Each record
// needs a "signal" key; every other key becomes part of the payload.
//
//	- signal: alert
//	  data: [3, 1, 2]
func LoadInvocations(data []byte) ([]Invocation, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse invocations: %w", err)
	}

	invs := make([]Invocation, 0, len(raw))
	for i, rec := range raw {
		s, ok := rec["signal"].(string)
		if !ok {
			return nil, fmt.Errorf("invocation %d: signal is required", i)
		}
		sig, err := framework.ParseSignal(s)
		if err != nil {
			return nil, fmt.Errorf("invocation %d: %w", i, err)
		}
		payload := make(framework.Payload, len(rec))
		for k, v := range rec {
			if k != "signal" {
				payload[k] = v
			}
		}
		invs = append(invs, Invocation{Signal: sig, Payload: payload})
	}
	return invs, nil
}

// Run delivers every invocation and returns outcomes in input order.
// Per-invocation failures are recorded in the outcome; Run itself only
// fails when ctx is canceled before all invocations were delivered.
func Run(ctx context.Context, p *framework.Pipeline, invs []Invocation, opts Options) ([]Outcome, error) {
	logger := logging.New("batch")
	outcomes := make([]Outcome, len(invs))

	deliver := func(ctx context.Context, i int) {
		inv := invs[i]
		res, err := p.Deliver(ctx, inv.Signal, inv.Payload.Clone())
		outcomes[i] = Outcome{Index: i, Signal: inv.Signal, Result: res, Err: err}
		if err != nil {
			logger.Warn("invocation failed", "index", i, "signal", inv.Signal, "error", err)
		}
	}

	if opts.Parallel > 1 {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Parallel)
		for i := range invs {
			g.Go(func() error {
				// Delivery failures live in the outcome; only cancellation
				// stops the group.
				if err := gCtx.Err(); err != nil {
					return err
				}
				deliver(gCtx, i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return outcomes, err
		}
	} else {
		for i := range invs {
			if ctx.Err() != nil {
				break
			}
			deliver(ctx, i)
		}
	}

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	var failed, suppressed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case !o.Result.Emitted:
			suppressed++
		}
	}
	logger.Info("batch complete", "pipeline", p.Name(), "total", len(invs), "failed", failed, "suppressed", suppressed, "parallel", opts.Parallel)
	return outcomes, nil
}
