// Package batch analyses many independent joints concurrently. Results are
// returned in input order and one bad joint never aborts the others.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/joint"
	"Fastener/internal/calc/margin"
	"Fastener/internal/metrics"
)

type Input struct {
	Items []joint.Request `json:"items"`
}

type ItemError struct {
	Code    calcerr.Code `json:"code"`
	Message string       `json:"message"`
}

// Item is the outcome of one request: exactly one of Result and Error is
// set.
type Item struct {
	Index   int                         `json:"index"`
	JointID string                      `json:"joint_id"`
	Result  *margin.JointAnalysisResult `json:"result,omitempty"`
	Error   *ItemError                  `json:"error,omitempty"`
}

type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Rejected int `json:"rejected"`
}

type Result struct {
	Items   []Item  `json:"items"`
	Summary Summary `json:"summary"`
}

type Options struct {
	// Workers bounds concurrent analyses; zero means GOMAXPROCS.
	Workers int
	// Timeout bounds the whole batch; zero means none.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Analyze runs every request through a. Items not started before ctx is
// done are reported with CodeCanceled. An empty batch yields an empty
// result.
func Analyze(ctx context.Context, a *joint.Analyzer, reqs []joint.Request, opts Options) (Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	items := make([]Item, len(reqs))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range reqs {
		items[i] = Item{Index: i, JointID: reqs[i].JointID}
		if ctx.Err() != nil {
			items[i].Error = canceled(ctx)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				items[i].Error = canceled(ctx)
				return nil
			}
			res, err := a.Analyze(reqs[i])
			if err != nil {
				logger.Warn("batch item rejected", "index", i, "joint_id", reqs[i].JointID, "error", err)
				items[i].Error = &ItemError{Code: calcerr.CodeOf(err), Message: calcerr.MessageOf(err)}
				return nil
			}
			items[i].Result = &res
			return nil
		})
	}
	// items record their own errors
	_ = g.Wait()

	opts.Metrics.ObserveBatch(len(reqs), time.Since(start))
	return Result{Items: items, Summary: summarize(items)}, nil
}

func canceled(ctx context.Context) *ItemError {
	msg := "batch canceled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		msg = "batch timeout exceeded"
	}
	return &ItemError{Code: calcerr.CodeCanceled, Message: msg}
}

func summarize(items []Item) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		switch {
		case it.Error != nil:
			s.Rejected++
		case it.Result.Pass:
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

// Results returns the successful analyses in input order.
func (r Result) Results() []margin.JointAnalysisResult {
	out := make([]margin.JointAnalysisResult, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Result != nil {
			out = append(out, *it.Result)
		}
	}
	return out
}
