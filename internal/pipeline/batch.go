package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/autoreport/internal/model"
)

// DefaultConcurrency is the number of files a BatchLoader reads at once
// unless configured otherwise.
const DefaultConcurrency = 4

// Input is one result file and the model name derived from it.
type Input struct {
	ModelName string
	Path      string
}

// Inputs derives model names from paths with model.ModelNameFromPath.
// The order of paths is kept.
func Inputs(paths []string, suffix string) []Input {
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		inputs[i] = Input{
			ModelName: model.ModelNameFromPath(p, suffix),
			Path:      p,
		}
	}
	return inputs
}

// LoadFunc builds the ModelResults of one input.
type LoadFunc func(ctx context.Context, in Input) (*model.ModelResults, error)

// BatchLoader loads result files concurrently.
// Results keep the order of the inputs regardless of completion order.
type BatchLoader struct {
	load        LoadFunc
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchLoader.
type BatchOption func(*BatchLoader)

// WithBatchLogger sets a custom logger for batch loading.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchLoader) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files loaded at once.
// Values below one are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchLoader) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLoadFunc replaces the function used to load one input.
// The default reads the file with model.New.
func WithLoadFunc(fn LoadFunc) BatchOption {
	return func(b *BatchLoader) {
		b.load = fn
	}
}

// NewBatchLoader creates a new BatchLoader.
func NewBatchLoader(opts ...BatchOption) *BatchLoader {
	bl := &BatchLoader{
		load:        loadFile,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(bl)
	}

	return bl
}

// Load reads every input. The first failure cancels the loads still in
// flight and is returned; no partial results are returned with it.
func (bl *BatchLoader) Load(ctx context.Context, inputs []Input) ([]*model.ModelResults, error) {
	bl.logger.Debug("starting batch load",
		"total_files", len(inputs),
		"concurrency", bl.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.ModelResults, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bl.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			m, err := bl.load(ctx, in)
			if err != nil {
				return err
			}
			results[i] = m

			bl.logger.Debug("loaded results",
				"model", in.ModelName,
				"path", in.Path,
				"images", m.ImageCount(),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bl.logger.Debug("batch load complete",
		"total_files", len(inputs),
		"elapsed", time.Since(startTime),
	)

	return results, nil
}

func loadFile(_ context.Context, in Input) (*model.ModelResults, error) {
	return model.New(in.ModelName, in.Path)
}
