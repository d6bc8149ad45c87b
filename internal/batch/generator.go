package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"sticqr/internal/links"
	"sticqr/internal/logging"
	"sticqr/internal/qrstyle"
)

// Renderer turns an identifier into a styled QR image.
type Renderer interface {
	Render(identifier string, size int) (*image.NRGBA, error)
}

// SaveFunc persists a rendered image under dir and returns its path.
type SaveFunc func(dir, identifier string, img image.Image) (string, error)

// Output pairs an identifier with the file its image was written to.
type Output struct {
	Identifier string
	Path       string
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers bounds the number of concurrent renders. Values below one fall
// back to the CPU count.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithBestEffort keeps generating after a failure and returns partial results
// with every error joined.
func WithBestEffort(enabled bool) Option {
	return func(g *Generator) {
		g.bestEffort = enabled
	}
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithSaver replaces the default PNG writer.
func WithSaver(save SaveFunc) Option {
	return func(g *Generator) {
		if save != nil {
			g.save = save
		}
	}
}

// Generator renders and saves QR images through a fixed worker pool.
type Generator struct {
	renderer   Renderer
	save       SaveFunc
	workers    int
	bestEffort bool
	logger     *slog.Logger
}

// NewGenerator wires a generator around renderer.
func NewGenerator(renderer Renderer, opts ...Option) *Generator {
	g := &Generator{
		renderer: renderer,
		save:     qrstyle.SaveQR,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers <= 0 {
		g.workers = runtime.NumCPU()
	}
	g.logger = logging.NewComponentLogger(g.logger, "batch")
	return g
}

// NewIdentifiers returns n distinct random identifiers.
func NewIdentifiers(n int) []string {
	if n <= 0 {
		return nil
	}
	ids := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(ids) < n {
		id := uuid.NewString()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Generate creates n fresh identifiers and renders each at size into dir.
func (g *Generator) Generate(ctx context.Context, n, size int, dir string) ([]Output, error) {
	if n <= 0 {
		return nil, fmt.Errorf("batch count must be positive, got %d", n)
	}
	return g.GenerateIDs(ctx, NewIdentifiers(n), size, dir)
}

type result struct {
	out Output
	err error
}

// GenerateIDs renders every identifier in ids. Outputs arrive in completion
// order, not submission order.
func (g *Generator) GenerateIDs(ctx context.Context, ids []string, size int, dir string) ([]Output, error) {
	if g.renderer == nil {
		return nil, errors.New("batch generator: renderer is required")
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", qrstyle.ErrInvalidSize, size)
	}
	if err := checkDistinct(ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr directory: %w", err)
	}

	logger := logging.WithContext(ctx, g.logger)
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(g.workers, len(ids))
	jobs := make(chan string)
	results := make(chan result, len(ids))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- g.renderOne(runCtx, id, size, dir)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			if runCtx.Err() != nil {
				return
			}
			select {
			case jobs <- id:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outputs := make([]Output, 0, len(ids))
	var failures []error
	for res := range results {
		if res.err == nil {
			outputs = append(outputs, res.out)
			continue
		}
		if runCtx.Err() != nil && errors.Is(res.err, context.Canceled) {
			continue
		}
		failures = append(failures, res.err)
		logger.Warn("qr generation failed",
			logging.String(logging.FieldIdentifier, res.out.Identifier),
			logging.Error(res.err),
		)
		if !g.bestEffort {
			cancel()
		}
	}

	if err := ctx.Err(); err != nil {
		return outputs, fmt.Errorf("batch generation interrupted: %w", err)
	}
	if len(failures) > 0 {
		if !g.bestEffort {
			return nil, failures[0]
		}
		logger.Info("batch finished with failures",
			logging.Int("generated", len(outputs)),
			logging.Int("failed", len(failures)),
			logging.Duration("elapsed", time.Since(start)),
		)
		return outputs, errors.Join(failures...)
	}

	logger.Info("batch generated",
		logging.Int("count", len(outputs)),
		logging.Int("workers", workers),
		logging.Duration("elapsed", time.Since(start)),
	)
	return outputs, nil
}

func (g *Generator) renderOne(ctx context.Context, id string, size int, dir string) result {
	out := Output{Identifier: id}
	if err := ctx.Err(); err != nil {
		return result{out: out, err: err}
	}
	img, err := g.renderer.Render(id, size)
	if err != nil {
		return result{out: out, err: fmt.Errorf("render %s: %w", id, err)}
	}
	path, err := g.save(dir, id, img)
	if err != nil {
		return result{out: out, err: err}
	}
	out.Path = path
	return result{out: out}
}

func checkDistinct(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := links.CheckIdentifier(id); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("batch contains duplicate identifier %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
