package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sticqr/internal/batch"
	"sticqr/internal/claims"
	"sticqr/internal/config"
	"sticqr/internal/links"
	"sticqr/internal/logging"
	"sticqr/internal/pdfdoc"
	"sticqr/internal/preflight"
	"sticqr/internal/qrstyle"
	"sticqr/internal/sticker"
)

const lockFileName = ".sticqr.lock"

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("output directory is locked by another sticqr run")

// RecordStore is the subset of the claim store the pipeline writes to.
type RecordStore interface {
	CreateRecord(ctx context.Context, rec claims.NewRecord) (string, error)
	GetRecord(ctx context.Context, identifier string) (*claims.Record, error)
	ListByBatch(ctx context.Context, batchID string) ([]*claims.Record, error)
}

// Options controls a single run.
type Options struct {
	BatchID     string
	Count       int
	Size        int
	Identifiers []string
	BestEffort  bool
	SkipPDF     bool
}

// Item is one code produced by a run.
type Item struct {
	Identifier  string
	QRPath      string
	StickerPath string
}

// Result summarises a run.
type Result struct {
	BatchID  string
	Items    []Item
	PDFPath  string
	Pages    int
	Failures error
}

// Pipeline wires the renderers, the store and the output layout together.
type Pipeline struct {
	cfg        *config.Config
	store      RecordStore
	compositor *qrstyle.Compositor
	base       *slog.Logger
	logger     *slog.Logger
}

// New builds a pipeline from cfg. The style is resolved once here.
func New(cfg *config.Config, store RecordStore, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if store == nil {
		return nil, errors.New("pipeline: record store is required")
	}
	style, err := cfg.ResolveStyle()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	component := logging.NewComponentLogger(logger, "pipeline")
	opts := []qrstyle.Option{qrstyle.WithLogger(logging.NewComponentLogger(logger, "qrstyle"))}
	if cfg.Paths.Icon != "" {
		opts = append(opts, qrstyle.WithIcon(cfg.Paths.Icon))
	}
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		compositor: qrstyle.NewCompositor(style, opts...),
		base:       logger,
		logger:     component,
	}, nil
}

// NewBatchID returns a sortable, unique batch identifier.
func NewBatchID(now time.Time) string {
	return now.UTC().Format("20060102-150405") + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// Run produces a batch end to end.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	opts = p.withDefaults(opts)
	ctx = logging.WithBatchID(ctx, opts.BatchID)
	logger := logging.WithContext(ctx, p.logger)

	unlock, err := p.prepare()
	if err != nil {
		return nil, err
	}
	defer unlock()

	ids := opts.Identifiers
	if len(ids) == 0 {
		ids = batch.NewIdentifiers(opts.Count)
	} else if err := p.checkSupplied(ctx, ids); err != nil {
		return nil, err
	}

	templ, err := sticker.Open(p.cfg.Paths.Template)
	if err != nil {
		return nil, err
	}

	gen := batch.NewGenerator(p.compositor,
		batch.WithWorkers(p.cfg.Generation.Workers),
		batch.WithBestEffort(opts.BestEffort),
		batch.WithLogger(p.base),
		batch.WithSaver(p.saveWithSticker(templ)),
	)

	logger.Info("generating batch",
		logging.Int("count", len(ids)),
		logging.Int("size", opts.Size),
		logging.Int("workers", p.cfg.Generation.Workers),
	)
	outputs, genErr := gen.GenerateIDs(ctx, ids, opts.Size, p.cfg.QRDir())
	if genErr != nil && (!opts.BestEffort || len(outputs) == 0 || ctx.Err() != nil) {
		return nil, genErr
	}

	items := orderItems(ids, outputs, p.cfg.StickerDir())
	result := &Result{BatchID: opts.BatchID, Items: items, Failures: genErr}

	for _, item := range items {
		if _, err := p.store.CreateRecord(ctx, claims.NewRecord{
			BatchID:     opts.BatchID,
			SourcePath:  item.QRPath,
			StickerPath: item.StickerPath,
			Identifier:  item.Identifier,
		}); err != nil {
			return nil, fmt.Errorf("record %s: %w", item.Identifier, err)
		}
	}

	if !opts.SkipPDF {
		if err := p.assemble(result); err != nil {
			return nil, err
		}
	}

	logger.Info("batch complete",
		logging.Int("stickers", len(items)),
		logging.String("pdf", result.PDFPath),
		logging.Bool("partial", genErr != nil),
	)
	return result, nil
}

// Single produces one code and sticker with no PDF, the quick path used for
// test prints.
func (p *Pipeline) Single(ctx context.Context, identifier string) (*Item, error) {
	if identifier == "" {
		identifier = uuid.NewString()
	}
	res, err := p.Run(ctx, Options{
		BatchID:     "single-" + identifier,
		Identifiers: []string{identifier},
		SkipPDF:     true,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Items) != 1 {
		return nil, fmt.Errorf("single run produced %d stickers", len(res.Items))
	}
	return &res.Items[0], nil
}

// RebuildPDF reassembles the document for a stored batch from its sticker
// files.
func (p *Pipeline) RebuildPDF(ctx context.Context, batchID string) (*Result, error) {
	records, err := p.store.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("batch %s has no records", batchID)
	}
	result := &Result{BatchID: batchID}
	for _, rec := range records {
		if rec.StickerPath == "" {
			return nil, fmt.Errorf("record %s has no sticker path", rec.Identifier)
		}
		result.Items = append(result.Items, Item{
			Identifier:  rec.Identifier,
			QRPath:      rec.SourcePath,
			StickerPath: rec.StickerPath,
		})
	}
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if err := p.assemble(result); err != nil {
		return nil, err
	}
	return result, nil
}

// checkSupplied fails before anything is rendered when a caller-supplied
// identifier is already recorded or would write over an existing file.
func (p *Pipeline) checkSupplied(ctx context.Context, ids []string) error {
	owners := make(map[string]string, len(ids))
	for _, id := range ids {
		if err := links.CheckIdentifier(id); err != nil {
			return err
		}
		rec, err := p.store.GetRecord(ctx, id)
		if err != nil {
			return fmt.Errorf("check identifier %s: %w", id, err)
		}
		if rec != nil {
			return fmt.Errorf("%w: %s", claims.ErrDuplicateIdentifier, id)
		}
		name := sticker.FileName(id)
		if owner, ok := owners[name]; ok {
			return fmt.Errorf("identifiers %q and %q map to the same file %s", owner, id, name)
		}
		owners[name] = id
		for _, path := range []string{
			filepath.Join(p.cfg.QRDir(), qrstyle.FileName(id)),
			filepath.Join(p.cfg.StickerDir(), name),
		} {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("refusing to overwrite %s", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check %s: %w", path, err)
			}
		}
	}
	return nil
}

func (p *Pipeline) withDefaults(opts Options) Options {
	if strings.TrimSpace(opts.BatchID) == "" {
		opts.BatchID = NewBatchID(time.Now())
	}
	if opts.Count <= 0 {
		opts.Count = p.cfg.Generation.Count
	}
	if opts.Size <= 0 {
		opts.Size = p.cfg.Generation.Size
	}
	return opts
}

// prepare creates the output tree, runs preflight, and takes the run lock.
func (p *Pipeline) prepare() (func(), error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	results := preflight.RunAll(p.cfg)
	if err := preflight.Err(results); err != nil {
		return nil, err
	}
	for _, w := range preflight.Warnings(results) {
		p.logger.Warn("preflight check failed, continuing",
			logging.String("check", w.Name),
			logging.String("detail", w.Detail),
		)
	}
	lock := flock.New(filepath.Join(p.cfg.Paths.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() { _ = lock.Unlock() }, nil
}

// saveWithSticker writes the QR image, then composes and writes its sticker
// from the same in-memory image.
func (p *Pipeline) saveWithSticker(templ *sticker.Compositor) batch.SaveFunc {
	pos := sticker.Position{X: p.cfg.Sticker.PositionX, Y: p.cfg.Sticker.PositionY}
	return func(dir, identifier string, img image.Image) (string, error) {
		qrPath, err := qrstyle.SaveQR(dir, identifier, img)
		if err != nil {
			return "", err
		}
		composed, err := templ.Compose(img, pos, p.cfg.Sticker.ScaleFactor)
		if err != nil {
			return "", fmt.Errorf("sticker %s: %w", identifier, err)
		}
		stickerPath := filepath.Join(p.cfg.StickerDir(), sticker.FileName(identifier))
		if err := sticker.Save(stickerPath, composed, p.cfg.Sticker.DPI); err != nil {
			return "", fmt.Errorf("sticker %s: %w", identifier, err)
		}
		return qrPath, nil
	}
}

func (p *Pipeline) assemble(result *Result) error {
	paths := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		paths = append(paths, item.StickerPath)
	}
	out := filepath.Join(p.cfg.PDFDir(), pdfdoc.FileName(result.BatchID))
	pages, err := pdfdoc.Assemble(paths, out, pdfdoc.Layout{
		PageSize: p.cfg.PDF.PageSize,
		Margin:   p.cfg.PDF.Margin,
		Width:    p.cfg.PDF.Width,
	})
	if err != nil {
		return err
	}
	result.PDFPath = out
	result.Pages = pages
	return nil
}

// orderItems restores submission order for the outputs that completed.
func orderItems(ids []string, outputs []batch.Output, stickerDir string) []Item {
	byID := make(map[string]string, len(outputs))
	for _, out := range outputs {
		byID[out.Identifier] = out.Path
	}
	items := make([]Item, 0, len(outputs))
	for _, id := range ids {
		qrPath, ok := byID[id]
		if !ok {
			continue
		}
		items = append(items, Item{
			Identifier:  id,
			QRPath:      qrPath,
			StickerPath: filepath.Join(stickerDir, sticker.FileName(id)),
		})
	}
	return items
}
