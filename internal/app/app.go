package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"ciid-go/internal/catalog"
	"ciid-go/internal/ciid"
	"ciid-go/internal/config"
	"ciid-go/internal/decode"
	"ciid-go/internal/fs"
	"ciid-go/internal/libraw"
	"ciid-go/internal/metadata"
)

// ErrNoCatalog is returned by catalog commands when no catalog is configured.
var ErrNoCatalog = errors.New("no catalog configured")

// ErrNameMismatch is returned by VerifyName when a file is not named after its identifier.
var ErrNameMismatch = errors.New("file name does not match identifier")

// Options select per-invocation behavior of an App.
type Options struct {
	// Command identifies the CLI command being run (e.g. "identify", "index").
	Command string

	// Verbose mirrors the log to stderr and enables debug records.
	Verbose bool

	// Catalog opens the configured catalog. Commands that never touch it
	// leave this off so that no database file is created.
	Catalog bool

	// Stderr receives the mirrored log in verbose mode. Defaults to os.Stderr.
	Stderr io.Writer
}

// App is the application layer between the CLI and the derivation pipeline.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the catalog lifecycle on Close.
type App struct {
	fsmgr   ciid.FilesystemManager
	deriver *ciid.Deriver
	catalog ciid.Catalog
	logger  ciid.Logger
	op      *Operation
	logFile *os.File
}

// New creates a fully wired App from the given config.
// The caller must call Close when done.
func New(cfg *config.Config, opts Options) (*App, error) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	op := NewOperation(opts.Command)
	runID := ciid.UUIDGenerator{}.New()
	slogger, logFile, err := newLogger(cfg.LogDir, runID, opts.Verbose, opts.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger.With("command", opts.Command)}

	deriver, err := newDeriver(cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	var cat ciid.Catalog
	if opts.Catalog {
		// The run row reuses the log's run ID so both can be correlated.
		c, err := catalog.NewCatalogFromConfig(cfg.Catalog, ciid.RealClock{}, fixedID(runID))
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		if c == nil {
			logFile.Close()
			return nil, ErrNoCatalog
		}
		cat = c
	}

	return newApp(fs.NewOSFilesystemManager(cfg.Filesystem.Ignore), deriver, cat, logger, op, logFile), nil
}

func newApp(fsmgr ciid.FilesystemManager, deriver *ciid.Deriver, cat ciid.Catalog, logger ciid.Logger, op *Operation, logFile *os.File) *App {
	return &App{
		fsmgr:   fsmgr,
		deriver: deriver,
		catalog: cat,
		logger:  logger,
		op:      op,
		logFile: logFile,
	}
}

// fixedID hands out the same ID every time.
type fixedID string

func (id fixedID) New() string { return string(id) }

// newDeriver builds the derivation pipeline selected by cfg.
func newDeriver(cfg *config.Config, logger ciid.Logger) (*ciid.Deriver, error) {
	source, err := metadata.NewSourceFromConfig(cfg.Metadata, logger)
	if err != nil {
		return nil, fmt.Errorf("creating metadata source: %w", err)
	}
	locator, err := metadata.NewLocatorFromConfig(cfg.Metadata)
	if err != nil {
		return nil, fmt.Errorf("creating zone locator: %w", err)
	}
	resolver := ciid.NewResolver(source, locator, logger)

	classifier, err := newClassifier(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("creating classifier: %w", err)
	}
	newHash, err := newHashFunc(cfg.Fingerprint.Hash)
	if err != nil {
		return nil, err
	}
	fingerprinter := ciid.NewFingerprinter(classifier, decode.JPEG{}, libraw.New(), newHash, logger)

	scheme := ciid.Scheme(cfg.Identifier.Scheme)
	if scheme == "" {
		scheme = ciid.SchemeDecimal
	}
	encoder, err := ciid.NewEncoder(scheme, cfg.Identifier.Digits(), cfg.Identifier.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}

	return ciid.NewDeriver(resolver, fingerprinter, encoder, logger, cfg.Identifier.NoHash), nil
}

func newClassifier(cfg config.FingerprintConfig) (ciid.Classifier, error) {
	switch cfg.Classify {
	case "", "extension":
		return ciid.NewExtensionClassifier(cfg.JPEGPattern)
	case "content":
		return ciid.ContentClassifier{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier: %s", cfg.Classify)
	}
}

func newHashFunc(name string) (func() hash.Hash, error) {
	switch name {
	case "", "sha256":
		return sha256.New, nil
	case "blake3":
		return func() hash.Hash { return blake3.New() }, nil
	default:
		return nil, fmt.Errorf("unknown fingerprint hash: %s", name)
	}
}

// expand resolves raw paths to the files they name. Directories are expanded
// when recursive is set and rejected otherwise.
func (a *App) expand(rawPaths []string, recursive bool) ([]*ciid.Path, error) {
	var files []*ciid.Path
	var errs []error
	for _, raw := range rawPaths {
		p, err := a.fsmgr.Resolve(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolving path: %w", err))
			continue
		}
		if !p.IsDir() {
			files = append(files, p)
			continue
		}
		if !recursive {
			errs = append(errs, fmt.Errorf("%s is a directory (use --recursive)", p))
			continue
		}
		found, err := a.fsmgr.FindFiles(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("finding files in %s: %w", p, err))
			continue
		}
		files = append(files, found...)
	}
	return files, errors.Join(errs...)
}

// Identify derives the identity of every file named by rawPaths and passes
// it to visit. A failing file is logged and skipped; the returned error joins
// every failure, including those returned by visit.
func (a *App) Identify(ctx context.Context, rawPaths []string, recursive bool, visit func(*ciid.Identity) error) error {
	files, expandErr := a.expand(rawPaths, recursive)

	errs := []error{expandErr}
	if expandErr != nil {
		a.op.Fail()
		a.logger.Error("expanding paths", "error", expandErr)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		path := file.String()
		a.logger.Debug("identifying file", "path", path, "bytes", file.Size())
		id, err := a.deriver.Derive(ctx, path)
		if err == nil {
			err = visit(id)
		}
		if err != nil {
			a.op.Fail()
			a.logger.Error("identifying file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// VerifyName checks that the file is named after its identifier, ignoring
// the extension.
func (a *App) VerifyName(id *ciid.Identity) error {
	base := filepath.Base(id.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name != id.Identifier {
		return fmt.Errorf("%w: %s should be named %s%s", ErrNameMismatch, id.Path, id.Identifier, filepath.Ext(base))
	}
	return nil
}

// RenameToIdentifier renames the file to <identifier><ext> in its directory
// and returns the new path. A file already named correctly is left alone; an
// existing file under the target name is never replaced.
func (a *App) RenameToIdentifier(id *ciid.Identity) (string, error) {
	dir, base := filepath.Split(id.Path)
	target := filepath.Join(dir, id.Identifier+filepath.Ext(base))
	if target == id.Path {
		return target, nil
	}

	if err := a.fsmgr.Rename(id.Path, target); err != nil {
		return "", fmt.Errorf("renaming %s: %w", id.Path, err)
	}
	a.logger.Info("renamed", "from", id.Path, "to", target)
	return target, nil
}

// Index derives and records the identity of every file named by rawPaths.
// Returns the number of files recorded.
func (a *App) Index(ctx context.Context, rawPaths []string, recursive bool) (int, error) {
	if a.catalog == nil {
		return 0, ErrNoCatalog
	}
	if err := a.persistOperation(ctx); err != nil {
		return 0, err
	}

	count := 0
	err := a.Identify(ctx, rawPaths, recursive, func(id *ciid.Identity) error {
		if err := a.catalog.PutIdentity(ctx, a.op.RunID, id); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// Duplicates lists fingerprints shared by more than one catalogued file.
func (a *App) Duplicates(ctx context.Context) ([]ciid.DuplicateGroup, error) {
	if a.catalog == nil {
		return nil, ErrNoCatalog
	}
	return a.catalog.Duplicates(ctx)
}

// persistOperation records the operation as a catalog run.
// This should only be called for catalog-mutating commands.
func (a *App) persistOperation(ctx context.Context) error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	run, err := a.catalog.BeginRun(ctx, a.op.Command)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.RunID = run.ID
	return nil
}

// Close finalizes the operation and closes all resources.
func (a *App) Close() error {
	var errs []error

	if a.catalog != nil {
		if a.op.Persisted() {
			if err := a.catalog.FinishRun(context.Background(), a.op.RunID, a.op.Status); err != nil {
				errs = append(errs, fmt.Errorf("finishing run: %w", err))
			}
		}
		if err := a.catalog.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing catalog: %w", err))
		}
	}

	if a.op.Failed > 0 {
		a.logger.Warn("finished with failures", "failed", a.op.Failed)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return errors.Join(errs...)
}
