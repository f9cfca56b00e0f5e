package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"caret/internal/bundle"
	"caret/internal/diag"
	"caret/internal/diagfmt"
	"caret/internal/source"
)

// Options configures one batch render.
type Options struct {
	Format string // "pretty", "short", "json", "sarif"

	Pretty diagfmt.PrettyOpts
	JSON   diagfmt.JSONOpts
	Sarif  diagfmt.SarifRunMeta

	// WithSecondary adds secondary labels as extra lines in short output.
	WithSecondary bool

	Jobs  int // 0 means GOMAXPROCS
	Cache *RenderCache

	Observe Observer
}

// fingerprint folds every output-affecting option into the cache key.
func (o Options) fingerprint() string {
	return fmt.Sprintf("v1|%s|color=%t|tab=%d|path=%d|max=%d|sec=%t|jsonpos=%t|jsonsec=%t|jsonfoot=%t",
		o.Format,
		o.Pretty.Color, o.Pretty.TabWidth, o.Pretty.PathMode, o.Pretty.Max,
		o.WithSecondary,
		o.JSON.IncludePositions, o.JSON.IncludeSecondary, o.JSON.IncludeFooters)
}

// Result is the outcome for one bundle. Err is set when the bundle
// failed to load, validate, or render; the rest of the batch still
// completes.
type Result struct {
	Path      string
	Output    string
	Errors    int
	Warnings  int
	FromCache bool
	Err       error
}

// ListBundles expands the given paths into a sorted list of bundle
// files. Directories are walked for *.json entries.
func ListBundles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// RenderBatch loads and renders every bundle concurrently, bounded by
// Options.Jobs. Results come back in input order regardless of
// completion order. The returned tally sums every successfully
// rendered bundle; failed bundles contribute nothing to it.
func RenderBatch(ctx context.Context, paths []string, opts Options) ([]Result, diag.Tally, error) {
	var tally diag.Tally
	if len(paths) == 0 {
		return nil, tally, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range paths {
		opts.Observe.emit(Event{Path: path, Stage: StageQueued})
	}

	// Indexes are unique per goroutine, no mutex needed.
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i] = renderOne(path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, tally, err
	}

	for i := range results {
		if results[i].Err != nil {
			continue
		}
		var t diag.Tally
		for range results[i].Errors {
			t.Observe(diag.SevError)
		}
		for range results[i].Warnings {
			t.Observe(diag.SevWarning)
		}
		tally.Merge(t)
	}
	return results, tally, nil
}

func renderOne(path string, opts Options) Result {
	res := Result{Path: path}

	opts.Observe.emit(Event{Path: path, Stage: StageLoading})
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read bundle: %w", err)
		opts.Observe.emit(Event{Path: path, Stage: StageFailed, Err: res.Err})
		return res
	}

	key := DigestFor(data, opts.fingerprint())
	var cached CachePayload
	if hit, err := opts.Cache.Get(key, &cached); err == nil && hit {
		res.Output = cached.Output
		res.Errors = int(cached.Errors)
		res.Warnings = int(cached.Warnings)
		res.FromCache = true
		opts.Observe.emit(Event{Path: path, Stage: StageDone, FromCache: true})
		return res
	}

	b, err := bundle.Parse(data)
	if err != nil {
		res.Err = err
		opts.Observe.emit(Event{Path: path, Stage: StageFailed, Err: err})
		return res
	}

	fs, bag, err := b.Resolve(filepath.Dir(path))
	if err != nil {
		res.Err = err
		opts.Observe.emit(Event{Path: path, Stage: StageFailed, Err: err})
		return res
	}
	bag.Sort()

	opts.Observe.emit(Event{Path: path, Stage: StageRendering})
	out, err := renderBag(bag, fs, opts)
	if err != nil {
		res.Err = err
		opts.Observe.emit(Event{Path: path, Stage: StageFailed, Err: err})
		return res
	}

	res.Output = out
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			res.Errors++
		case diag.SevWarning:
			res.Warnings++
		case diag.SevNote:
		}
	}

	// Cache writes are best effort; a failed Put never fails the render.
	_ = opts.Cache.Put(key, &CachePayload{
		Schema:   renderCacheSchemaVersion,
		Format:   opts.Format,
		Output:   res.Output,
		Errors:   uint32(res.Errors),
		Warnings: uint32(res.Warnings),
	})

	opts.Observe.emit(Event{Path: path, Stage: StageDone})
	return res
}

func renderBag(bag *diag.Bag, fs *source.FileSet, opts Options) (string, error) {
	var buf strings.Builder
	switch opts.Format {
	case "", "pretty":
		if err := diagfmt.Pretty(&buf, bag, fs, opts.Pretty); err != nil {
			return "", err
		}
	case "short":
		out := diag.FormatShort(bag.Items(), fs, opts.WithSecondary)
		buf.WriteString(out)
		if out != "" {
			buf.WriteByte('\n')
		}
	case "json":
		if err := diagfmt.JSON(&buf, bag, fs, opts.JSON); err != nil {
			return "", err
		}
	case "sarif":
		if err := diagfmt.Sarif(&buf, bag, fs, opts.Sarif); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown output format %q", opts.Format)
	}
	return buf.String(), nil
}
