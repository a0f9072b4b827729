package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/loader"
	"whlsl/internal/mono"
	"whlsl/internal/observ"
	"whlsl/internal/sema"
	"whlsl/internal/source"
	"whlsl/internal/trace"
	"whlsl/internal/types"
)

// Options configure checking.
type Options struct {
	// MaxDiagnostics bounds each file's bag; 0 means 100.
	MaxDiagnostics int
	// MaxDepth bounds AST nesting in the checker; 0 disables the limit.
	MaxDepth int
	// Jobs bounds parallel checking; 0 uses GOMAXPROCS.
	Jobs int
	// Timings adds an OBS timing diagnostic per file.
	Timings bool
	// EmitInstantiations renders the instantiation listing into the result.
	EmitInstantiations bool
	// Cache, when set, serves unchanged files from disk.
	Cache *ResultCache
	// Progress, when set, receives per-file stage events.
	Progress ProgressSink
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// FileResult is the outcome of checking one program description.
type FileResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Program and Instantiations are nil when the result came from the cache
	// or the description did not load.
	Program        *ast.Program
	Instantiations *mono.InstantiationMap
	// InstantiationCount survives caching.
	InstantiationCount int
	InstantiationDump  string
	Cached             bool
	Timing             *observ.Report
	// CacheErr is a failed cache write; the result itself is still valid.
	CacheErr error
}

// CheckFile loads, binds and checks the file registered under id. Failures
// of the program itself end up in the result's bag; the returned error is
// reserved for I/O and cancellation.
func CheckFile(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*FileResult, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("driver: unknown file id %d", id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	_, span := trace.StartSpan(ctx, trace.ScopeDriver, "check_file")
	span.WithExtra("path", file.Path)
	defer span.End("")

	res := &FileResult{Path: file.Path, FileID: id, Bag: diag.NewBag(opts.maxDiagnostics())}
	timer := observ.NewTimer()
	started := time.Now()
	defer func() {
		status := StatusDone
		if res.Bag.HasErrors() {
			status = StatusError
		}
		report(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: status, Elapsed: time.Since(started)})
		if opts.Timings {
			report := timer.Report()
			res.Timing = &report
			appendTimingDiagnostic(res.Bag, timingPayload{Path: file.Path, Cached: res.Cached, TotalMS: report.TotalMS, Phases: report.Phases})
		}
	}()

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(file.Path, file.Content, opts)
		var cached CachedResult
		report(opts.Progress, Event{File: file.Path, Stage: StageCache, Status: StatusWorking})
		idx := timer.Begin("cache")
		ok, err := opts.Cache.Get(key, &cached)
		timer.End(idx, "")
		// A corrupt entry is treated as a miss and overwritten below.
		if err == nil && ok {
			cached.restore(id, res.Bag)
			res.Cached = true
			res.InstantiationCount = cached.Instantiations
			res.InstantiationDump = cached.InstantiationDump
			return res, nil
		}
	}

	in := types.NewIntrinsics()
	report(opts.Progress, Event{File: file.Path, Stage: StageLoad, Status: StatusWorking})
	var prog *ast.Program
	err := timer.Measure("load", func() error {
		var err error
		prog, err = loader.Load(fs, id, loader.Options{Intrinsics: in, Format: loader.FormatOf(file.Path)})
		return err
	})
	if err != nil {
		var le *loader.Error
		if !errors.As(err, &le) {
			return nil, err
		}
		res.Bag.Add(le.Diagnostic())
		putCached(tracer, span.ID(), opts.Cache, key, res)
		return res, nil
	}
	res.Program = prog

	idx := timer.Begin("synthesize")
	n := sema.SynthesizeArrayLength(prog, in)
	n += sema.SynthesizeVectorGetters(prog, in)
	timer.End(idx, fmt.Sprintf("%d natives", n))

	var result sema.Result
	report(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: StatusWorking})
	_ = timer.Measure("check", func() error {
		var err error
		result, err = sema.Check(prog, sema.Options{
			Reporter:    diag.BagReporter{Bag: res.Bag},
			Intrinsics:  in,
			Tracer:      tracer,
			TraceParent: span.ID(),
			MaxDepth:    opts.MaxDepth,
		})
		return err
	})
	res.Instantiations = result.Instantiations
	res.InstantiationCount = result.Instantiations.Len()
	if opts.EmitInstantiations {
		var buf bytes.Buffer
		if err := mono.DumpInstantiations(&buf, result.Instantiations, fs, mono.DumpOptions{}); err != nil {
			return nil, err
		}
		res.InstantiationDump = buf.String()
	}
	putCached(tracer, span.ID(), opts.Cache, key, res)
	return res, nil
}

// putCached stores res best-effort. A failed write is traced and kept on
// res so the caller can warn, without failing the check.
func putCached(tracer trace.Tracer, parent uint64, cache *ResultCache, key Digest, res *FileResult) {
	if cache == nil {
		return
	}
	entry := toCached(res.Path, res.Bag)
	entry.Instantiations = res.InstantiationCount
	entry.InstantiationDump = res.InstantiationDump
	if err := cache.Put(key, entry); err != nil {
		res.CacheErr = fmt.Errorf("driver: caching %s: %w", res.Path, err)
		trace.Point(tracer, trace.ScopeDriver, "cache_put_failed", parent, res.CacheErr.Error())
	}
}
