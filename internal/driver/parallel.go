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

	"whlsl/internal/diag"
	"whlsl/internal/source"
	"whlsl/internal/trace"
)

// programExts are the extensions collected when walking a directory.
var programExts = []string{".yaml", ".yml", ".msgpack", ".mp"}

func isProgramFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range programExts {
		if ext == e {
			return true
		}
	}
	return false
}

// listPrograms returns the sorted program descriptions under dir.
func listPrograms(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isProgramFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandPaths replaces each directory in paths by the program descriptions
// it contains. Files named explicitly are kept whatever their extension.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := listPrograms(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

// CheckPaths checks every program description named by paths in parallel.
// Results come back in input order. Programs share nothing, so the only
// shared state is the file set, which is filled before the workers start
// and only read afterwards.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*source.FileSet, []*FileResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "check_paths")
	span.WithExtra("files", fmt.Sprint(len(files)))
	defer span.End("")

	results := make([]*FileResult, len(files))
	ids := make([]source.FileID, len(files))
	loaded := make([]bool, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			bag := diag.NewBag(opts.maxDiagnostics())
			bag.Add(diag.Errorf(diag.IOLoadFileError, source.Span{}, "%s: %v", path, err))
			results[i] = &FileResult{Path: path, Bag: bag}
			report(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError})
			continue
		}
		ids[i] = id
		loaded[i] = true
		report(opts.Progress, Event{File: fileSet.Get(id).Path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	// Each goroutine writes only its own index.
	for i := range files {
		if !loaded[i] {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := CheckFile(gctx, fileSet, ids[i], opts)
			if err != nil {
				return fmt.Errorf("%s: %w", files[i], err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, nil, err
	}
	return fileSet, results, nil
}
