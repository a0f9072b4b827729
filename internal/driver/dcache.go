package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"whlsl/internal/diag"
	"whlsl/internal/source"
)

// Current schema version; increment when CachedResult changes.
const resultCacheSchemaVersion uint16 = 1

// ResultCache stores check results on disk, keyed by the content of the
// program description and the settings it was checked with. Safe for
// concurrent use.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedResult is the stored outcome of checking one file. Spans are kept
// as offsets and re-attached to the file on load.
type CachedResult struct {
	Schema         uint16
	Path           string
	Diagnostics    []CachedDiagnostic
	Instantiations int
	// InstantiationDump is the --emit-instantiations listing, when requested.
	InstantiationDump string
}

type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

type CachedNote struct {
	Msg     string
	Start   uint32
	End     uint32
	HasSpan bool
}

// OpenResultCache opens the cache under $XDG_CACHE_HOME/<app>, falling back
// to ~/.cache/<app>.
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenResultCacheAt(filepath.Join(base, app))
}

// OpenResultCacheAt opens a cache rooted at dir.
func OpenResultCacheAt(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *ResultCache) Dir() string { return c.dir }

func (c *ResultCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "results", key.String()+".mp")
}

// Put writes a result atomically.
func (c *ResultCache) Put(key Digest, res *CachedResult) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to remove temp file: %w", rmErr)
		}
	}()

	res.Schema = resultCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(res); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads a result; ok is false on a miss or a schema mismatch.
func (c *ResultCache) Get(key Digest, out *CachedResult) (ok bool, err error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == resultCacheSchemaVersion, nil
}

// DropAll removes every cached result.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func toCached(path string, bag *diag.Bag) *CachedResult {
	res := &CachedResult{Path: path}
	for _, d := range bag.Items() {
		if d.Code == diag.ObsTimings {
			continue
		}
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{
				Msg:     n.Msg,
				Start:   n.Span.Start,
				End:     n.Span.End,
				HasSpan: n.Span != (source.Span{}),
			})
		}
		res.Diagnostics = append(res.Diagnostics, cd)
	}
	return res
}

// restore re-creates the diagnostics of a cached result against file.
func (r *CachedResult) restore(file source.FileID, bag *diag.Bag) {
	for _, cd := range r.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: file, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			note := diag.Note{Msg: n.Msg}
			if n.HasSpan {
				note.Span = source.Span{File: file, Start: n.Start, End: n.End}
			}
			d.Notes = append(d.Notes, note)
		}
		bag.Add(d)
	}
}
