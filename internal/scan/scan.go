// Package scan builds path-keyed catalogs of directory trees.
//
// A catalog is an immutable snapshot: rescanning a root produces a new
// catalog rather than updating an existing one. File contents are identified
// by an MD5 digest streamed in fixed-size chunks so memory use stays bounded
// regardless of file size.
package scan

import (
	"context"
	"crypto/md5" // #nosec G501 - digest is for change detection, not security
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/klauern/dirsync/internal/logging"
)

// hashChunkSize is the read size used while streaming file content through
// the digest accumulator.
const hashChunkSize = 8192

// FileRecord describes one regular file under a scanned root.
type FileRecord struct {
	// RelPath is the path relative to the scan root, in slash form.
	// It is the unique key within a catalog.
	RelPath string

	// Size is the byte length at scan time.
	Size int64

	// ModTime is the last-modification timestamp.
	ModTime time.Time

	// Digest is the hex MD5 of the full file content. Empty string means
	// the file could not be read; comparison treats an empty digest as
	// unconditionally mismatched.
	Digest string

	// AbsPath is the resolved filesystem location, used only for I/O.
	AbsPath string
}

// Unreadable reports whether the record carries the empty-digest sentinel.
func (r FileRecord) Unreadable() bool {
	return r.Digest == ""
}

// Catalog maps relative paths to file records for one directory tree.
type Catalog map[string]FileRecord

// Paths returns the catalog's relative paths in sorted order.
func (c Catalog) Paths() []string {
	paths := make([]string, 0, len(c))
	for p := range c {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Options configures a scan.
type Options struct {
	// Workers is the hash worker pool size. Zero or negative means one
	// worker per CPU.
	Workers int

	// OnFile, if non-nil, is called from the collector goroutine once per
	// cataloged file. Useful for progress display.
	OnFile func(rec FileRecord)
}

// Scan walks root and returns a catalog of every regular file beneath it.
//
// A missing root yields an empty catalog, not an error; callers that require
// the root to exist must check before scanning. Unreadable entries are
// skipped with a warning. Files that fail mid-read are still cataloged with
// the empty-digest sentinel. Cancelling ctx stops the scan early and returns
// ctx.Err() along with whatever was cataloged so far.
func Scan(ctx context.Context, root string, opts Options) (Catalog, error) {
	defer logging.Timer("scan")()

	catalog := make(Catalog)

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("scan root does not exist", logging.Root(root))
			return catalog, nil
		}
		return catalog, err
	}
	if !info.IsDir() {
		logging.Warn("scan root is not a directory", logging.Root(root))
		return catalog, nil
	}

	// First pass: collect stat metadata for every regular file. Hashing is
	// deferred to the worker pool below.
	var pending []FileRecord
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("skipping unreadable entry",
				logging.Path(path),
				logging.Err(err),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			logging.Warn("skipping unstatable file",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			logging.Warn("skipping file outside root",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}

		pending = append(pending, FileRecord{
			RelPath: filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			AbsPath: path,
		})
		return nil
	})
	if walkErr != nil {
		// The walk callback only aborts on context cancellation.
		return catalog, walkErr
	}

	hashAll(ctx, pending, opts, catalog)

	logging.Debug("scan complete",
		logging.Root(root),
		logging.Count(len(catalog)),
	)
	return catalog, ctx.Err()
}

// hashAll digests pending records across a bounded worker pool and merges
// the results into catalog. Each file's digest is independent, so workers
// share nothing; a single collector owns the catalog map.
func hashAll(ctx context.Context, pending []FileRecord, opts Options, catalog Catalog) {
	if len(pending) == 0 {
		return
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pending) {
		workers = len(pending)
	}

	jobs := make(chan FileRecord)
	results := make(chan FileRecord)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				rec.Digest = hashFile(rec.AbsPath)
				results <- rec
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range pending {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for rec := range results {
		catalog[rec.RelPath] = rec
		if opts.OnFile != nil {
			opts.OnFile(rec)
		}
	}
}

// hashFile streams the file through MD5 in fixed-size chunks. Any open or
// read error yields the empty sentinel; the caller still catalogs the file
// so later comparison forces an action instead of assuming equality.
func hashFile(path string) string {
	// #nosec G304 - path comes from the walk over a caller-chosen root
	f, err := os.Open(path)
	if err != nil {
		logging.Warn("cannot open file for hashing",
			logging.Path(path),
			logging.Err(err),
		)
		return ""
	}
	defer func() { _ = f.Close() }()

	// #nosec G401 - digest is for change detection, not security
	hasher := md5.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		logging.Warn("read failed while hashing",
			logging.Path(path),
			logging.Err(err),
		)
		return ""
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
