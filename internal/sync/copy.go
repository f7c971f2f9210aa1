package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauern/dirsync/internal/logging"
)

// copyFile copies content and metadata (permission bits and modification
// time) from src to dst, creating parent directories as needed. Directory
// creation is idempotent, so two actions racing to create the same parent
// both succeed.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory for %q: %w", dst, err)
	}

	// #nosec G304 - src is resolved from a scanned root
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// Create destination file with same permissions
	// #nosec G302 G304 - preserving source permissions, dst is within a sync root
	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination %q: %w", dst, err)
	}

	// Carry the modification time across so a rescan sees the two copies as
	// the same age.
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %q: %w", dst, err)
	}

	logging.Debug("copied file",
		logging.Path(dst),
	)

	return nil
}

// renameNoClobber renames src to dst, failing if dst already exists rather
// than silently overwriting a previous backup.
func renameNoClobber(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("backup destination %q already exists", dst)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat backup destination %q: %w", dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to rename %q to %q: %w", src, dst, err)
	}

	logging.Debug("renamed file",
		logging.Path(dst),
	)

	return nil
}

// removeFile deletes the file at path. A missing file is an error: the plan
// said it existed, so its absence means the tree changed underneath us.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	logging.Debug("removed file",
		logging.Path(path),
	)
	return nil
}
