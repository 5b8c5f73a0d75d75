// Package archive unpacks the gzip-compressed tar archives the corpus
// ships in.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// UnsafePathError is returned when an archive member would be written
// outside the destination directory.
type UnsafePathError struct {
	Name string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("archive member %q escapes the destination directory", e.Name)
}

// ExtractTarGz unpacks a .tgz archive into destDir, creating it if
// needed. Member names are validated so nothing is written outside
// destDir; absolute names and parent-directory escapes are rejected.
// Directories and regular files are materialized, existing files are
// overwritten, and other member types (symlinks, devices) are skipped
// since they could point outside the tree.
func ExtractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("reading gzip header: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		if err := extractMember(tr, hdr, destDir); err != nil {
			return err
		}
	}
}

func extractMember(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	name := filepath.FromSlash(hdr.Name)
	if !filepath.IsLocal(name) {
		return &UnsafePathError{Name: hdr.Name}
	}
	target := filepath.Join(destDir, name)

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
		}
		return nil
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", hdr.Name, err)
		}
		mode := os.FileMode(hdr.Mode).Perm()
		if mode == 0 {
			mode = 0o644
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return fmt.Errorf("creating %s: %w", hdr.Name, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("writing %s: %w", hdr.Name, err)
		}
		return out.Close()
	default:
		return nil
	}
}
