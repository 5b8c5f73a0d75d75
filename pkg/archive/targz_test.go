package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tgzMember struct {
	name string
	body string
	dir  bool
	link string
}

// writeTgz builds a small .tgz archive at path from the given members.
func writeTgz(t *testing.T, path string, members []tgzMember) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, m := range members {
		switch {
		case m.dir:
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     m.name,
				Typeflag: tar.TypeDir,
				Mode:     0o755,
			}))
		case m.link != "":
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     m.name,
				Typeflag: tar.TypeSymlink,
				Linkname: m.link,
			}))
		default:
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     m.name,
				Typeflag: tar.TypeReg,
				Mode:     0o644,
				Size:     int64(len(m.body)),
			}))
			_, err := tw.Write([]byte(m.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "corpus.tgz")
	writeTgz(t, archive, []tgzMember{
		{name: "de-en/", dir: true},
		{name: "de-en/train.tags.de-en.de", body: "Danke schön.\n"},
		{name: "de-en/train.tags.de-en.en", body: "Thank you.\n"},
		{name: "de-en/IWSLT16.TED.tst2013.de-en.de.xml", body: "<seg id=\"1\"> Hallo </seg>\n"},
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, ExtractTarGz(archive, dest))

	got, err := os.ReadFile(filepath.Join(dest, "de-en", "train.tags.de-en.de"))
	require.NoError(t, err)
	assert.Equal(t, "Danke schön.\n", string(got))

	got, err = os.ReadFile(filepath.Join(dest, "de-en", "IWSLT16.TED.tst2013.de-en.de.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "<seg")

	info, err := os.Stat(filepath.Join(dest, "de-en"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExtractTarGzCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "corpus.tgz")
	// No explicit directory members; parents come from the file path.
	writeTgz(t, archive, []tgzMember{
		{name: "fr-en/nested/file.txt", body: "bonjour\n"},
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, ExtractTarGz(archive, dest))

	got, err := os.ReadFile(filepath.Join(dest, "fr-en", "nested", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bonjour\n", string(got))
}

func TestExtractTarGzOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "corpus.tgz")
	writeTgz(t, archive, []tgzMember{
		{name: "de-en/file.txt", body: "fresh\n"},
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "de-en"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "de-en", "file.txt"), []byte("stale\n"), 0o644))

	require.NoError(t, ExtractTarGz(archive, dest))

	got, err := os.ReadFile(filepath.Join(dest, "de-en", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(got))
}

func TestExtractTarGzRejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tgz")
	writeTgz(t, archive, []tgzMember{
		{name: "../escape.txt", body: "nope\n"},
	})

	dest := filepath.Join(dir, "out")
	err := ExtractTarGz(archive, dest)

	var unsafeErr *UnsafePathError
	require.True(t, errors.As(err, &unsafeErr))
	assert.Equal(t, "../escape.txt", unsafeErr.Name)

	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestExtractTarGzRejectsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tgz")
	writeTgz(t, archive, []tgzMember{
		{name: "/tmp/abs.txt", body: "nope\n"},
	})

	err := ExtractTarGz(archive, filepath.Join(dir, "out"))
	var unsafeErr *UnsafePathError
	require.True(t, errors.As(err, &unsafeErr))
}

func TestExtractTarGzSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "links.tgz")
	writeTgz(t, archive, []tgzMember{
		{name: "de-en/link", link: "../../outside"},
		{name: "de-en/file.txt", body: "ok\n"},
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, ExtractTarGz(archive, dest))

	_, err := os.Lstat(filepath.Join(dest, "de-en", "link"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	got, err := os.ReadFile(filepath.Join(dest, "de-en", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(got))
}

func TestExtractTarGzNotGzip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "plain.tgz")
	require.NoError(t, os.WriteFile(archive, []byte("not a gzip stream"), 0o644))

	err := ExtractTarGz(archive, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func TestExtractTarGzMissingArchive(t *testing.T) {
	dir := t.TempDir()
	err := ExtractTarGz(filepath.Join(dir, "missing.tgz"), filepath.Join(dir, "out"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
