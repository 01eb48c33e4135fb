package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/ingest"
	"github.com/athanor/sigildex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	t.Run("flat list with bare URL shorthand", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "sources.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
- title: Ars Goetia
  url: https://archive.example.org/goetia.pdf
  tradition: solomonic
- https://archive.example.org/verum.pdf
`), 0644))

		m, err := ingest.LoadManifest(path)
		require.NoError(t, err)
		require.Len(t, m.Entries, 2)
		assert.Equal(t, "Ars Goetia", m.Entries[0].Title)
		assert.Equal(t, "https://archive.example.org/verum.pdf", m.Entries[1].URL)
		assert.Empty(t, m.Entries[1].Title)
	})

	t.Run("grouped map sets default tradition", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "sources.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
solomonic:
  - title: Ars Goetia
    url: https://archive.example.org/goetia.pdf
galdrastafir:
  - title: Huld Manuscript
    local_path: /scans/huld.pdf
    tradition: icelandic
`), 0644))

		m, err := ingest.LoadManifest(path)
		require.NoError(t, err)
		require.Len(t, m.Entries, 2)
		assert.Equal(t, "solomonic", m.Entries[0].Tradition)
		assert.Equal(t, "icelandic", m.Entries[1].Tradition, "explicit tradition wins over group")
	})

	t.Run("missing file is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		_, err := ingest.LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Equal(t, sigildex.ENOTFOUND, sigildex.ErrorCode(err))
	})

	t.Run("malformed YAML is EINVALID", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{{nope"), 0644))

		_, err := ingest.LoadManifest(path)
		assert.Equal(t, sigildex.EINVALID, sigildex.ErrorCode(err))
	})
}

func TestIngester_Run(t *testing.T) {
	t.Parallel()

	t.Run("local entry records content hash", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		docPath := filepath.Join(dir, "huld.pdf")
		require.NoError(t, os.WriteFile(docPath, []byte("scan bytes"), 0644))

		manifest := filepath.Join(dir, "sources.yaml")
		require.NoError(t, os.WriteFile(manifest, []byte(
			"- title: Huld Manuscript\n  local_path: "+docPath+"\n"), 0644))

		var upserted *sigildex.Source
		sources := &mock.SourceService{
			UpsertSourceFn: func(ctx context.Context, source *sigildex.Source) error {
				source.ID = "src-1"
				upserted = source
				return nil
			},
		}

		ing := ingest.NewIngester(sources, &mock.Downloader{}, nil)
		res, err := ing.Run(context.Background(), manifest, filepath.Join(dir, "raw"))
		require.NoError(t, err)

		assert.Equal(t, 1, res.Ingested)
		require.NotNil(t, upserted)
		assert.Equal(t, "Huld Manuscript", upserted.Title)
		assert.Len(t, upserted.ContentHash, 16, "xxhash64 hex digest")
	})

	t.Run("remote entry downloads then hashes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		manifest := filepath.Join(dir, "sources.yaml")
		require.NoError(t, os.WriteFile(manifest, []byte(
			"- https://archive.example.org/texts/goetia.pdf\n"), 0644))

		downloader := &mock.Downloader{
			DownloadFn: func(ctx context.Context, rawURL, destDir, baseName string) (string, error) {
				assert.Equal(t, "goetia", baseName, "base name derives from the URL stem")
				saved := filepath.Join(destDir, baseName+".pdf")
				require.NoError(t, os.MkdirAll(destDir, 0755))
				require.NoError(t, os.WriteFile(saved, []byte("%PDF"), 0644))
				return saved, nil
			},
		}

		var upserted *sigildex.Source
		sources := &mock.SourceService{
			UpsertSourceFn: func(ctx context.Context, source *sigildex.Source) error {
				upserted = source
				return nil
			},
		}

		ing := ingest.NewIngester(sources, downloader, nil)
		res, err := ing.Run(context.Background(), manifest, filepath.Join(dir, "raw"))
		require.NoError(t, err)

		assert.Equal(t, 1, res.Ingested)
		require.NotNil(t, upserted)
		assert.Equal(t, "Goetia", upserted.Title, "title derives from the filename")
		assert.NotEmpty(t, upserted.LocalPath)
		assert.NotEmpty(t, upserted.ContentHash)
	})

	t.Run("multibyte filenames derive intact titles", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		docPath := filepath.Join(dir, "ólafs_galdrabók.pdf")
		require.NoError(t, os.WriteFile(docPath, []byte("scan"), 0644))

		manifest := filepath.Join(dir, "sources.yaml")
		require.NoError(t, os.WriteFile(manifest, []byte(
			"- local_path: "+docPath+"\n"), 0644))

		var upserted *sigildex.Source
		sources := &mock.SourceService{
			UpsertSourceFn: func(ctx context.Context, source *sigildex.Source) error {
				upserted = source
				return nil
			},
		}

		ing := ingest.NewIngester(sources, &mock.Downloader{}, nil)
		res, err := ing.Run(context.Background(), manifest, dir)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Ingested)
		require.NotNil(t, upserted)
		assert.Equal(t, "Ólafs Galdrabók", upserted.Title)
	})

	t.Run("bad entries are counted, not fatal", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		good := filepath.Join(dir, "good.pdf")
		require.NoError(t, os.WriteFile(good, []byte("ok"), 0644))

		manifest := filepath.Join(dir, "sources.yaml")
		require.NoError(t, os.WriteFile(manifest, []byte(
			"- title: Gone\n  local_path: "+filepath.Join(dir, "missing.pdf")+"\n"+
				"- title: Good\n  local_path: "+good+"\n"), 0644))

		sources := &mock.SourceService{
			UpsertSourceFn: func(ctx context.Context, source *sigildex.Source) error { return nil },
		}

		ing := ingest.NewIngester(sources, &mock.Downloader{}, nil)
		res, err := ing.Run(context.Background(), manifest, dir)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Ingested)
		assert.Equal(t, 1, res.Failed)
	})
}
