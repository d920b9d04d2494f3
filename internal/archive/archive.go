// Package archive packages rendered output files into a zip archive.
//
// Archives are byte-for-byte reproducible: entries keep the order they are
// given in, and headers carry no timestamps, owners or comments.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
)

// ContentType is the media type of archives produced by Build.
const ContentType = "application/zip"

var (
	// ErrNotProcessed is returned by FromResult for a failed run.
	ErrNotProcessed = errors.New("processing did not succeed")

	// ErrDuplicateEntry is returned when two entries share a name.
	ErrDuplicateEntry = errors.New("duplicate archive entry")

	// ErrCorrupt is returned by Read for data that is not a zip archive.
	ErrCorrupt = errors.New("archive is not a readable zip file")
)

func init() {
	failure.Register(ErrDuplicateEntry, failure.NewConfig, "",
		"Use different filenames for the header and detail files",
	)
	failure.Register(ErrCorrupt, failure.NewFileFormat, "")
}

// Entry is one file of an archive.
type Entry struct {
	Name    string
	Content string
}

// Write writes entries as a zip archive to w, in order, compressed with
// deflate at the best compression level.
func Write(w io.Writer, entries ...Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = true
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, e := range entries {
		// Zero Modified leaves the DOS date and time fields zeroed.
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   e.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := io.WriteString(fw, e.Content); err != nil {
			return fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// Build returns the archive bytes for entries.
func Build(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, entries...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromResult returns the two entries of a successful run: the header text
// under cfg.Header.Filename followed by the detail text under
// cfg.Detail.Filename.
func FromResult(res *engine.Result, cfg config.ResultConfig) ([]Entry, error) {
	if res == nil || !res.Success {
		return nil, ErrNotProcessed
	}
	return []Entry{
		{Name: cfg.Header.Filename, Content: res.HeaderText},
		{Name: cfg.Detail.Filename, Content: res.DetailText},
	}, nil
}

// Read returns the entries of an archive in stored order.
func Read(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrCorrupt, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrCorrupt, f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Content: string(content)})
	}
	return entries, nil
}
