// Package collab defines the two external collaborator interfaces spec
// §6 sketches but leaves outside this module's core: the code-generator
// [FileWriter] and the external-model [Downloader]. Concrete
// implementations of each live in this package too
// ([StdFileWriter], [HTTPDownloader]), built directly on the standard
// library -- see DESIGN.md for why neither warrants a third-party
// dependency.
package collab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FileWriter is the sink a code generator (spec §2 item 10, §6) writes
// one output file per namespace to. Implementations must release any
// resource acquired by OpenFile on every exit path, including error,
// from CloseFile.
type FileWriter interface {
	OpenFile(name string) error
	WriteLine(indent int, text string) error
	WriteBeforeLine(text string) error
	CloseFile() error
}

// Downloader fetches the text of an externally-imported schema named by
// uri, for [github.com/concerto-project/concerto-go/modelmanager.ModelManager.UpdateExternalModels].
type Downloader interface {
	Download(ctx context.Context, uri string) ([]byte, error)
}

// StdFileWriter is a [FileWriter] that writes indented text lines to an
// [io.Writer], opened and closed per logical file via a factory
// function. It can serve as the writer passed to
// [github.com/concerto-project/concerto-go/jsonschemagen.Generator.WriteNamespace],
// which accepts any [FileWriter].
type StdFileWriter struct {
	Open func(name string) (io.WriteCloser, error)

	current io.WriteCloser
	before  []string
	indent  string
}

// NewStdFileWriter creates a [StdFileWriter] using indent as the unit of
// indentation (e.g. two spaces) and open to materialize each named file.
func NewStdFileWriter(indent string, open func(name string) (io.WriteCloser, error)) *StdFileWriter {
	return &StdFileWriter{Open: open, indent: indent}
}

// OpenFile opens name for writing via Open, closing any previously open
// file first.
func (w *StdFileWriter) OpenFile(name string) error {
	if w.current != nil {
		if err := w.CloseFile(); err != nil {
			return err
		}
	}

	f, err := w.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}

	w.current = f
	w.before = nil

	return nil
}

// WriteLine writes text indented by indent*level, preceded by any lines
// queued via WriteBeforeLine.
func (w *StdFileWriter) WriteLine(indent int, text string) error {
	if w.current == nil {
		return fmt.Errorf("write line: no file open")
	}

	for _, b := range w.before {
		if _, err := io.WriteString(w.current, b+"\n"); err != nil {
			return err
		}
	}

	w.before = nil

	prefix := strings.Repeat(w.indent, indent)
	_, err := io.WriteString(w.current, prefix+text+"\n")

	return err
}

// WriteBeforeLine queues text to be written immediately before the next
// WriteLine call, e.g. for a doc comment preceding a field.
func (w *StdFileWriter) WriteBeforeLine(text string) error {
	w.before = append(w.before, text)

	return nil
}

// CloseFile closes the current file, if any.
func (w *StdFileWriter) CloseFile() error {
	if w.current == nil {
		return nil
	}

	err := w.current.Close()
	w.current = nil

	return err
}

// HTTPDownloader fetches external model text over HTTP(S) using the
// standard library client. It is intentionally minimal: a single GET
// with a timeout, no retry/backoff policy beyond what the caller's
// context provides.
type HTTPDownloader struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPDownloader creates an [HTTPDownloader] with a sensible default
// per-request timeout.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{Client: http.DefaultClient, Timeout: 30 * time.Second}
}

// Download implements [Downloader].
func (d *HTTPDownloader) Download(ctx context.Context, uri string) ([]byte, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", uri, err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", uri, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
