// Package fetch downloads the published feed files. A fetch is complete
// only when the bytes written equal the length the source declared;
// anything less is a RetrievalError and the pipeline must not run on that
// feed. Resumption of interrupted transfers is out of scope.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/quickmart/shelfsync/pkg/logging"
)

// chunkSize is the read granularity for streamed downloads.
const chunkSize = 4096

// progressWidth is the character width of the rendered progress bar.
const progressWidth = 25

// Spec names one feed to download.
type Spec struct {
	URL  string
	Dest string
}

// Fetcher downloads feed files with a completeness check.
type Fetcher struct {
	http     *http.Client
	progress io.Writer
}

// New creates a fetcher. A nil client gets a generous timeout suited to
// multi-megabyte feed files.
func New(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Fetcher{http: httpClient, progress: os.Stdout}
}

// SetProgress redirects the progress bar, or silences it with io.Discard.
func (f *Fetcher) SetProgress(w io.Writer) {
	f.progress = w
}

// Fetch downloads url to dest, reporting completeness against the
// declared content length.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.WrapRetrieval(url, dest, err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return pkgerrors.WrapRetrieval(url, dest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.WrapRetrieval(url, dest, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	declared := resp.ContentLength
	if declared < 0 {
		return pkgerrors.WrapRetrieval(url, dest, errors.New("source declared no content length"))
	}
	log.Info().Str("url", url).Str("dest", dest).
		Float64("size_mb", float64(declared)/(1024*1000)).Msg("Download started")

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return pkgerrors.WrapRetrieval(url, dest, err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return pkgerrors.WrapRetrieval(url, dest, err)
	}
	defer out.Close()

	written, err := f.copy(out, resp.Body, declared)
	if err != nil {
		return pkgerrors.WrapRetrieval(url, dest, err)
	}
	if written != declared {
		return pkgerrors.NewRetrievalError(url, dest, declared, written, nil)
	}
	log.Info().Str("dest", dest).Msg("Download completed")
	return nil
}

// copy streams body to out in chunks, rendering progress as it goes.
func (f *Fetcher) copy(out io.Writer, body io.Reader, declared int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			f.renderProgress(written, declared)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, err
		}
	}
	fmt.Fprintln(f.progress)
	return written, nil
}

func (f *Fetcher) renderProgress(written, declared int64) {
	if declared <= 0 {
		return
	}
	filled := int(progressWidth * written / declared)
	if filled > progressWidth {
		filled = progressWidth
	}
	fmt.Fprintf(f.progress, "\r[%s%s]",
		strings.Repeat("=", filled),
		strings.Repeat(" ", progressWidth-filled))
}

// FetchAll downloads every spec concurrently, skipping destinations that
// already exist. All failures are reported, joined.
func (f *Fetcher) FetchAll(ctx context.Context, specs []Spec) error {
	log := logging.FromContext(ctx)

	var wg sync.WaitGroup
	errs := make([]error, len(specs))
	for i, s := range specs {
		if _, err := os.Stat(s.Dest); err == nil {
			log.Info().Str("dest", s.Dest).Msg("Feed already present, skipping download")
			continue
		}
		wg.Add(1)
		go func(i int, s Spec) {
			defer wg.Done()
			errs[i] = f.Fetch(ctx, s.URL, s.Dest)
		}(i, s)
	}
	wg.Wait()
	return errors.Join(errs...)
}
