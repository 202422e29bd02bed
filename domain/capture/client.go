// Package capture talks to the microscope capture service: it lists stored
// captures and downloads image files into a local data directory.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single request when the caller passes zero.
const DefaultTimeout = 60 * time.Second

// Client lists and downloads captures. It holds no cache and never retries.
// Safe for concurrent use, although the application only calls it from the
// task worker.
type Client struct {
	baseURL string
	dataDir string
	httpc   *http.Client
	logger  *slog.Logger

	requests     atomic.Uint64
	failures     atomic.Uint64
	downloads    atomic.Uint64
	bytesWritten atomic.Uint64
	requestNanos atomic.Uint64
	lastDownload atomic.Pointer[time.Time]
}

// NewClient returns a client for the service at baseURL that stores files in dataDir.
func NewClient(baseURL, dataDir string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		dataDir: dataDir,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// DataDir returns the directory downloads are written to.
func (c *Client) DataDir() string { return c.dataDir }

// GetLastCapture lists the captures and returns the one with the latest time.
func (c *Client) GetLastCapture(ctx context.Context) (Capture, error) {
	const op = "list captures"
	resp, err := c.get(ctx, c.baseURL+"/api/v2/captures")
	if err != nil {
		return Capture{}, newError(op, ErrNetwork, err)
	}
	defer resp.Body.Close()

	var wire []wireCapture
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Capture{}, newError(op, ErrParse, err)
	}
	if len(wire) == 0 {
		return Capture{}, newError(op, ErrNoCapturesFound, nil)
	}
	captures := make([]Capture, 0, len(wire))
	for i, w := range wire {
		cp, err := w.toCapture()
		if err != nil {
			return Capture{}, newError(op, ErrParse, errors.Wrapf(err, "entry %d", i))
		}
		captures = append(captures, cp)
	}
	newest, _ := Newest(captures)
	if c.logger != nil {
		c.logger.Debug("captures listed", "count", len(captures), "newest", newest.ID, "time", newest.RawTime)
	}
	return newest, nil
}

// DownloadCapture fetches the raw bytes of cp and writes them to the data
// directory under the capture's file name, replacing any existing file.
// It returns the local path.
func (c *Client) DownloadCapture(ctx context.Context, cp Capture) (string, error) {
	const op = "download capture"
	name := filepath.Base(filepath.Clean(cp.Name))
	if cp.ID == "" || name == "." || name == string(filepath.Separator) || name == ".." {
		return "", newError(op, ErrParse, errors.Errorf("invalid capture id %q or name %q", cp.ID, cp.Name))
	}

	u := fmt.Sprintf("%s/api/v2/captures/%s/download/%s", c.baseURL, url.PathEscape(cp.ID), url.PathEscape(cp.Name))
	resp, err := c.get(ctx, u)
	if err != nil {
		return "", newError(op, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "%s: create data dir", op)
	}
	path := filepath.Join(c.dataDir, name)
	body := &bodyReader{r: resp.Body}
	n, err := writeFile(path, body)
	if err != nil {
		// Never leave a truncated capture behind under its real name.
		_ = os.Remove(path)
		if body.err != nil {
			return "", newError(op, ErrNetwork, body.err)
		}
		return "", errors.Wrapf(err, "%s: write %s", op, path)
	}

	now := time.Now()
	c.downloads.Add(1)
	c.bytesWritten.Add(uint64(n))
	c.lastDownload.Store(&now)
	if c.logger != nil {
		c.logger.Info("capture downloaded", "id", cp.ID, "path", path, "size", humanize.Bytes(uint64(n)))
	}
	return path, nil
}

// Stats returns a snapshot of client counters.
func (c *Client) Stats() ClientStats {
	reqs := c.requests.Load()
	var avg time.Duration
	if reqs > 0 {
		avg = time.Duration(c.requestNanos.Load() / reqs)
	}
	st := ClientStats{
		Requests:     reqs,
		Failures:     c.failures.Load(),
		Downloads:    c.downloads.Load(),
		BytesWritten: c.bytesWritten.Load(),
		AvgRequest:   avg,
	}
	if t := c.lastDownload.Load(); t != nil {
		st.LastDownload = *t
	}
	return st
}

// get issues a GET and returns the response only for 2xx statuses.
func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	c.requests.Add(1)
	resp, err := c.httpc.Do(req)
	c.requestNanos.Add(uint64(time.Since(start).Nanoseconds()))
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		c.failures.Add(1)
		return nil, errors.Errorf("GET %s: status %d: %s", u, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// bodyReader remembers transport failures so they can be told apart from
// local write errors.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		b.err = err
	}
	return n, err
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
