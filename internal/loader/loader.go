// Package loader reads structure files from disk, from memory or over
// HTTP. Remote fetches run in their own goroutine and deliver a single
// Result on a channel, so callers continue once the data has arrived.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/pkg/encoding"
	"github.com/Faultbox/smolview/pkg/formats"
)

// MaxBytes caps the size of a single input.
const MaxBytes = 64 << 20

// Errors returned by the loader.
var (
	ErrNoSource    = errors.New("no input source configured")
	ErrTooLarge    = errors.New("input too large")
	ErrHTTPStatus  = errors.New("unexpected HTTP status")
	ErrBadScheme   = errors.New("unsupported URL scheme")
	ErrMultiSource = errors.New("more than one input source")
)

// Source describes where a structure comes from. Exactly one of Inline,
// Path and URL is set. Kind may be left unknown to detect it from the
// path or URL extension.
type Source struct {
	Kind   formats.Kind
	Path   string
	URL    string
	Inline []byte
}

// FromConfig builds a Source from the input settings.
func FromConfig(in config.InputConfig) (Source, error) {
	src := Source{Path: in.Path, URL: in.URL}
	if in.Format != "" {
		kind, err := formats.ParseKind(in.Format)
		if err != nil {
			return Source{}, err
		}
		src.Kind = kind
	}
	return src, src.Check()
}

// Name returns a short description for logs.
func (s Source) Name() string {
	switch {
	case s.Inline != nil:
		return "inline"
	case s.Path != "":
		return s.Path
	default:
		return s.URL
	}
}

// Check reports whether exactly one location is set.
func (s Source) Check() error {
	n := 0
	if s.Inline != nil {
		n++
	}
	if s.Path != "" {
		n++
	}
	if s.URL != "" {
		n++
	}
	switch n {
	case 0:
		return ErrNoSource
	case 1:
		return nil
	default:
		return ErrMultiSource
	}
}

// ResolveKind returns Kind, or the kind implied by the path or URL.
func (s Source) ResolveKind() (formats.Kind, error) {
	if s.Kind != formats.KindUnknown {
		return s.Kind, nil
	}
	switch {
	case s.Path != "":
		return formats.KindFromPath(s.Path)
	case s.URL != "":
		return formats.KindFromPath(s.URL)
	}
	return formats.KindUnknown, fmt.Errorf("%w: inline data needs an explicit format", formats.ErrUnknownKind)
}

// Result is the outcome of a fetch. Data is UTF-8.
type Result struct {
	Source Source
	Kind   formats.Kind
	Data   []byte
	Took   time.Duration
	Err    error
}

// Loader performs fetches.
type Loader struct {
	client *http.Client
	log    *zap.Logger
}

// New creates a loader. A nil client means http.DefaultClient.
func New(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, log: logger.Named("loader")}
}

// Fetch starts reading src and returns a channel that receives exactly
// one Result. Cancelling ctx aborts a remote fetch.
func (l *Loader) Fetch(ctx context.Context, src Source) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- l.load(ctx, src)
	}()
	return out
}

// Load is Fetch followed by a wait for the result.
func (l *Loader) Load(ctx context.Context, src Source) Result {
	return <-l.Fetch(ctx, src)
}

func (l *Loader) load(ctx context.Context, src Source) Result {
	start := time.Now()
	res := Result{Source: src}

	if res.Err = src.Check(); res.Err != nil {
		return res
	}
	if res.Kind, res.Err = src.ResolveKind(); res.Err != nil {
		return res
	}

	switch {
	case src.Inline != nil:
		res.Data, res.Err = encoding.ToUTF8(src.Inline)
	case src.Path != "":
		res.Data, res.Err = readFile(src.Path)
	default:
		res.Data, res.Err = l.get(ctx, src.URL)
	}
	res.Took = time.Since(start)

	if res.Err != nil {
		res.Err = fmt.Errorf("loading %s: %w", src.Name(), res.Err)
		return res
	}
	res.Data = encoding.TrimNullBytes(res.Data)
	if res.Kind == formats.KindCML {
		res.Data = encoding.RelabelXML(res.Data)
	}
	l.log.Debug("input loaded",
		zap.String("source", src.Name()),
		zap.Stringer("kind", res.Kind),
		zap.Int("bytes", len(res.Data)),
		zap.Duration("took", res.Took))
	return res
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, err
	}
	return encoding.ToUTF8(data)
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrBadScheme, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	var charset string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		charset = params["charset"]
	}
	return encoding.FromCharset(data, charset)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxBytes)
	}
	return data, nil
}
