package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// Loader implements graph.Loader by delegating to file, fs.FS or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ graph.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options graph.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches the document behind src and decodes it.
func (l *Loader) Load(ctx context.Context, src graph.Source) (graph.Graph, error) {
	if src == nil {
		return graph.Graph{}, errors.New("graph loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case graph.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case graph.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case graph.SourceKindURL:
		if !l.allowHTTP {
			return graph.Graph{}, errors.New("graph loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("graph loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return graph.Graph{}, err
	}

	g, err := graph.Decode(data)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("graph loader: %s: %w", src.Location(), err)
	}
	return g, nil
}
