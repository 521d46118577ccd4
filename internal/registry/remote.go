package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/branding"
	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/platform"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Remote reads a catalog published in a GitHub repository. Names come from
// the contents API listing of registry.d/; metadata and installers are
// fetched as raw files. Each fetch is attempted exactly once.
type Remote struct {
	listURL    string
	rawURL     string
	httpClient *http.Client
	tempDir    string
	logger     *zap.Logger
	client     *resty.Client
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.httpClient = c
	}
}

// WithTempDir sets where fetched installers are written. The default is
// the system temporary directory.
func WithTempDir(dir string) RemoteOption {
	return func(r *Remote) {
		r.tempDir = dir
	}
}

// WithLogger routes the HTTP client's diagnostics to logger.
func WithLogger(logger *zap.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = logger
	}
}

// NewRemote returns a Source reading the listing at listURL and raw files
// below rawURL.
func NewRemote(listURL, rawURL string, opts ...RemoteOption) *Remote {
	r := &Remote{
		listURL:    listURL,
		rawURL:     strings.TrimRight(rawURL, "/"),
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.client = resty.NewWithClient(r.httpClient).
		SetRetryCount(0).
		SetLogger(r.logger.Sugar()).
		SetHeader("User-Agent", branding.CLIName()+"-registry")
	return r
}

func (r *Remote) Mode() Mode { return ModeRemote }

func (r *Remote) Describe() string {
	return "remote registry at " + r.rawURL
}

type listingEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (r *Remote) ListAvailable(ctx context.Context) ([]string, error) {
	body, err := r.fetch(ctx, r.listURL, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var entries []listingEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &TransportError{URL: r.listURL, Err: fmt.Errorf("parsing listing: %w", err)}
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.Type == "dir" || !strings.HasSuffix(e.Name, metaExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name, metaExt)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Remote) Meta(ctx context.Context, name string) (*meta.Record, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	url := r.rawURL + "/" + MetaDir + "/" + name + metaExt
	body, err := r.fetch(ctx, url, "")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return meta.ParseNamed(string(body), url)
}

func (r *Remote) Installer(ctx context.Context, name string) (*Handle, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	url := r.rawURL + "/" + InstallersDir + "/" + name + installExt
	body, err := r.fetch(ctx, url, "")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("installer for %s: %w", name, ErrNotFound)
		}
		return nil, err
	}

	path, err := writeTempInstaller(r.tempDir, name, body)
	if err != nil {
		return nil, err
	}
	return &Handle{
		Path:    path,
		cleanup: func() error { return os.Remove(path) },
	}, nil
}

// fetch performs one GET. A 404 maps to ErrNotFound; any other failure is
// a *TransportError.
func (r *Remote) fetch(ctx context.Context, url, accept string) ([]byte, error) {
	req := r.client.R().SetContext(ctx)
	if accept != "" {
		req.SetHeader("Accept", accept)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if !resp.IsSuccess() {
		return nil, &TransportError{URL: url, Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}

func writeTempInstaller(dir, name string, body []byte) (string, error) {
	f, err := os.CreateTemp(dir, "tw-"+name+"-*"+installExt)
	if err != nil {
		return "", fmt.Errorf("creating temporary installer: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing temporary installer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing temporary installer: %w", err)
	}
	if err := platform.MakeExecutable(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("making installer executable: %w", err)
	}
	return path, nil
}
