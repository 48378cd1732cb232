package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotFound is returned when a local source cannot be located.
var ErrNotFound = errors.New("resource not found")

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeHTML is a document holding print forms
	ResourceTypeHTML
	// ResourceTypeCSS is a stylesheet
	ResourceTypeCSS
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeHTML:
		return "html"
	case ResourceTypeCSS:
		return "css"
	case ResourceTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader handles loading document sources
type Loader struct {
	// Base URL or file path for resolving relative URLs
	BaseURL string

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string
	client      *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{},
	}
}

// SetClient replaces the HTTP client used for remote sources
func (l *Loader) SetClient(c *http.Client) {
	l.client = c
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL or file path
func (l *Loader) Load(src string) (*Resource, error) {
	return l.LoadContext(context.Background(), src)
}

// LoadContext loads a resource, remote requests are bound to ctx
func (l *Loader) LoadContext(ctx context.Context, src string) (*Resource, error) {
	l.cacheLock.RLock()
	if res, ok := l.cache[src]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var (
		res *Resource
		err error
	)
	switch {
	case strings.HasPrefix(src, "data:"):
		res, err = parseDataURL(src)
	default:
		var resolved string
		if resolved, err = l.resolveURL(src); err != nil {
			return nil, err
		}
		if isRemote(resolved) {
			res, err = l.loadRemote(ctx, resolved)
		} else {
			res, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[src] = res
	l.cacheLock.Unlock()
	return res, nil
}

// LoadHTML loads a resource and checks it looks like markup.
func (l *Loader) LoadHTML(ctx context.Context, src string) (*Resource, error) {
	res, err := l.LoadContext(ctx, src)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeHTML {
		return nil, fmt.Errorf("resource is not HTML (%s): %s", res.MimeType, src)
	}
	return res, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// parseDataURL parses a data URL (RFC 2397)
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mime, isBase64 := "", false
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mime = comps[0]
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return newResource(u, data, mime), nil
}

// resolveURL resolves a URL relative to the base URL
func (l *Loader) resolveURL(src string) (string, error) {
	if isRemote(src) || filepath.IsAbs(src) {
		return src, nil
	}
	if !isRemote(l.BaseURL) {
		if l.BaseURL == "" {
			return src, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), src), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(ctx context.Context, src string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return newResource(src, data, strings.TrimSpace(mime)), nil
}

// loadLocal loads a resource from a local file, falling back to search paths
func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return newResource(path, data, ""), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for _, dir := range l.searchPaths {
		candidate := filepath.Join(dir, filepath.Base(path))
		if data, err := os.ReadFile(candidate); err == nil {
			return newResource(candidate, data, ""), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// newResource classifies data. Declared types that are missing or generic
// are replaced by content detection.
func newResource(src string, data []byte, declared string) *Resource {
	mime := declared
	if mime == "" || mime == "application/octet-stream" || mime == "text/plain" {
		mime = detect(src, data)
	}
	return &Resource{
		URL:      src,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime),
	}
}

func detect(src string, data []byte) string {
	switch strings.ToLower(filepath.Ext(urlPath(src))) {
	case ".html", ".htm", ".xhtml":
		return "text/html"
	case ".css":
		return "text/css"
	}
	mt := mimetype.Detect(data)
	if mt.Is("text/html") {
		return "text/html"
	}
	mime, _, _ := strings.Cut(mt.String(), ";")
	return mime
}

func urlPath(src string) string {
	if isRemote(src) {
		if u, err := url.Parse(src); err == nil {
			return u.Path
		}
	}
	if strings.HasPrefix(src, "data:") {
		return ""
	}
	return src
}

// determineResourceType determines the type of a resource
func determineResourceType(mime string) ResourceType {
	switch mime {
	case "text/html", "application/xhtml+xml":
		return ResourceTypeHTML
	case "text/css":
		return ResourceTypeCSS
	case "":
		return ResourceTypeUnknown
	}
	return ResourceTypeOther
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}
