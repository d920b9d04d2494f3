package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/plenix/tikrana/internal/failure"
)

var (
	// ErrMalformed is returned for documents that do not decode into an
	// AppConfig.
	ErrMalformed = errors.New("malformed configuration")

	// ErrUnavailable is returned when a configuration file cannot be read.
	ErrUnavailable = errors.New("configuration unavailable")

	// ErrFetch is returned when a remote configuration cannot be downloaded.
	ErrFetch = errors.New("configuration download failed")
)

func init() {
	failure.Register(ErrMalformed, failure.NewConfig, "")
	failure.Register(ErrUnavailable, failure.NewConfig, "",
		"Check the configuration path",
		"Set TIKRANA_CONFIG or pass --config",
	)
	failure.Register(ErrFetch, failure.NewNetwork, "")
}

// maxDocumentSize bounds remote configuration downloads.
const maxDocumentSize = 4 << 20

// Format is a configuration document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat picks the document encoding from the file name or, failing
// that, from the leading token of the content. Anything not recognised as
// YAML is treated as JSON.
func DetectFormat(name string, data []byte) Format {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if bytes.HasPrefix(trimmed, []byte("port:")) || bytes.HasPrefix(trimmed, []byte("config:")) {
		return FormatYAML
	}
	return FormatJSON
}

// Parse decodes a configuration document. Both the bare configuration object
// and the server envelope (port, assetsDir, config) are accepted.
func Parse(data []byte, format Format) (*AppConfig, error) {
	var (
		cfg *AppConfig
		err error
	)
	switch format {
	case FormatYAML:
		cfg, err = parseYAML(data)
	case FormatJSON:
		cfg, err = parseJSON(data)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrMalformed, format)
	}
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func parseYAML(data []byte) (*AppConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping at the document root", ErrMalformed, root.Line)
	}
	if inner := mappingValue(root, "config"); inner != nil {
		root = inner
	}

	var cfg AppConfig
	if err := root.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &cfg, nil
}

// mappingValue returns the value node of key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func parseJSON(data []byte) (*AppConfig, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	body := data
	if inner, ok := top["config"]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
		body = inner
	}

	var cfg AppConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &cfg, nil
}

// Load parses data, detecting its format from name and content.
func Load(name string, data []byte) (*AppConfig, error) {
	return Parse(data, DetectFormat(name, data))
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Load(filepath.Base(path), data)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// LoadURL downloads and parses a configuration document.
func LoadURL(ctx context.Context, client *http.Client, url string) (*AppConfig, error) {
	data, err := Fetch(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return Load(url, data)
}

// Fetch downloads a configuration document without parsing it.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetch, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}

// Read returns the raw bytes of a local path or remote URL.
func Read(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	if IsRemote(location) {
		return Fetch(ctx, client, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Resolve loads configuration from a local path or remote URL.
func Resolve(ctx context.Context, client *http.Client, location string) (*AppConfig, error) {
	if IsRemote(location) {
		return LoadURL(ctx, client, location)
	}
	return LoadFile(location)
}
