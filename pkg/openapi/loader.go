// Package openapi loads OpenAPI 3.x documents from local files or HTTP(S)
// URLs. Loading only decodes; it performs no validation, so the parser can
// apply its own defaulting over the raw tree.
package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
)

var (
	// ErrSpecNotFound is returned when a local spec path does not exist.
	ErrSpecNotFound = errors.New("openapi specification not found")
	// ErrUnsupportedFormat is returned for unrecognized file suffixes or
	// content that decodes as neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported specification format")
	// ErrFetch is returned when a remote spec cannot be retrieved.
	ErrFetch = errors.New("failed to fetch specification")
)

// fetchTimeout bounds the remote spec download, not the generation pipeline.
const fetchTimeout = 30 * time.Second

// Load reads an OpenAPI document from a local path or an HTTP(S) URL and
// returns the decoded document tree.
func Load(location string) (ir.Document, error) {
	if isURL(location) {
		return loadURL(&http.Client{Timeout: fetchTimeout}, location)
	}
	return loadFile(location)
}

// LoadWithClient behaves like Load but fetches remote specs with the given
// HTTP client.
func LoadWithClient(client *http.Client, location string) (ir.Document, error) {
	if isURL(location) {
		return loadURL(client, location)
	}
	return loadFile(location)
}

// Validate loads the document through kin-openapi and validates it. It backs
// the validate subcommand only; the generation pipeline never validates.
func Validate(location string) error {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	var (
		doc *openapi3.T
		err error
	)
	if isURL(location) {
		var u *url.URL
		u, err = url.Parse(location)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFetch, err)
		}
		doc, err = loader.LoadFromURI(u)
	} else {
		doc, err = loader.LoadFromFile(location)
	}
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func loadFile(path string) (ir.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSpecNotFound, path)
		}
		return nil, err
	}

	var doc ir.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unrecognized suffix %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return doc, nil
}

// loadURL fetches a remote spec and sniffs the serialization: JSON first,
// then YAML.
func loadURL(client *http.Client, location string) (ir.Document, error) {
	resp, err := client.Get(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrFetch, location, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, location, err)
	}

	var doc ir.Document
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && doc != nil {
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s decodes as neither JSON nor YAML", ErrUnsupportedFormat, location)
}
