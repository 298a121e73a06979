// Package assets derives schema defaults from referenced media: the
// intrinsic dimensions of an SVG or image asset seed a component's
// dimension property when the author left it unset.
package assets

import (
	"context"
	"encoding/xml"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/philharmoniedeparis/metascore-library-sub004/internal/blob"
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Provider resolves asset URLs against a blob store and extracts defaults
// from the content. It implements domain.DefaultsProvider; failures are
// wrapped so callers can downgrade them to warnings.
type Provider struct {
	store blob.Store
}

func NewProvider(store blob.Store) *Provider {
	return &Provider{store: store}
}

// FetchDefaults reads the asset behind rawURL and returns derived property
// defaults. Unsupported content types yield an empty map, not an error.
func (p *Provider) FetchDefaults(ctx context.Context, rawURL string) (map[string]any, error) {
	key := KeyFromURL(rawURL)
	info, rc, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, domain.DefaultsFetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = rc.Close() }()

	if !isVector(info.ContentType, key) {
		return map[string]any{}, nil
	}
	defaults, err := SVGDefaults(rc)
	if err != nil {
		return nil, domain.DefaultsFetchError{URL: rawURL, Err: err}
	}
	return defaults, nil
}

// KeyFromURL maps an asset URL to a blob key: the path component with the
// leading slash stripped. Bare keys pass through unchanged.
func KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Path, "/")
}

func isVector(contentType, key string) bool {
	if strings.Contains(contentType, "svg") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(key), ".svg")
}

type svgRoot struct {
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
	ViewBox string `xml:"viewBox,attr"`
}

// SVGDefaults extracts a dimension default from an SVG document's explicit
// width/height attributes, falling back to the viewBox extent.
func SVGDefaults(r io.Reader) (map[string]any, error) {
	var root svgRoot
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	w, wok := cssLength(root.Width)
	h, hok := cssLength(root.Height)
	if !wok || !hok {
		if vw, vh, ok := viewBoxExtent(root.ViewBox); ok {
			if !wok {
				w = vw
			}
			if !hok {
				h = vh
			}
			wok, hok = true, true
		}
	}
	if !wok || !hok {
		return map[string]any{}, nil
	}
	return map[string]any{domain.PropDimension: []float64{w, h}}, nil
}

// cssLength parses a pixel length, tolerating a px suffix. Percentages and
// other units are rejected.
func cssLength(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func viewBoxExtent(s string) (float64, float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, werr := strconv.ParseFloat(fields[2], 64)
	h, herr := strconv.ParseFloat(fields[3], 64)
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
