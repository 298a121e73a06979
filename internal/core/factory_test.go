package core

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

var idPattern = regexp.MustCompile(`^component-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestCreateGeneratesIDs(t *testing.T) {
	f := NewFactory(nil, nil, nil)
	ctx := context.Background()

	a, err := f.Create(ctx, TypeContent, nil, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !idPattern.MatchString(a.ID) {
		t.Fatalf("generated id = %q", a.ID)
	}
	b, err := f.Create(ctx, TypeContent, nil, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("ids collide: %q", a.ID)
	}

	c, err := f.Create(ctx, TypeContent, map[string]any{"id": "pinned"}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != "pinned" {
		t.Fatalf("supplied id replaced with %q", c.ID)
	}
	if _, ok := c.Props["id"]; ok {
		t.Fatalf("id leaked into props")
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := NewFactory(nil, nil, nil)
	e, err := f.Create(context.Background(), TypeContent, nil, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := e.Props["text"]; got != "" {
		t.Fatalf("content text default = %v", got)
	}
	dim, ok := e.Props["dimension"].([]float64)
	if !ok || len(dim) != 2 || dim[0] != 50 || dim[1] != 50 {
		t.Fatalf("dimension default = %v", e.Props["dimension"])
	}
}

func TestCreateValidationFailureIsStructured(t *testing.T) {
	f := NewFactory(nil, nil, nil)
	_, err := f.Create(context.Background(), TypeBlock, map[string]any{
		"pager-visibility": "sometimes",
	}, true)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 1 {
		t.Fatalf("fields = %v", verr.Fields)
	}
	fe := verr.Fields[0]
	if fe.Path != "pager-visibility" || fe.Constraint != "enum" {
		t.Fatalf("field error = %+v", fe)
	}

	// Suppressed validation lets staging data through.
	if _, err := f.Create(context.Background(), TypeBlock, map[string]any{
		"pager-visibility": "sometimes",
	}, false); err != nil {
		t.Fatalf("unvalidated create: %v", err)
	}
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	f := NewFactory(nil, nil, nil)
	ctx := context.Background()
	e, err := f.Create(ctx, TypeContent, nil, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	next, before, err := f.Update(ctx, e, map[string]any{"text": "hello", "name": "greeting"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if next.Props["text"] != "hello" || next.Props["name"] != "greeting" {
		t.Fatalf("updated props = %v", next.Props)
	}
	if before["text"] != "" || before["name"] != "" {
		t.Fatalf("before set = %v", before)
	}
	if e.Props["text"] != "" {
		t.Fatalf("update mutated its input")
	}

	if _, _, err := f.Update(ctx, e, map[string]any{"text": "kept", "opacity": float64(9)}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type stubDefaults struct {
	derived map[string]any
	err     error
	urls    []string
}

func (d *stubDefaults) FetchDefaults(_ context.Context, url string) (map[string]any, error) {
	d.urls = append(d.urls, url)
	if d.err != nil {
		return nil, d.err
	}
	return d.derived, nil
}

func TestCreateSeedsAssetDefaults(t *testing.T) {
	provider := &stubDefaults{derived: map[string]any{"dimension": []float64{320, 240}}}
	f := NewFactory(nil, provider, nil)

	e, err := f.Create(context.Background(), TypeSVG, map[string]any{"src": "/assets/logo.svg"}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	dim, _ := e.Props["dimension"].([]float64)
	if len(dim) != 2 || dim[0] != 320 || dim[1] != 240 {
		t.Fatalf("seeded dimension = %v", e.Props["dimension"])
	}
	if len(provider.urls) != 1 || provider.urls[0] != "/assets/logo.svg" {
		t.Fatalf("fetched urls = %v", provider.urls)
	}

	// Explicit values always beat derived ones.
	e, err = f.Create(context.Background(), TypeSVG, map[string]any{
		"src": "/assets/logo.svg", "dimension": []float64{10, 10},
	}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	dim, _ = e.Props["dimension"].([]float64)
	if dim[0] != 10 {
		t.Fatalf("explicit dimension overridden: %v", dim)
	}
}

func TestDefaultsFetchFailureIsNonFatal(t *testing.T) {
	provider := &stubDefaults{err: domain.DefaultsFetchError{URL: "/assets/gone.svg", Err: errors.New("missing")}}
	f := NewFactory(nil, provider, nil)

	e, err := f.Create(context.Background(), TypeSVG, map[string]any{"src": "/assets/gone.svg"}, true)
	if err != nil {
		t.Fatalf("create must survive a fetch failure: %v", err)
	}
	dim, _ := e.Props["dimension"].([]float64)
	if len(dim) != 2 || dim[0] != 50 {
		t.Fatalf("schema default expected after failed fetch, got %v", e.Props["dimension"])
	}
}
