package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/schema"
)

// Factory constructs and validates entities against the composed schemas
// served by the registry. An optional defaults provider seeds
// externally-derived defaults (asset dimensions) on a best-effort basis.
type Factory struct {
	registry *schema.Registry
	defaults domain.DefaultsProvider
	logger   Logger
}

// NewFactory constructs a factory over the given registry. provider may be
// nil when no asset-derived defaults are wanted.
func NewFactory(registry *schema.Registry, provider domain.DefaultsProvider, logger Logger) *Factory {
	if registry == nil {
		registry = schema.NewRegistry()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Factory{registry: registry, defaults: provider, logger: logger}
}

// Registry exposes the schema registry backing the factory.
func (f *Factory) Registry() *schema.Registry { return f.registry }

// NewID generates a component id.
func NewID() string {
	return fmt.Sprintf("component-%s", uuid.NewString())
}

// Create builds an entity of the given type: a generated id when data lacks
// one, schema defaults for omitted fields, and — unless suppressed —
// validation of the completed set.
func (f *Factory) Create(ctx context.Context, t EntityType, data map[string]any, validate bool) (Entity, error) {
	sch, err := f.registry.For(t)
	if err != nil {
		return Entity{}, err
	}
	id, _ := data["id"].(string)
	if id == "" {
		id = NewID()
	}
	props := domain.CloneProps(data)
	if props == nil {
		props = map[string]any{}
	}
	delete(props, "id")
	delete(props, "type")

	f.seedAssetDefaults(ctx, sch, props)
	props = sch.ApplyDefaults(props)

	entity := Entity{Type: t, ID: id, Props: props}
	if validate {
		if errs := sch.Validate(props); len(errs) > 0 {
			return Entity{}, ValidationError{Ref: entity.Ref(), Fields: errs}
		}
	}
	return entity, nil
}

// Validate re-checks the entity's current full data set against its schema.
// It returns the structured error list rather than failing; an empty list
// means valid.
func (f *Factory) Validate(entity Entity) ([]FieldError, error) {
	sch, err := f.registry.For(entity.Type)
	if err != nil {
		return nil, err
	}
	return sch.Validate(entity.Props), nil
}

// Update merges partial data into a copy of the entity, re-validates, and
// returns the committed copy along with the prior values of the touched
// fields. On failure the input entity is untouched and the zero Entity is
// returned (atomic partial-update semantics).
func (f *Factory) Update(ctx context.Context, entity Entity, partial map[string]any) (Entity, map[string]any, error) {
	sch, err := f.registry.For(entity.Type)
	if err != nil {
		return Entity{}, nil, err
	}
	next := entity.Clone()
	before := make(map[string]any, len(partial))
	for k, v := range partial {
		before[k] = domain.CloneValue(entity.Props[k])
		next.Props[k] = domain.CloneValue(v)
	}
	f.seedAssetDefaults(ctx, sch, next.Props)
	next.Props = sch.ApplyDefaults(next.Props)
	if errs := sch.Validate(next.Props); len(errs) > 0 {
		return Entity{}, nil, ValidationError{Ref: entity.Ref(), Fields: errs}
	}
	return next, before, nil
}

// seedAssetDefaults consults the defaults provider when the schema declares
// an asset URL property and the referenced asset can contribute values for
// properties still unset. Failure is non-fatal: validation proceeds with the
// defaults already present.
func (f *Factory) seedAssetDefaults(ctx context.Context, sch schema.Schema, props map[string]any) {
	if f.defaults == nil || sch.AssetDefaultsProp == "" {
		return
	}
	url, _ := props[sch.AssetDefaultsProp].(string)
	if url == "" {
		return
	}
	derived, err := f.defaults.FetchDefaults(ctx, url)
	if err != nil {
		f.logger.Warn("asset defaults fetch failed", "url", url, "error", err)
		return
	}
	for k, v := range derived {
		if _, ok := props[k]; !ok {
			props[k] = domain.CloneValue(v)
		}
	}
}
