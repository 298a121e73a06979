package core

import (
	"context"
	"sync"
	"time"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Service exposes the document store's mutating operations with
// observability wrapped around each one: a trace span, a metrics
// observation, and an audit entry per call.
type Service struct {
	store   *Store
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder

	metaMu sync.Mutex
	meta   domain.Document
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithServiceLogger installs a logger; the default is silent.
func WithServiceLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder installs an audit recorder.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		audit:   noopAudit{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying document store for read queries.
func (s *Service) Store() *Store { return s.store }

func (s *Service) instrument(ctx context.Context, op string, ref TypeRef, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))

	entry := AuditEntry{
		Operation:  op,
		EntityType: ref.Type,
		EntityID:   ref.ID,
		Status:     AuditStatusSuccess,
		OccurredAt: time.Now().UTC(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Detail = err.Error()
		s.logger.Error("operation failed", "op", op, "entity", ref.String(), "error", err)
	} else {
		s.logger.Debug("operation settled", "op", op, "entity", ref.String())
	}
	s.audit.Record(ctx, entry)
	return err
}

// CreateComponent builds a new entity of the given type and registers it,
// optionally under parent at index (-1 appends).
func (s *Service) CreateComponent(ctx context.Context, t EntityType, data map[string]any, parent *TypeRef, index int) (Entity, error) {
	var created Entity
	err := s.instrument(ctx, "create_component", TypeRef{Type: t}, func(ctx context.Context) error {
		entity, err := s.store.Factory().Create(ctx, t, data, true)
		if err != nil {
			return err
		}
		created, err = s.store.Add(ctx, entity, parent, index)
		return err
	})
	if err != nil {
		return Entity{}, err
	}
	return created, nil
}

// AddComponent registers an already-built entity.
func (s *Service) AddComponent(ctx context.Context, entity Entity, parent *TypeRef, index int) (Entity, error) {
	var added Entity
	err := s.instrument(ctx, "add_component", entity.Ref(), func(ctx context.Context) error {
		var err error
		added, err = s.store.Add(ctx, entity, parent, index)
		return err
	})
	if err != nil {
		return Entity{}, err
	}
	return added, nil
}

// UpdateComponent merges partial data into the entity.
func (s *Service) UpdateComponent(ctx context.Context, ref TypeRef, partial map[string]any) (Entity, error) {
	var updated Entity
	err := s.instrument(ctx, "update_component", ref, func(ctx context.Context) error {
		var err error
		updated, err = s.store.Update(ctx, ref, partial)
		return err
	})
	if err != nil {
		return Entity{}, err
	}
	return updated, nil
}

// DeleteComponent soft-deletes the entity.
func (s *Service) DeleteComponent(ctx context.Context, ref TypeRef) error {
	return s.instrument(ctx, "delete_component", ref, func(ctx context.Context) error {
		return s.store.Delete(ctx, ref)
	})
}

// RestoreComponent reverses a soft delete.
func (s *Service) RestoreComponent(ctx context.Context, ref TypeRef) (Entity, error) {
	var restored Entity
	err := s.instrument(ctx, "restore_component", ref, func(ctx context.Context) error {
		var err error
		restored, err = s.store.Restore(ctx, ref)
		return err
	})
	if err != nil {
		return Entity{}, err
	}
	return restored, nil
}

// CloneComponent duplicates the entity and its subtree under parent.
func (s *Service) CloneComponent(ctx context.Context, ref TypeRef, overrides map[string]any, parent *TypeRef) (Entity, error) {
	var clone Entity
	err := s.instrument(ctx, "clone_component", ref, func(ctx context.Context) error {
		var err error
		clone, err = s.store.Clone(ctx, ref, overrides, parent)
		return err
	})
	if err != nil {
		return Entity{}, err
	}
	return clone, nil
}

// ArrangeComponent repositions the entity within its parent's children
// list.
func (s *Service) ArrangeComponent(ctx context.Context, ref TypeRef, action domain.ArrangeAction) error {
	return s.instrument(ctx, "arrange_component", ref, func(ctx context.Context) error {
		return s.store.Arrange(ctx, ref, action)
	})
}

// SetScenarioIndex repositions a scenario within the top-level order.
func (s *Service) SetScenarioIndex(ctx context.Context, ref TypeRef, index int) error {
	return s.instrument(ctx, "set_scenario_index", ref, func(ctx context.Context) error {
		return s.store.SetScenarioIndex(ctx, ref, index)
	})
}

// LoadDocument replaces store state with the document's component trees and
// retains the document-level metadata for export.
func (s *Service) LoadDocument(ctx context.Context, doc domain.Document) error {
	return s.instrument(ctx, "load_document", TypeRef{}, func(ctx context.Context) error {
		if err := s.store.Init(ctx, doc.Components); err != nil {
			return err
		}
		s.metaMu.Lock()
		s.meta = doc
		s.meta.Components = nil
		s.metaMu.Unlock()
		return nil
	})
}

// ExportDocument reassembles the document from the retained metadata and
// the store's live component trees.
func (s *Service) ExportDocument() domain.Document {
	s.metaMu.Lock()
	doc := s.meta
	s.metaMu.Unlock()
	doc.Components = s.store.Export()
	return doc
}

// Undo reverses the newest recorded action.
func (s *Service) Undo(ctx context.Context) error {
	return s.instrument(ctx, "undo", TypeRef{}, func(ctx context.Context) error {
		return s.store.History().Undo(ctx)
	})
}

// Redo replays the newest undone action.
func (s *Service) Redo(ctx context.Context) error {
	return s.instrument(ctx, "redo", TypeRef{}, func(ctx context.Context) error {
		return s.store.History().Redo(ctx)
	})
}
