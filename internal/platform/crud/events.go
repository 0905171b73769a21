package crud

import (
	"context"
	"time"

	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/middleware"
)

type publishing[T any] struct {
	Resource[T]
	pub    events.Publisher
	entity string
	id     func(*T) int64
	now    func() time.Time
}

// WithEvents decorates res so every successful write publishes a change event.
func WithEvents[T any](res Resource[T], pub events.Publisher, entity string, id func(*T) int64) Resource[T] {
	return &publishing[T]{Resource: res, pub: pub, entity: entity, id: id, now: time.Now}
}

func (p *publishing[T]) Create(ctx context.Context, rec *T) error {
	if err := p.Resource.Create(ctx, rec); err != nil {
		return err
	}
	p.publish(ctx, events.ActionCreated, p.id(rec))
	return nil
}

func (p *publishing[T]) Update(ctx context.Context, rec *T) error {
	if err := p.Resource.Update(ctx, rec); err != nil {
		return err
	}
	p.publish(ctx, events.ActionUpdated, p.id(rec))
	return nil
}

func (p *publishing[T]) Delete(ctx context.Context, id int64) error {
	if err := p.Resource.Delete(ctx, id); err != nil {
		return err
	}
	p.publish(ctx, events.ActionDeleted, id)
	return nil
}

func (p *publishing[T]) publish(ctx context.Context, action events.Action, id int64) {
	p.pub.Publish(ctx, events.Change{
		Entity:    p.entity,
		Action:    action,
		ID:        id,
		At:        p.now().UTC(),
		RequestID: middleware.RequestIDFrom(ctx),
	})
}
