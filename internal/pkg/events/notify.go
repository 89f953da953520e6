package events

import (
	"context"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/database"
)

// NotifyEntity publica entity.created/updated/deleted depois do commit da unidade de
// trabalho corrente (ou na hora, fora de transação). pub nil é ignorado.
func NotifyEntity(ctx context.Context, pub domain.EventPublisher, eventType, entity, id string) {
	if pub == nil {
		return
	}
	evt := domain.Event{Type: eventType, Entity: entity, EntityID: id}
	database.AfterCommit(ctx, func() { pub.Publish(evt) })
}
