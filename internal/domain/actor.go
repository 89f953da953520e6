package domain

import "context"

type actorKey struct{}

// WithActor anexa ao contexto o ID do usuário que executa a operação.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext devolve o usuário da operação ou "system" quando ausente (CLI, seeds).
func ActorFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return id
	}
	return "system"
}
