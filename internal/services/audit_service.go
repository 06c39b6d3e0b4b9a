package services

import (
	"context"

	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/pkg/logger"
)

// Actor identifies who triggered a write, for the audit trail
type Actor struct {
	UserID    uint
	IP        string
	UserAgent string
}

type actorKey struct{}

// WithActor attaches the acting user to ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the acting user stored in ctx, if any
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry for the actor stored in ctx. Writes without an
// actor (background jobs) are not audited.
func (s *AuditService) Log(ctx context.Context, action, entity string, entityID uint, details string) {
	if s == nil || s.repo == nil {
		return
	}
	actor, ok := ActorFrom(ctx)
	if !ok || actor.UserID == 0 {
		return
	}

	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log", "entity", entity, "entity_id", entityID, "error", err)
	}
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
