package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"gorm.io/datatypes"
)

type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// AuditFilter narrows the audit trail to one invoice or one action.
type AuditFilter struct {
	EntityID string
	Action   string
	Page     int
	Limit    int
}

type AuditService interface {
	// Record writes an entry outside any transaction. Failures are logged, never returned.
	Record(ctx context.Context, entry *model.AuditLog)
	ListAuditLogs(ctx context.Context, userID string, filter AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Record(ctx context.Context, entry *model.AuditLog) {
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log := logger.WithComponent(logger.ComponentApp)
		log.Warn().Err(err).Str("action", entry.Action).Str("user_id", entry.UserID).Msg("failed to write audit log")
	}
}

// ListAuditLogs returns the owner's entries, newest first.
func (s *auditService) ListAuditLogs(ctx context.Context, userID string, filter AuditFilter) ([]AuditLogResponse, int64, error) {
	if userID == "" {
		return nil, 0, apperror.ErrUnauthorized
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	logs, total, err := s.auditRepo.ListByUser(ctx, userID, repository.AuditListFilter{
		EntityID: filter.EntityID,
		Action:   filter.Action,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     l.UserID,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    json.RawMessage(l.Details),
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}

	return res, total, nil
}

// auditDetails marshals v for an audit entry. Marshal failures yield no details.
func auditDetails(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
