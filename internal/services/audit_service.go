// internal/services/audit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

// AuditService exposes the operational audit trail written by the logging
// middleware.
type AuditService struct {
	db *gorm.DB
}

type AuditSearchParams struct {
	utils.PaginationParams
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	ResourceType *string    `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) SearchAuditLogs(params AuditSearchParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.ResourceType != nil {
		query = query.Where("resource_type = ?", *params.ResourceType)
	}
	if params.ResourceID != nil {
		query = query.Where("resource_id = ?", *params.ResourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "action", "resource_type"})
	if err := utils.ApplyPagination(query, params.PaginationParams).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search audit logs: %w", err)
	}

	return logs, total, nil
}
