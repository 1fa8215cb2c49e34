// internal/services/justification_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/compliance"
	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

// JustificationService is the append-only audit trail for rule overrides.
// Rows are never updated or deleted; the model layer rejects both.
type JustificationService struct {
	db *gorm.DB
}

func NewJustificationService(db *gorm.DB) *JustificationService {
	return &JustificationService{db: db}
}

// LogJustification records one override in its own transaction. The
// orchestrator uses logJustificationTx instead so the write commits
// atomically with the overridden operation.
func (s *JustificationService) LogJustification(actionType models.OverrideActionType, entityType string, entityID uuid.UUID, text string, approverID uuid.UUID) (*models.ComplianceJustification, error) {
	return s.logJustificationTx(s.db, actionType, entityType, entityID, text, approverID)
}

func (s *JustificationService) logJustificationTx(tx *gorm.DB, actionType models.OverrideActionType, entityType string, entityID uuid.UUID, text string, approverID uuid.UUID) (*models.ComplianceJustification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewBlockError(compliance.ReasonInvalidJustification, "justification text must not be empty", entityType, entityID)
	}

	referenceCode, err := utils.GenerateReferenceCode()
	if err != nil {
		return nil, newInfraError("generate justification reference code", err)
	}

	justification := &models.ComplianceJustification{
		ActionType:    actionType,
		EntityType:    entityType,
		EntityID:      entityID,
		Justification: strings.TrimSpace(text),
		ApproverID:    approverID,
		ReferenceCode: referenceCode,
	}

	if err := tx.Create(justification).Error; err != nil {
		return nil, newInfraError("create compliance justification", err)
	}

	return justification, nil
}

func (s *JustificationService) GetJustification(id uuid.UUID) (*models.ComplianceJustification, error) {
	var justification models.ComplianceJustification
	if err := s.db.Preload("Approver").First(&justification, id).Error; err != nil {
		return nil, err
	}
	return &justification, nil
}

func (s *JustificationService) ListJustificationsForEntity(entityType string, entityID uuid.UUID) ([]models.ComplianceJustification, error) {
	var justifications []models.ComplianceJustification
	if err := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Preload("Approver").
		Order("created_at DESC").
		Find(&justifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list justifications: %w", err)
	}
	return justifications, nil
}

func (s *JustificationService) SearchJustifications(params utils.PaginationParams) ([]models.ComplianceJustification, int64, error) {
	query := s.db.Model(&models.ComplianceJustification{})

	if params.Search != "" {
		query = query.Where("reference_code = ? OR justification ILIKE ?", params.Search, "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count justifications: %w", err)
	}

	var justifications []models.ComplianceJustification
	query = utils.ApplySort(query, params, []string{"created_at", "action_type", "entity_type"})
	if err := utils.ApplyPagination(query, params).Preload("Approver").Find(&justifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search justifications: %w", err)
	}

	return justifications, total, nil
}
