// internal/services/compliance_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/compliance"
	"github.com/permitdesk/permit-backend/internal/config"
	"github.com/permitdesk/permit-backend/internal/database"
	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

// ComplianceService sequences the pure validators around each mutating
// operation and decides ALLOW / BLOCK / ALLOW-WITH-JUSTIFICATION. Every
// operation runs inside one transaction: validation, entity write, and any
// justification write commit together or not at all.
type ComplianceService struct {
	db                   *gorm.DB
	capacityLimit        int
	justificationService *JustificationService
}

type AssignQualifierRequest struct {
	QualifierID        uuid.UUID  `json:"qualifier_id" validate:"required"`
	LicensedBusinessID uuid.UUID  `json:"licensed_business_id" validate:"required"`
	StartDate          *time.Time `json:"start_date,omitempty"`
}

type QualifierExitRequest struct {
	AssignmentID    uuid.UUID  `json:"assignment_id" validate:"required"`
	ExitDate        time.Time  `json:"exit_date" validate:"required"`
	CutoffTimestamp *time.Time `json:"cutoff_timestamp,omitempty"`
}

type CreateProjectRequest struct {
	LicensedBusinessID uuid.UUID `json:"licensed_business_id" validate:"required"`
	QualifierID        uuid.UUID `json:"qualifier_id" validate:"required"`
	Name               string    `json:"name" validate:"required,max=255"`
	SiteAddress        string    `json:"site_address,omitempty"`
}

type CreatePermitRequest struct {
	ProjectID       uuid.UUID  `json:"project_id" validate:"required"`
	PermitNumber    string     `json:"permit_number" validate:"required,license_number"`
	WorkDescription string     `json:"work_description,omitempty"`
	IssuanceDate    *time.Time `json:"issuance_date,omitempty"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
	Justification   string     `json:"justification,omitempty"`
}

type FinalizePermitRequest struct {
	Justification    string     `json:"justification,omitempty"`
	FinalizationDate *time.Time `json:"finalization_date,omitempty"`
}

type RecordOversightActionRequest struct {
	PermitID      uuid.UUID                  `json:"permit_id" validate:"required"`
	QualifierID   uuid.UUID                  `json:"qualifier_id" validate:"required"`
	ActionType    models.OversightActionType `json:"action_type" validate:"required,oneof=site_visit plan_review permit_review client_meeting"`
	ActionDate    time.Time                  `json:"action_date" validate:"required"`
	Notes         string                     `json:"notes,omitempty"`
	Justification string                     `json:"justification,omitempty"`
}

func NewComplianceService(db *gorm.DB, cfg config.ComplianceConfig, justificationService *JustificationService) *ComplianceService {
	limit := cfg.QualifierCapacityLimit
	if limit < 1 {
		limit = compliance.DefaultCapacityLimit
	}
	return &ComplianceService{
		db:                   db,
		capacityLimit:        limit,
		justificationService: justificationService,
	}
}

// AssignQualifier creates a qualifier-business assignment unless the
// qualifier is at capacity. The capacity limit is a hard block: no
// justification is accepted, per regulatory policy. The count and the insert
// share one transaction with the qualifier's assignment rows locked, so two
// racing calls cannot both see room for one more.
func (s *ComplianceService) AssignQualifier(req *AssignQualifierRequest) (*models.LicensedBusinessQualifierAssignment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	var assignment *models.LicensedBusinessQualifierAssignment
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var qualifier models.Qualifier
		if err := tx.First(&qualifier, req.QualifierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("qualifier not found")
			}
			return newInfraError("load qualifier", err)
		}
		if !qualifier.IsActive {
			return errors.New("qualifier is not active")
		}

		var business models.LicensedBusiness
		if err := tx.First(&business, req.LicensedBusinessID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("licensed business not found")
			}
			return newInfraError("load licensed business", err)
		}
		if !business.IsActive {
			return errors.New("licensed business is not active")
		}

		// Lock all of this qualifier's assignment rows for the duration of
		// the count-then-insert sequence.
		var assignments []models.LicensedBusinessQualifierAssignment
		if err := database.LockForUpdate(tx).
			Where("qualifier_id = ?", req.QualifierID).
			Find(&assignments).Error; err != nil {
			return newInfraError("load qualifier assignments", err)
		}

		for i := range assignments {
			if assignments[i].LicensedBusinessID == req.LicensedBusinessID && assignments[i].ActiveAt(startDate) {
				return errors.New("qualifier already has an active assignment with this business")
			}
		}

		capacity := compliance.CheckCapacity(assignments, startDate, s.capacityLimit)
		if capacity.CurrentCount+1 > s.capacityLimit {
			return NewBlockError(
				compliance.ReasonQualifierCapacityExceeded,
				fmt.Sprintf("qualifier is already assigned to %d licensed businesses", capacity.CurrentCount),
				models.EntityTypeQualifier,
				req.QualifierID,
			).WithDetail("current_count", capacity.CurrentCount).
				WithDetail("capacity_limit", s.capacityLimit)
		}

		assignment = &models.LicensedBusinessQualifierAssignment{
			LicensedBusinessID: req.LicensedBusinessID,
			QualifierID:        req.QualifierID,
			StartDate:          startDate,
		}
		if err := tx.Create(assignment).Error; err != nil {
			return newInfraError("create assignment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// QualifierExit ends an assignment and records the hard end of the
// qualifier's authority. Projects governed by the (business, qualifier) pair
// are flagged qualifier-absent; compliance-critical operations on them block
// until a justification is attached.
func (s *ComplianceService) QualifierExit(req *QualifierExitRequest) (*models.LicensedBusinessQualifierAssignment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cutoff := req.ExitDate
	if req.CutoffTimestamp != nil {
		cutoff = *req.CutoffTimestamp
	}

	var assignment models.LicensedBusinessQualifierAssignment
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&assignment, req.AssignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("assignment not found")
			}
			return newInfraError("load assignment", err)
		}
		if assignment.EndDate != nil {
			return errors.New("assignment has already ended")
		}
		if req.ExitDate.Before(assignment.StartDate) {
			return errors.New("exit date precedes assignment start date")
		}

		assignment.EndDate = &req.ExitDate
		assignment.CutoffTimestamp = &cutoff
		if err := tx.Model(&assignment).Updates(map[string]interface{}{
			"end_date":         assignment.EndDate,
			"cutoff_timestamp": assignment.CutoffTimestamp,
		}).Error; err != nil {
			return newInfraError("update assignment", err)
		}

		// Freeze affected projects. The flag is a read-only marker consulted
		// by permit issuance, oversight recording, and finalization.
		if err := tx.Model(&models.Project{}).
			Where("licensed_business_id = ? AND qualifier_id = ? AND status = ?",
				assignment.LicensedBusinessID, assignment.QualifierID, models.ProjectStatusActive).
			Update("qualifier_absent", true).Error; err != nil {
			return newInfraError("flag affected projects", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

// CreateProject creates a project with business and qualifier fixed for its
// lifetime. Requires an active business, a currently-active assignment with
// this exact qualifier, and authority not yet cut off as of now.
func (s *ComplianceService) CreateProject(req *CreateProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()

	var project *models.Project
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var business models.LicensedBusiness
		if err := tx.First(&business, req.LicensedBusinessID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("licensed business not found")
			}
			return newInfraError("load licensed business", err)
		}
		if !business.IsActive {
			return errors.New("licensed business is not active")
		}

		var assignments []models.LicensedBusinessQualifierAssignment
		if err := tx.Where("qualifier_id = ?", req.QualifierID).Find(&assignments).Error; err != nil {
			return newInfraError("load qualifier assignments", err)
		}

		hasActive := false
		for i := range assignments {
			if assignments[i].LicensedBusinessID == req.LicensedBusinessID && assignments[i].ActiveAt(now) {
				hasActive = true
				break
			}
		}
		if !hasActive {
			return NewBlockError(
				compliance.ReasonNoValidQualifier,
				"no active qualifier assignment exists for this business",
				models.EntityTypeLicensedBusiness,
				req.LicensedBusinessID,
			).WithDetail("qualifier_id", req.QualifierID)
		}

		cutoff := compliance.CheckCutoff(assignments, req.LicensedBusinessID, now)
		if !cutoff.WithinWindow {
			block := NewBlockError(
				compliance.ReasonQualifierCutoffExceeded,
				"qualifier authority for this business has been cut off",
				models.EntityTypeQualifier,
				req.QualifierID,
			)
			if cutoff.CutoffDate != nil {
				block = block.WithDetail("cutoff_date", cutoff.CutoffDate)
			}
			return block
		}

		project = &models.Project{
			LicensedBusinessID: req.LicensedBusinessID,
			QualifierID:        req.QualifierID,
			Name:               req.Name,
			SiteAddress:        req.SiteAddress,
			Status:             models.ProjectStatusActive,
		}
		if err := tx.Create(project).Error; err != nil {
			return newInfraError("create project", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// CreatePermit issues a permit under a project. Issuance on a
// qualifier-absent project is a soft block: a justification lifts it, logged
// against the project in the same transaction.
func (s *ComplianceService) CreatePermit(req *CreatePermitRequest, approverID uuid.UUID) (*models.Permit, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	issuance := time.Now()
	if req.IssuanceDate != nil {
		issuance = *req.IssuanceDate
	}

	var permit *models.Permit
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var project models.Project
		if err := database.LockForUpdate(tx).First(&project, req.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("project not found")
			}
			return newInfraError("load project", err)
		}
		if project.Status != models.ProjectStatusActive {
			return errors.New("project is not active")
		}

		if project.QualifierAbsent {
			if req.Justification == "" {
				return NewBlockError(
					compliance.ReasonProjectQualifierAbsent,
					"project is flagged qualifier-absent; a justification is required to issue permits",
					models.EntityTypeProject,
					project.ID,
				)
			}
			if _, err := s.justificationService.logJustificationTx(tx,
				models.OverrideQualifierAbsent, models.EntityTypeProject, project.ID,
				req.Justification, approverID); err != nil {
				return err
			}
		}

		permit = &models.Permit{
			ProjectID:          project.ID,
			LicensedBusinessID: project.LicensedBusinessID,
			PermitNumber:       req.PermitNumber,
			WorkDescription:    req.WorkDescription,
			IssuanceDate:       issuance,
			ExpirationDate:     req.ExpirationDate,
			Status:             models.PermitStatusDraft,
		}
		if err := tx.Create(permit).Error; err != nil {
			return newInfraError("create permit", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return permit, nil
}

// IssuePermit moves an approved permit to issued. Like CreatePermit, issuance
// on a qualifier-absent project is a soft block: a justification lifts it,
// logged against the project in the same transaction. The review workflow's
// other transitions carry no compliance rules and stay in PermitService.
func (s *ComplianceService) IssuePermit(permitID uuid.UUID, justificationText string, approverID uuid.UUID) (*models.Permit, error) {
	var permit models.Permit
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&permit, permitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("permit not found")
			}
			return newInfraError("load permit", err)
		}
		if permit.Status != models.PermitStatusApproved {
			return fmt.Errorf("permit cannot move from %s to %s", permit.Status, models.PermitStatusIssued)
		}

		var project models.Project
		if err := tx.First(&project, permit.ProjectID).Error; err != nil {
			return newInfraError("load project", err)
		}
		if project.QualifierAbsent {
			if justificationText == "" {
				return NewBlockError(
					compliance.ReasonProjectQualifierAbsent,
					"project is flagged qualifier-absent; a justification is required to issue permits",
					models.EntityTypeProject,
					project.ID,
				)
			}
			if _, err := s.justificationService.logJustificationTx(tx,
				models.OverrideQualifierAbsent, models.EntityTypeProject, project.ID,
				justificationText, approverID); err != nil {
				return err
			}
		}

		permit.Status = models.PermitStatusIssued
		if err := tx.Model(&permit).Update("status", permit.Status).Error; err != nil {
			return newInfraError("issue permit", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &permit, nil
}

// FinalizePermit closes a permit. The oversight minimum is a soft block: if
// unmet and no justification is provided the permit is left untouched; with a
// justification the permit closes and exactly one ComplianceJustification row
// is written, atomically with the status change. The permit row is locked so
// the evaluation cannot race a concurrent oversight write.
func (s *ComplianceService) FinalizePermit(permitID uuid.UUID, req *FinalizePermitRequest, approverID uuid.UUID) (*models.Permit, *models.ComplianceJustification, error) {
	finalization := time.Now()
	if req != nil && req.FinalizationDate != nil {
		finalization = *req.FinalizationDate
	}
	justificationText := ""
	if req != nil {
		justificationText = req.Justification
	}

	var permit models.Permit
	var justification *models.ComplianceJustification
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&permit, permitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("permit not found")
			}
			return newInfraError("load permit", err)
		}
		if permit.Status == models.PermitStatusClosed {
			return errors.New("permit is already closed")
		}
		if permit.Status != models.PermitStatusIssued {
			return fmt.Errorf("permit cannot be finalized from status %s", permit.Status)
		}

		var project models.Project
		if err := tx.First(&project, permit.ProjectID).Error; err != nil {
			return newInfraError("load project", err)
		}

		result, err := s.evaluateOversightTx(tx, &permit)
		if err != nil {
			return err
		}

		var overriddenRule models.OverrideActionType
		var blockReason compliance.ReasonCode
		var blockMessage string
		switch {
		case !result.Satisfied:
			overriddenRule = models.OverrideOversightMinimum
			blockReason = compliance.ReasonOversightMinimumNotMet
			blockMessage = "permit has no valid oversight action on record"
		case project.QualifierAbsent:
			overriddenRule = models.OverrideQualifierAbsent
			blockReason = compliance.ReasonProjectQualifierAbsent
			blockMessage = "project is flagged qualifier-absent; a justification is required to finalize"
		}

		if overriddenRule != "" {
			if justificationText == "" {
				return NewBlockError(blockReason, blockMessage, models.EntityTypePermit, permit.ID).
					WithDetail("valid_action_count", len(result.ValidActions))
			}
			justification, err = s.justificationService.logJustificationTx(tx,
				overriddenRule, models.EntityTypePermit, permit.ID, justificationText, approverID)
			if err != nil {
				return err
			}
		}

		permit.Status = models.PermitStatusClosed
		permit.FinalizationDate = &finalization
		if err := tx.Model(&permit).Updates(map[string]interface{}{
			"status":            permit.Status,
			"finalization_date": permit.FinalizationDate,
		}).Error; err != nil {
			return newInfraError("finalize permit", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &permit, justification, nil
}

// RecordOversightAction inserts supervision evidence for a permit. A cutoff
// violation is a hard block: an action outside legal authority cannot be
// justified into existence. The qualifier-absent project flag is the one
// soft block here.
func (s *ComplianceService) RecordOversightAction(req *RecordOversightActionRequest, approverID uuid.UUID) (*models.OversightAction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var action *models.OversightAction
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var permit models.Permit
		if err := database.LockForUpdate(tx).First(&permit, req.PermitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("permit not found")
			}
			return newInfraError("load permit", err)
		}

		if req.ActionDate.Before(permit.IssuanceDate) {
			return errors.New("action date precedes permit issuance")
		}
		if end := permit.OversightWindowEnd(); end != nil && !req.ActionDate.Before(*end) {
			return errors.New("action date falls after the permit's oversight window")
		}

		var assignments []models.LicensedBusinessQualifierAssignment
		if err := tx.Where("qualifier_id = ?", req.QualifierID).Find(&assignments).Error; err != nil {
			return newInfraError("load qualifier assignments", err)
		}

		cutoff := compliance.CheckCutoff(assignments, permit.LicensedBusinessID, req.ActionDate)
		if !cutoff.WithinWindow {
			block := NewBlockError(
				compliance.ReasonQualifierCutoffExceeded,
				"qualifier authority for this business ended before the action date",
				models.EntityTypeQualifier,
				req.QualifierID,
			)
			if cutoff.CutoffDate != nil {
				block = block.WithDetail("cutoff_date", cutoff.CutoffDate)
			}
			return block
		}

		var project models.Project
		if err := tx.First(&project, permit.ProjectID).Error; err != nil {
			return newInfraError("load project", err)
		}
		if project.QualifierAbsent {
			if req.Justification == "" {
				return NewBlockError(
					compliance.ReasonProjectQualifierAbsent,
					"project is flagged qualifier-absent; a justification is required to record oversight",
					models.EntityTypeProject,
					project.ID,
				)
			}
			if _, err := s.justificationService.logJustificationTx(tx,
				models.OverrideQualifierAbsent, models.EntityTypeProject, project.ID,
				req.Justification, approverID); err != nil {
				return err
			}
		}

		action = &models.OversightAction{
			PermitID:    permit.ID,
			QualifierID: req.QualifierID,
			ActionType:  req.ActionType,
			ActionDate:  req.ActionDate,
			Notes:       req.Notes,
		}
		if err := tx.Create(action).Error; err != nil {
			return newInfraError("create oversight action", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return action, nil
}

// EvaluatePermitOversight runs the oversight minimum evaluator read-only.
// Safe to call repeatedly: identical underlying data yields identical
// results.
func (s *ComplianceService) EvaluatePermitOversight(permitID uuid.UUID) (*compliance.OversightResult, error) {
	var permit models.Permit
	if err := s.db.First(&permit, permitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("permit not found")
		}
		return nil, newInfraError("load permit", err)
	}

	return s.evaluateOversightTx(s.db, &permit)
}

func (s *ComplianceService) evaluateOversightTx(tx *gorm.DB, permit *models.Permit) (*compliance.OversightResult, error) {
	var actions []models.OversightAction
	if err := tx.Where("permit_id = ?", permit.ID).
		Order("action_date ASC").
		Find(&actions).Error; err != nil {
		return nil, newInfraError("load oversight actions", err)
	}

	assignmentsByQualifier := make(map[uuid.UUID][]models.LicensedBusinessQualifierAssignment)
	for _, action := range actions {
		if _, loaded := assignmentsByQualifier[action.QualifierID]; loaded {
			continue
		}
		var assignments []models.LicensedBusinessQualifierAssignment
		if err := tx.Where("qualifier_id = ?", action.QualifierID).Find(&assignments).Error; err != nil {
			return nil, newInfraError("load qualifier assignments", err)
		}
		assignmentsByQualifier[action.QualifierID] = assignments
	}

	result := compliance.EvaluateOversight(permit, actions, assignmentsByQualifier)
	return &result, nil
}

// CheckQualifierCapacity reports the qualifier's active assignment count as
// of the given date. Historical dates recompute past verdicts for audit.
func (s *ComplianceService) CheckQualifierCapacity(qualifierID uuid.UUID, asOf time.Time) (*compliance.CapacityResult, error) {
	var qualifier models.Qualifier
	if err := s.db.First(&qualifier, qualifierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("qualifier not found")
		}
		return nil, newInfraError("load qualifier", err)
	}

	var assignments []models.LicensedBusinessQualifierAssignment
	if err := s.db.Where("qualifier_id = ?", qualifierID).Find(&assignments).Error; err != nil {
		return nil, newInfraError("load qualifier assignments", err)
	}

	result := compliance.CheckCapacity(assignments, asOf, s.capacityLimit)
	return &result, nil
}
