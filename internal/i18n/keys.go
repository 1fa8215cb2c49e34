// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAdminAccessDenied      = "auth.admin_access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Rate limiting
	KeyRateLimitExceeded = "error.rate_limit_exceeded"

	// Licensed businesses
	KeyBusinessCreated     = "licensed_business.created"
	KeyBusinessUpdated     = "licensed_business.updated"
	KeyBusinessDeactivated = "licensed_business.deactivated"
	KeyBusinessNotFound    = "licensed_business.not_found"

	// Qualifiers and assignments
	KeyQualifierRegistered  = "qualifier.registered"
	KeyQualifierNotFound    = "qualifier.not_found"
	KeyQualifierAssigned    = "qualifier.assigned"
	KeyQualifierExited      = "qualifier.exited"
	KeyAssignmentNotFound   = "assignment.not_found"
	KeyCapacityExceeded     = "compliance.capacity_exceeded"
	KeyCutoffExceeded       = "compliance.cutoff_exceeded"
	KeyNoValidQualifier     = "compliance.no_valid_qualifier"
	KeyOversightMinimum     = "compliance.oversight_minimum_not_met"
	KeyQualifierAbsent      = "compliance.project_qualifier_absent"
	KeyJustificationInvalid = "compliance.invalid_justification"

	// Projects
	KeyProjectCreated  = "project.created"
	KeyProjectUpdated  = "project.updated"
	KeyProjectNotFound = "project.not_found"

	// Permits and oversight
	KeyPermitCreated         = "permit.created"
	KeyPermitFinalized       = "permit.finalized"
	KeyPermitNotFound        = "permit.not_found"
	KeyPermitBadTransition   = "permit.invalid_transition"
	KeyOversightRecorded     = "oversight_action.recorded"
	KeyOversightNotFound     = "oversight_action.not_found"
	KeyJustificationRecorded = "justification.recorded"
	KeyJustificationNotFound = "justification.not_found"
)
