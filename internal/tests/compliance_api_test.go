// internal/tests/compliance_api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/permitdesk/permit-backend/internal/config"
	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/router"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type apiResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type ComplianceAPITestSuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	adminToken string
	requestSeq int
}

func (suite *ComplianceAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.LicensedBusiness{},
		&models.Qualifier{},
		&models.LicensedBusinessQualifierAssignment{},
		&models.Project{},
		&models.Permit{},
		&models.OversightAction{},
		&models.ComplianceJustification{},
		&models.AuditLog{},
	))
	suite.db = db

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 1,
		},
		Compliance: config.ComplianceConfig{QualifierCapacityLimit: 2},
	}
	suite.router = router.Initialize(db, cfg)

	admin := &models.User{
		Username: "admin",
		Email:    "admin@permitdesk.local",
		UserType: models.UserTypeAdmin,
		Status:   models.UserStatusActive,
	}
	suite.Require().NoError(admin.SetPassword("Adm1n!pass"))
	suite.Require().NoError(db.Create(admin).Error)

	token, err := utils.GenerateJWT(admin.ID, admin.Username, string(admin.UserType), 1)
	suite.Require().NoError(err)
	suite.adminToken = token
}

// request issues an HTTP call with a unique client address so the per-IP rate
// limiter never throttles the suite.
func (suite *ComplianceAPITestSuite) request(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	suite.requestSeq++
	req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:52000", suite.requestSeq/250, suite.requestSeq%250+1)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var parsed apiResponse
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}

func (suite *ComplianceAPITestSuite) createBusiness() *models.LicensedBusiness {
	business := &models.LicensedBusiness{
		EntityName:       "Business " + uuid.NewString()[:8],
		LicenseNumber:    "LB-" + uuid.NewString()[:8],
		LicenseExpiresAt: time.Now().AddDate(2, 0, 0),
		IsActive:         true,
	}
	suite.Require().NoError(suite.db.Create(business).Error)
	return business
}

func (suite *ComplianceAPITestSuite) createQualifier() *models.Qualifier {
	name := "qual-" + uuid.NewString()[:8]
	user := &models.User{
		Username: name,
		Email:    name + "@permitdesk.local",
		UserType: models.UserTypeQualifier,
		Status:   models.UserStatusActive,
	}
	suite.Require().NoError(user.SetPassword("Qu@lif1er"))
	suite.Require().NoError(suite.db.Create(user).Error)

	qualifier := &models.Qualifier{UserID: user.ID, IsActive: true}
	suite.Require().NoError(suite.db.Create(qualifier).Error)
	return qualifier
}

func (suite *ComplianceAPITestSuite) createAssignment(qualifier *models.Qualifier, business *models.LicensedBusiness) *models.LicensedBusinessQualifierAssignment {
	assignment := &models.LicensedBusinessQualifierAssignment{
		LicensedBusinessID: business.ID,
		QualifierID:        qualifier.ID,
		StartDate:          time.Now().AddDate(-1, 0, 0),
	}
	suite.Require().NoError(suite.db.Create(assignment).Error)
	return assignment
}

func (suite *ComplianceAPITestSuite) createProject(business *models.LicensedBusiness, qualifier *models.Qualifier) *models.Project {
	project := &models.Project{
		LicensedBusinessID: business.ID,
		QualifierID:        qualifier.ID,
		Name:               "Project " + uuid.NewString()[:8],
		Status:             models.ProjectStatusActive,
	}
	suite.Require().NoError(suite.db.Create(project).Error)
	return project
}

func (suite *ComplianceAPITestSuite) TestHealthCheck() {
	w, _ := suite.request(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ComplianceAPITestSuite) TestAuthenticationRequired() {
	w, parsed := suite.request(http.MethodGet, "/v1/businesses", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Require().NotNil(parsed.Error)
	suite.Equal("UNAUTHORIZED", parsed.Error.Code)
}

func (suite *ComplianceAPITestSuite) TestRegisterAndLogin() {
	w, _ := suite.request(http.MethodPost, "/v1/auth/register", gin.H{
		"username":  "inspector",
		"email":     "inspector@permitdesk.local",
		"password":  "Insp3ct0r!",
		"user_type": "staff",
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)

	w, parsed := suite.request(http.MethodPost, "/v1/auth/login", gin.H{
		"email":    "inspector@permitdesk.local",
		"password": "Insp3ct0r!",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.NotEmpty(parsed.Data["access_token"])
	suite.NotEmpty(parsed.Data["refresh_token"])
}

func (suite *ComplianceAPITestSuite) TestAssignmentCapacityEnforcedOverHTTP() {
	qualifier := suite.createQualifier()
	biz1 := suite.createBusiness()
	biz2 := suite.createBusiness()
	biz3 := suite.createBusiness()

	for _, biz := range []*models.LicensedBusiness{biz1, biz2} {
		w, _ := suite.request(http.MethodPost, "/v1/assignments", gin.H{
			"qualifier_id":         qualifier.ID,
			"licensed_business_id": biz.ID,
		}, suite.adminToken)
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	w, parsed := suite.request(http.MethodPost, "/v1/assignments", gin.H{
		"qualifier_id":         qualifier.ID,
		"licensed_business_id": biz3.ID,
	}, suite.adminToken)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Require().NotNil(parsed.Error)
	suite.Equal("QUALIFIER_CAPACITY_EXCEEDED", parsed.Error.Code)
	suite.EqualValues(2, parsed.Error.Details["current_count"])
	suite.EqualValues(2, parsed.Error.Details["capacity_limit"])
}

func (suite *ComplianceAPITestSuite) TestPermitLifecycleOverHTTP() {
	qualifier := suite.createQualifier()
	business := suite.createBusiness()
	suite.createAssignment(qualifier, business)
	project := suite.createProject(business, qualifier)

	issuance := time.Now().AddDate(0, -1, 0)
	w, parsed := suite.request(http.MethodPost, "/v1/permits", gin.H{
		"project_id":    project.ID,
		"permit_number": "PRM-" + strings.ToUpper(uuid.NewString()[:8]),
		"issuance_date": issuance.Format(time.RFC3339),
	}, suite.adminToken)
	suite.Require().Equal(http.StatusCreated, w.Code)
	permitData := parsed.Data["permit"].(map[string]interface{})
	permitID := permitData["id"].(string)

	for _, status := range []models.PermitStatus{
		models.PermitStatusSubmitted,
		models.PermitStatusUnderReview,
		models.PermitStatusApproved,
		models.PermitStatusIssued,
	} {
		w, _ = suite.request(http.MethodPut, "/v1/permits/"+permitID+"/status", gin.H{
			"status": status,
		}, suite.adminToken)
		suite.Require().Equal(http.StatusOK, w.Code, string(status))
	}

	// Finalizing without any oversight on record is blocked.
	w, parsed = suite.request(http.MethodPost, "/v1/permits/"+permitID+"/finalize", gin.H{}, suite.adminToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Require().NotNil(parsed.Error)
	suite.Equal("OVERSIGHT_MINIMUM_NOT_MET", parsed.Error.Code)

	w, _ = suite.request(http.MethodPost, "/v1/permits/"+permitID+"/oversight-actions", gin.H{
		"qualifier_id": qualifier.ID,
		"action_type":  "site_visit",
		"action_date":  issuance.Add(48 * time.Hour).Format(time.RFC3339),
		"notes":        "walked the slab pour",
	}, suite.adminToken)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w, parsed = suite.request(http.MethodGet, "/v1/permits/"+permitID+"/oversight", nil, suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	oversight := parsed.Data["oversight"].(map[string]interface{})
	suite.Equal(true, oversight["satisfied"])

	w, parsed = suite.request(http.MethodPost, "/v1/permits/"+permitID+"/finalize", gin.H{}, suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	finalized := parsed.Data["permit"].(map[string]interface{})
	suite.Equal("closed", finalized["status"])
	// The minimum was met, so no justification reference is returned.
	suite.Nil(parsed.Data["justification_reference"])
}

func (suite *ComplianceAPITestSuite) TestFinalizeWithJustificationOverHTTP() {
	qualifier := suite.createQualifier()
	business := suite.createBusiness()
	suite.createAssignment(qualifier, business)
	project := suite.createProject(business, qualifier)

	permit := &models.Permit{
		ProjectID:          project.ID,
		LicensedBusinessID: business.ID,
		PermitNumber:       "PRM-" + strings.ToUpper(uuid.NewString()[:8]),
		IssuanceDate:       time.Now().AddDate(0, -1, 0),
		Status:             models.PermitStatusIssued,
	}
	suite.Require().NoError(suite.db.Create(permit).Error)

	w, parsed := suite.request(http.MethodPost, "/v1/permits/"+permit.ID.String()+"/finalize", gin.H{
		"justification": "Qualifier medical leave; field log reviewed by board staff",
	}, suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	reference, ok := parsed.Data["justification_reference"].(string)
	suite.Require().True(ok)
	suite.Contains(reference, "CJ-")

	// The justification is retrievable through the read API.
	justificationID := parsed.Data["justification_id"].(string)
	w, parsed = suite.request(http.MethodGet, "/v1/justifications/"+justificationID, nil, suite.adminToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	justification := parsed.Data["justification"].(map[string]interface{})
	suite.Equal(reference, justification["reference_code"])
}

func TestComplianceAPITestSuite(t *testing.T) {
	suite.Run(t, new(ComplianceAPITestSuite))
}
