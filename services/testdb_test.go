package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"innovation-tracking-api/models"
	"innovation-tracking-api/utils"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testDBSeq   atomic.Int64
	testUserSeq atomic.Int64
)

// newTestDB opens a fresh in-memory database with the full schema migrated.
// Each call gets its own database so tests cannot observe each other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Role{},
		&models.Organisation{},
		&models.OrganisationUnit{},
		&models.User{},
		&models.Innovation{},
		&models.InnovationCollaborator{},
		&models.InnovationShare{},
		&models.InnovationSection{},
		&models.Assessment{},
		&models.AssessmentOrganisationUnit{},
		&models.ReassessmentRequest{},
		&models.InnovationSupport{},
		&models.SupportUserRole{},
		&models.NotifyMeSubscription{},
		&models.NotificationSchedule{},
		&models.ActivityLog{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate test schema: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, roleID int, unitID *string) models.User {
	t.Helper()

	seq := testUserSeq.Add(1)
	now := time.Now()
	user := models.User{
		UserID:             int(seq),
		UserFname:          "Test",
		UserLname:          fmt.Sprintf("User%d", seq),
		Email:              fmt.Sprintf("user%d@example.org", seq),
		RoleID:             roleID,
		OrganisationUnitID: unitID,
		CreateAt:           &now,
		UpdateAt:           &now,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedInnovation(t *testing.T, db *gorm.DB, ownerID int, status models.InnovationStatus) models.Innovation {
	t.Helper()

	now := time.Now()
	innovation := models.Innovation{
		InnovationID: uuid.NewString(),
		Name:         fmt.Sprintf("Innovation %s", uuid.NewString()[:8]),
		OwnerID:      ownerID,
		Status:       status,
		CreateAt:     &now,
		UpdateAt:     &now,
	}
	if err := db.Create(&innovation).Error; err != nil {
		t.Fatalf("seed innovation: %v", err)
	}
	return innovation
}

func seedOrganisation(t *testing.T, db *gorm.DB, name string) models.Organisation {
	t.Helper()

	now := time.Now()
	org := models.Organisation{
		OrganisationID: uuid.NewString(),
		Name:           name,
		CreateAt:       &now,
		UpdateAt:       &now,
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("seed organisation: %v", err)
	}
	return org
}

func seedOrganisationUnit(t *testing.T, db *gorm.DB, orgID, name string) models.OrganisationUnit {
	t.Helper()

	now := time.Now()
	unit := models.OrganisationUnit{
		OrganisationUnitID: uuid.NewString(),
		OrganisationID:     orgID,
		Name:               name,
		CreateAt:           &now,
		UpdateAt:           &now,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed organisation unit: %v", err)
	}
	return unit
}

func seedSupport(t *testing.T, db *gorm.DB, innovationID, unitID string, status models.SupportStatus) models.InnovationSupport {
	t.Helper()

	now := time.Now()
	support := models.InnovationSupport{
		SupportID:          uuid.NewString(),
		InnovationID:       innovationID,
		OrganisationUnitID: unitID,
		Status:             status,
		CreateAt:           &now,
		UpdateAt:           &now,
	}
	if err := db.Create(&support).Error; err != nil {
		t.Fatalf("seed support: %v", err)
	}
	return support
}

func reloadInnovation(t *testing.T, db *gorm.DB, innovationID string) models.Innovation {
	t.Helper()

	var innovation models.Innovation
	if err := db.Where("innovation_id = ?", innovationID).First(&innovation).Error; err != nil {
		t.Fatalf("reload innovation %s: %v", innovationID, err)
	}
	return innovation
}

func reloadAssessment(t *testing.T, db *gorm.DB, assessmentID string) models.Assessment {
	t.Helper()

	var assessment models.Assessment
	if err := db.Where("assessment_id = ?", assessmentID).First(&assessment).Error; err != nil {
		t.Fatalf("reload assessment %s: %v", assessmentID, err)
	}
	return assessment
}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	if !utils.IsKind(err, kind) {
		t.Fatalf("expected error of kind %d, got %v", kind, err)
	}
}
