package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

func createBuilder(t *testing.T, db *gorm.DB, name string) *models.Builder {
	t.Helper()

	builder := &models.Builder{ExternalID: "user_" + uuid.NewString(), Name: name}
	require.NoError(t, NewBuilderRepo(db).Add(context.Background(), builder))
	return builder
}

func createProject(t *testing.T, db *gorm.DB, lead *models.Builder, title string, status models.ProjectStatus, now time.Time) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:        title,
		Preview:      title + " preview",
		Status:       status,
		HackType:     "REGULAR",
		LaunchLeadID: lead.ID,
		CreatedAt:    now,
	}
	require.NoError(t, NewProjectRepo(db).CreateInCurrentWeek(context.Background(), project, now))
	return project
}

func TestUseReplicasRequiresReplica(t *testing.T) {
	db := newTestDB(t)

	err := UseReplicas(db, nil)
	require.Error(t, err)
}
