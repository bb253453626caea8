package database

import (
	"github.com/rpupo63/builders-showcase-backend/errs"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	builderRepo *BuilderRepo
	projectRepo *ProjectRepo
	voteRepo    *VoteRepo
	weekRepo    *WeekRepo
	tagRepo     *TagRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		builderRepo: NewBuilderRepo(db),
		projectRepo: NewProjectRepo(db),
		voteRepo:    NewVoteRepo(db),
		weekRepo:    NewWeekRepo(db),
		tagRepo:     NewTagRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) BuilderRepo() *BuilderRepo {
	return d.builderRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) VoteRepo() *VoteRepo {
	return d.voteRepo
}

func (d Database) WeekRepo() *WeekRepo {
	return d.weekRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

// UseReplicas routes reads to the given replicas and keeps writes and
// transactions on the primary connection.
func UseReplicas(db *gorm.DB, replicas []gorm.Dialector) error {
	if len(replicas) == 0 {
		return errs.BadRequest("at least one replica is required")
	}
	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
}
