package api

import (
	"time"

	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/services"
	"github.com/rpupo63/builders-showcase-backend/views"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(
	database database.Database,
	blobs services.BlobStore,
	renderer *views.Renderer,
	siteMode string,
	maxUploadBytes int64,
	startupTime time.Time,
	now func() time.Time,
) *routeHandlers {
	ledger := voteLedger{voteRepo: database.VoteRepo(), projectRepo: database.ProjectRepo()}

	return &routeHandlers{
		healthHandler:  newHealthHandler(startupTime),
		builderHandler: newBuilderHandler(database.BuilderRepo(), blobs, maxUploadBytes),
		projectHandler: newProjectHandler(database.ProjectRepo(), database.BuilderRepo(), database.TagRepo(), blobs, siteMode, maxUploadBytes, now),
		voteHandler:    newVoteHandler(ledger),
		viewHandler:    newViewHandler(renderer, database.ProjectRepo(), ledger),
	}
}
