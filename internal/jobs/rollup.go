package jobs

import (
	"log/slog"

	"docucloud/internal/config"
	"docucloud/internal/database"
	"docucloud/internal/reporting"
)

// RollupJob maintains the reporting aggregate tables consumed by the
// summary endpoint.
type RollupJob struct {
	dbManager *database.Manager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewRollupJob(dbManager *database.Manager, logger *slog.Logger, cfg *config.Config) *RollupJob {
	return &RollupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run recomputes the aggregates from raw tracking data.
func (j *RollupJob) Run() error {
	db := j.dbManager.GetConnection()
	if db == nil {
		j.logger.Warn("Skipping reporting rollup - no database connection")
		return nil
	}

	if err := reporting.RebuildAggregates(db, j.logger, j.cfg.TopPagesLimit); err != nil {
		j.logger.Error("Failed to rebuild reporting aggregates", slog.Any("error", err))
		return err
	}

	return nil
}
