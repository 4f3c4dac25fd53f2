// File: internal/jobs/client_site_sync.go
package jobs

import (
	"context"
	"time"

	"chantier_backend/internal/access"
	"chantier_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper resolves stored profiles in bulk.
type Sweeper interface {
	Sweep(ctx context.Context, filter access.Filter) (access.SweepSummary, error)
}

// ClientSiteSyncJob periodically re-resolves every client profile so site
// assignments heal even for clients who do not sign in.
type ClientSiteSyncJob struct {
	sweeper       Sweeper
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
	timeout       time.Duration
}

// NewClientSiteSyncJob creates a new ClientSiteSyncJob.
func NewClientSiteSyncJob(sweeper Sweeper, logger *zap.Logger, cfg *config.Config) *ClientSiteSyncJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &ClientSiteSyncJob{
		sweeper:       sweeper,
		logger:        logger.Named("ClientSiteSyncJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
		timeout:       10 * time.Minute,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ClientSiteSyncJob) SetupAndStart() error {
	jobSpec := j.cfg.ClientSiteSyncSchedule
	if jobSpec == "" {
		j.logger.Warn("Client site sync schedule not defined (CLIENT_SITE_SYNC_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule client site sync job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Client site sync job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *ClientSiteSyncJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce performs a single sweep over client profiles.
func (j *ClientSiteSyncJob) RunOnce(ctx context.Context) (access.SweepSummary, error) {
	j.logger.Info("Starting client site sync run...")
	summary, err := j.sweeper.Sweep(ctx, access.ClientProfiles)
	if err != nil {
		j.logger.Error("Client site sync run failed", zap.Error(err), zap.Int("resolved", summary.Resolved))
		return summary, err
	}
	j.logger.Info("Client site sync run completed",
		zap.Int("scanned", summary.Scanned),
		zap.Int("resolved", summary.Resolved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Stop gracefully stops the cron scheduler.
func (j *ClientSiteSyncJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping client site sync scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Client site sync scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Client site sync scheduler stop timed out.")
	}
}
