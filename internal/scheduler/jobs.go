package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"jongga-screener/internal/modules/learning"
	"jongga-screener/internal/modules/screener"
	"jongga-screener/internal/modules/universe"
	"jongga-screener/internal/reliability"
)

const jobTimeout = 10 * time.Minute

// ScreeningJob runs the daily screen at the closing auction.
type ScreeningJob struct {
	svc      *screener.Service
	universe *universe.Repository
	loc      *time.Location
	log      zerolog.Logger
}

// NewScreeningJob creates the screening job.
func NewScreeningJob(svc *screener.Service, repo *universe.Repository, loc *time.Location, log zerolog.Logger) *ScreeningJob {
	return &ScreeningJob{svc: svc, universe: repo, loc: loc, log: log}
}

// Name implements Job.
func (j *ScreeningJob) Name() string { return "daily_screening" }

// Run screens today's universe. A day with no bars (holiday, feed not
// yet loaded) produces an empty candidate list and is skipped quietly.
func (j *ScreeningJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	screenDate := tradingDate(time.Now().In(j.loc))
	candidates, err := j.universe.Candidates(ctx, screenDate)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		j.log.Info().
			Str("screen_date", screenDate.Format("2006-01-02")).
			Msg("No bars for today, skipping screen")
		return nil
	}

	_, err = j.svc.Run(ctx, screenDate, candidates)
	return err
}

// LearningJob collects realized outcomes and re-optimizes the weights
// after the session settles.
type LearningJob struct {
	svc *learning.Service
}

// NewLearningJob creates the learning job.
func NewLearningJob(svc *learning.Service) *LearningJob {
	return &LearningJob{svc: svc}
}

// Name implements Job.
func (j *LearningJob) Name() string { return "daily_learning" }

// Run implements Job.
func (j *LearningJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	_, err := j.svc.RunDaily(ctx)
	return err
}

// BackupJob snapshots the databases to object storage.
type BackupJob struct {
	svc *reliability.BackupService
}

// NewBackupJob creates the backup job.
func NewBackupJob(svc *reliability.BackupService) *BackupJob {
	return &BackupJob{svc: svc}
}

// Name implements Job.
func (j *BackupJob) Name() string { return "database_backup" }

// Run implements Job.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	return j.svc.Backup(ctx)
}

// tradingDate truncates a local timestamp to its calendar date. Bars
// and runs key on dates, never clock times.
func tradingDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
