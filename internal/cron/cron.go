package cron

import (
	"context"
	"os"
	"sync"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	cronv3 "github.com/robfig/cron/v3"

	cron_config "github.com/flowyn/flowyn-core/internal/cron/config"
	flowynerrors "github.com/flowyn/flowyn-core/internal/errors"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/interfaces"
)

const (
	// GroupSync serializes the mailbox sync jobs
	GroupSync = "sync"
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupSync: new(sync.Mutex),
	},
}

type CronManager struct {
	log         logger.Logger
	cron        *cronv3.Cron
	stopCh      chan struct{}
	jobIDs      map[string]cronv3.EntryID
	syncService interfaces.SyncService
}

func NewCronManager(log logger.Logger, syncService interfaces.SyncService) *CronManager {
	return &CronManager{
		log:         log,
		stopCh:      make(chan struct{}),
		jobIDs:      make(map[string]cronv3.EntryID),
		syncService: syncService,
	}
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleSyncMailboxes != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleSyncMailboxes, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupSync].Lock()
			defer jobLocks.locks[GroupSync].Unlock()
			cm.syncMailboxes()
		})
		if err != nil {
			cm.log.Fatalf("Could not add mailbox sync cron job: %v", err)
		}
		cm.jobIDs["sync_mailboxes"] = id
		cm.log.Infof("Registered mailbox sync job with schedule: %s", cronConfig.CronScheduleSyncMailboxes)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) syncMailboxes() {
	cm.log.Info("Running scheduled mailbox sync")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.syncMailboxes")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	report, err := cm.syncService.SyncAll(ctx)
	if err != nil {
		if errors.Is(err, flowynerrors.ErrSyncInProgress) {
			cm.log.Info("Mailbox sync already running, skipping this tick")
			return
		}
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled mailbox sync failed: %v", err)
		return
	}

	cm.log.Infof("Mailbox sync finished: %d accounts, %d fetched, %d merged", report.Accounts, report.Fetched, report.Merged)
}
