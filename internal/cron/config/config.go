package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Mailbox sync across all linked accounts, every 15 minutes
	CronScheduleSyncMailboxes string `env:"CRON_SCHEDULE_SYNC_MAILBOXES" envDefault:"0 */15 * * * *"`
}
