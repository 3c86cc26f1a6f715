package CronJobs

import (
	"fmt"

	"Flotilla/Notifications"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ExpiryChecker runs the document-expiry scan on a schedule.
type ExpiryChecker struct {
	cronScheduler  *cron.Cron
	notifier       *Notifications.Notifier
	schedule       string
	runImmediately bool
	jobID          cron.EntryID
}

// NewExpiryChecker creates the checker with the given cron schedule
// (standard 5-field expression, e.g. "0 8 * * *").
func NewExpiryChecker(notifier *Notifications.Notifier, schedule string, runImmediately bool) *ExpiryChecker {
	return &ExpiryChecker{
		cronScheduler:  cron.New(),
		notifier:       notifier,
		schedule:       schedule,
		runImmediately: runImmediately,
	}
}

// Start schedules the daily scan and kicks off the scheduler.
func (e *ExpiryChecker) Start() error {
	var err error
	e.jobID, err = e.cronScheduler.AddFunc(e.schedule, func() {
		log.Info("running scheduled document expiry check")
		e.runCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	e.cronScheduler.Start()
	log.Infof("document expiry scheduler started with schedule %q", e.schedule)

	if e.runImmediately {
		log.Info("running initial document expiry check")
		e.runCheck()
	}
	return nil
}

// Stop terminates the scheduler.
func (e *ExpiryChecker) Stop() {
	if e.cronScheduler != nil {
		e.cronScheduler.Stop()
		log.Info("document expiry scheduler stopped")
	}
}

// UpdateSchedule swaps the cron expression without restarting the process.
func (e *ExpiryChecker) UpdateSchedule(schedule string) error {
	e.cronScheduler.Remove(e.jobID)

	var err error
	e.jobID, err = e.cronScheduler.AddFunc(schedule, func() {
		log.Info("running scheduled document expiry check")
		e.runCheck()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	e.schedule = schedule
	log.Infof("document expiry schedule updated to %q", schedule)
	return nil
}

// RunManualCheck executes the scan outside the schedule.
func (e *ExpiryChecker) RunManualCheck() {
	log.Info("running manual document expiry check")
	e.runCheck()
}

func (e *ExpiryChecker) runCheck() {
	created, err := e.notifier.CheckExpiringDocuments()
	if err != nil {
		log.WithError(err).Error("document expiry check failed")
		return
	}
	log.WithField("created", created).Info("document expiry check completed")
}
