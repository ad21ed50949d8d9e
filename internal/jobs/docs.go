// Package jobs provides the scheduled background tasks of the kitchen service,
// built on github.com/robfig/cron/v3.
//
// # Available Jobs
//
//  1. SessionReaperJob - closes sessions whose heartbeat lapsed and releases their claims
//  2. StatusReconcileJob - re-runs completion aggregation over open orders
//  3. HeartbeatJob - keeps the session of a connected kitchen display alive
//
// # Usage
//
//	jobManager := jobs.NewJobManager(reaperJob, reconcileJob, heartbeatJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Reaper and reconcile schedules are robfig/cron expressions from configuration, e.g.
// "@every 30s". Runs of one job never overlap and a panic in a run is recovered.
// Every run is measured by metrics.CronJobMetrics.
package jobs
