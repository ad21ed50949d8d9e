package jobs

import (
	"fmt"
	"time"
)

// defaultRunTimeout bounds one scheduled pass.
const defaultRunTimeout = 2 * time.Minute

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	jobs []namedJob
}

type namedJob struct {
	name string
	job  Job
}

// NewJobManager creates a manager for the reaper, reconcile and heartbeat jobs.
func NewJobManager(reaper *SessionReaperJob, reconcile *StatusReconcileJob, heartbeat *HeartbeatJob) *JobManager {
	return &JobManager{jobs: []namedJob{
		{name: sessionReaperJobName, job: reaper},
		{name: statusReconcileJobName, job: reconcile},
		{name: heartbeatJobName, job: heartbeat},
	}}
}

// StartAll starts the jobs in order. If one fails, those already started are
// stopped again.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.job.Start(); err != nil {
			for k := i - 1; k >= 0; k-- {
				jm.jobs[k].job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully, in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.jobs) - 1; i >= 0; i-- {
		jm.jobs[i].job.Stop()
	}
}
