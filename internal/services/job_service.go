package services

import (
	"time"

	"github.com/sjperalta/devagency-api/internal/jobs"
)

// OverdueMilestonesJob is the name the overdue reminder runs under in worker stats
const OverdueMilestonesJob = "overdue_milestones"

// JobService registers the recurring jobs and reports worker activity
type JobService struct {
	worker       *jobs.Worker
	notification *NotificationService
}

func NewJobService(worker *jobs.Worker, notification *NotificationService) *JobService {
	return &JobService{
		worker:       worker,
		notification: notification,
	}
}

// ScheduleRecurring starts the hourly overdue milestone reminder. The first
// check runs at startup.
func (s *JobService) ScheduleRecurring() {
	if s.worker == nil {
		return
	}
	s.worker.ScheduleEveryImmediate(OverdueMilestonesJob, time.Hour, s.notification.CheckOverduePayments)
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	if s.worker == nil {
		return jobs.WorkerStats{Schedules: []jobs.ScheduleStatus{}}
	}
	return s.worker.GetStats()
}
