package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/devagency-api/internal/jobs"
)

func TestJobService_ScheduleRecurring(t *testing.T) {
	notifications, _ := newNotificationFixture(t)
	worker := jobs.NewWorker(1)
	svc := NewJobService(worker, notifications)

	svc.ScheduleRecurring()

	assert.Eventually(t, func() bool {
		return svc.GetStatus().CompletedJobs == 1
	}, 2*time.Second, 10*time.Millisecond)
	worker.Shutdown()

	status := svc.GetStatus()
	require.Len(t, status.Schedules, 1)
	assert.Equal(t, OverdueMilestonesJob, status.Schedules[0].Name)
	assert.Equal(t, int64(1), status.Schedules[0].Runs)
	assert.Empty(t, status.Schedules[0].LastError)
	assert.Equal(t, int64(0), status.FailedJobs)
}

func TestJobService_WithoutWorker(t *testing.T) {
	svc := NewJobService(nil, nil)

	assert.NotPanics(t, svc.ScheduleRecurring)
	status := svc.GetStatus()
	assert.Zero(t, status.CompletedJobs)
	assert.Empty(t, status.Schedules)
}
