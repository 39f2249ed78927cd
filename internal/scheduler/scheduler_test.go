package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(logger.NewNop())
}

func TestAddJobRejectsDuplicate(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "ingest", schedule: "0 0 18 * * *"}

	require.NoError(t, s.AddJob(job))
	err := s.AddJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.AddJob(&fakeJob{name: "broken", schedule: "not a cron spec"})
	require.Error(t, err)
}

func TestRunJobExecutesAndRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "decision", schedule: "0 0 19 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("decision"))

	assert.Equal(t, int32(1), job.runs.Load())

	h, err := s.History("decision")
	require.NoError(t, err)
	require.Len(t, h.Results, 1)
	assert.True(t, h.Results[0].Success)
	assert.Equal(t, "decision", h.Results[0].JobName)
	assert.Empty(t, h.Results[0].Error)
}

func TestRunJobUnknown(t *testing.T) {
	s := newTestScheduler()
	err := s.RunJob("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "ingest", schedule: "0 0 18 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RemoveJob("ingest"))
	assert.Error(t, s.RunJob("ingest"))
	assert.Error(t, s.RemoveJob("ingest"))
}

func TestJobNames(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 1 * * *"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 0 2 * * *"}))

	names := s.JobNames()
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestStartStopIdempotent(t *testing.T) {
	s := newTestScheduler()
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestJobHistoryCap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{
			JobName:   "ingest",
			StartTime: time.Now(),
			Success:   i%2 == 0,
			Error:     fmt.Sprintf("run %d", i),
		})
	}
	assert.Len(t, h.Results, 100)
	// oldest 50 dropped, last entry is run 149
	assert.Equal(t, "run 149", h.Results[99].Error)
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false, Error: errors.New("boom").Error()})
	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 1e-9)
}

func TestJobHistoryLatestResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 5; i++ {
		h.AddResult(JobResult{Error: fmt.Sprintf("run %d", i)})
	}

	latest := h.LatestResults(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "run 3", latest[0].Error)
	assert.Equal(t, "run 4", latest[1].Error)

	assert.Len(t, h.LatestResults(10), 5)
	assert.Empty(t, h.LatestResults(0))
}
