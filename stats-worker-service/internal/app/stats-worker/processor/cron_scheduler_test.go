package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSnapshotService мок для SnapshotServiceInterface
type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) Snapshot(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSnapshotService) LastSnapshot() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func TestNewCronScheduler(t *testing.T) {
	svc := new(MockSnapshotService)

	scheduler := NewCronScheduler(svc)

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Empty(t, scheduler.GetEntries())
	assert.Zero(t, scheduler.Interval())
}

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	svc := new(MockSnapshotService)
	scheduler := NewCronScheduler(svc)
	svc.On("Snapshot", mock.Anything).Return(nil)

	// Act
	err := scheduler.Start(context.Background(), "0 */5 * * * *")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	svc.AssertNumberOfCalls(t, "Snapshot", 1) // первый снимок при старте
	assert.Equal(t, 5*time.Minute, scheduler.Interval())

	scheduler.Stop()
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	svc := new(MockSnapshotService)
	scheduler := NewCronScheduler(svc)

	tests := []string{"invalid cron expression", "*/5 * * * *"}
	for _, schedule := range tests {
		err := scheduler.Start(context.Background(), schedule)
		assert.Error(t, err, schedule)
	}
	svc.AssertNotCalled(t, "Snapshot", mock.Anything)
}

func TestCronScheduler_InitialSnapshotError_ContinuesWork(t *testing.T) {
	svc := new(MockSnapshotService)
	scheduler := NewCronScheduler(svc)
	svc.On("Snapshot", mock.Anything).Return(errors.New("db down"))

	err := scheduler.Start(context.Background(), "0 */5 * * * *")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	scheduler.Stop()
}

func TestCronScheduler_JobExecution(t *testing.T) {
	svc := new(MockSnapshotService)
	scheduler := NewCronScheduler(svc)
	var runs atomic.Int32
	svc.On("Snapshot", mock.Anything).Run(func(mock.Arguments) { runs.Add(1) }).Return(nil)

	err := scheduler.Start(context.Background(), "@every 1s")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 3*time.Second, 50*time.Millisecond)

	scheduler.Stop()
}
