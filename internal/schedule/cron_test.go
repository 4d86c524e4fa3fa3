package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidExpression(t *testing.T) {
	_, err := New("not a cron", "test", func(ctx context.Context) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestNewAcceptsFiveFieldExpression(t *testing.T) {
	s, err := New("30 2 * * *", "test", func(ctx context.Context) {})
	require.NoError(t, err)
	assert.NotNil(t, s)

	// 6-field (with seconds) expressions are not part of the contract.
	_, err = New("0 30 2 * * *", "test", func(ctx context.Context) {})
	assert.Error(t, err)
}

func TestSchedulerStops(t *testing.T) {
	s, err := New("* * * * *", "test", func(ctx context.Context) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	s.Stop()
	wg.Wait()
}

func TestSchedulerSurvivesPanickingJob(t *testing.T) {
	ran := false
	s, err := New("* * * * *", "test", func(ctx context.Context) {
		ran = true
		panic("job blew up")
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.runJob(context.Background()) })
	assert.True(t, ran)
}

func TestSchedulerContextCancellation(t *testing.T) {
	s, err := New("* * * * *", "test", func(ctx context.Context) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}
