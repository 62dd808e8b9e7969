package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

type hookRecorder struct {
	hooks []fx.Hook
}

func (r *hookRecorder) Append(h fx.Hook) {
	r.hooks = append(r.hooks, h)
}

func TestSchedulerOutlivesStartDeadline(t *testing.T) {
	var lc hookRecorder
	s := NewScheduler(NewService(ServiceParams{}))
	StartScheduler(&lc, s)
	require.Len(t, lc.hooks, 1)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	require.NoError(t, lc.hooks[0].OnStart(startCtx))

	// The start deadline above is long gone by now; the loop must still
	// be running.
	select {
	case <-s.done:
		t.Fatal("scheduler stopped with the start context")
	case <-time.After(50 * time.Millisecond):
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, lc.hooks[0].OnStop(stopCtx))

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler still running after stop")
	}
}
