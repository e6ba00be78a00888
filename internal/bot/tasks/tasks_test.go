package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/steamguardbot/internal/accounts"
	"github.com/edgard/steamguardbot/internal/config"
)

type fakeSweeper struct {
	calls  int
	report accounts.SweepReport
	err    error
}

func (s *fakeSweeper) Sweep(context.Context) (accounts.SweepReport, error) {
	s.calls++
	return s.report, s.err
}

type fakeMaintainer struct {
	calls int
	err   error
}

func (m *fakeMaintainer) RunMaintenance(context.Context) error {
	m.calls++
	return m.err
}

func testDeps() (TaskDeps, *fakeSweeper, *fakeMaintainer) {
	sweeper := &fakeSweeper{}
	maintainer := &fakeMaintainer{}
	return TaskDeps{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:     maintainer,
		Refresher: sweeper,
	}, sweeper, maintainer
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	deps, _, _ := testDeps()
	tasks := RegisterAllTasks(deps)

	assert.Len(t, tasks, 2)
	assert.Contains(t, tasks, config.TaskCodeRefresh)
	assert.Contains(t, tasks, config.TaskStoreMaintenance)
}

func TestCodeRefreshTask(t *testing.T) {
	t.Parallel()

	deps, sweeper, _ := testDeps()
	task := newCodeRefreshTask(deps)

	sweeper.report = accounts.SweepReport{SweepID: "s1", Total: 3, Updated: 2, Failed: 1}
	require.NoError(t, task(context.Background()), "per-account failures do not fail the task")

	sweeper.err = context.Canceled
	err := task(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, sweeper.calls)
}

func TestStoreMaintenanceTask(t *testing.T) {
	t.Parallel()

	deps, _, maintainer := testDeps()
	task := newStoreMaintenanceTask(deps)

	require.NoError(t, task(context.Background()))

	maintainer.err = errors.New("database is locked")
	err := task(context.Background())
	require.ErrorIs(t, err, maintainer.err)
	assert.Equal(t, 2, maintainer.calls)
}
