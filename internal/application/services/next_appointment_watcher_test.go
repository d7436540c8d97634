package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/adapters/events"
	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
)

func TestFeed_LatestWins(t *testing.T) {
	started := make(chan int, 2)
	var calls atomic.Int32
	feed := services.NewFeed(func(ctx context.Context) (int, error) {
		n := int(calls.Add(1))
		started <- n
		if n == 1 {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	})

	firstDone := make(chan bool, 1)
	go func() {
		_, ok := feed.Refresh(context.Background())
		firstDone <- ok
	}()
	<-started

	res, ok := feed.Refresh(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, uint64(2), res.Seq)
	assert.NoError(t, res.Err)

	select {
	case ok := <-firstDone:
		assert.False(t, ok, "superseded fetch must not report")
	case <-time.After(time.Second):
		t.Fatal("first fetch was not canceled")
	}
}

func TestFeed_UncontestedRefreshReportsItsValue(t *testing.T) {
	// Arrange
	feed := services.NewFeed(func(ctx context.Context) (int, error) {
		return 42, nil
	})

	// Act
	first, ok := feed.Refresh(context.Background())
	require.True(t, ok)
	second, ok := feed.Refresh(context.Background())

	// Assert
	require.True(t, ok)
	assert.Equal(t, 42, first.Value)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestFeed_CanceledParentReportsNothing(t *testing.T) {
	feed := services.NewFeed(func(ctx context.Context) (int, error) {
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := feed.Refresh(ctx)
	assert.False(t, ok)
}

func TestFeed_ErrorsAreReportedAndCloseStopsIt(t *testing.T) {
	feed := services.NewFeed(func(ctx context.Context) (int, error) {
		return 0, errors.New("server unavailable")
	})

	res, ok := feed.Refresh(context.Background())
	require.True(t, ok)
	assert.EqualError(t, res.Err, "server unavailable")

	feed.Close()
	_, ok = feed.Refresh(context.Background())
	assert.False(t, ok)
}

func waitForState(t *testing.T, states <-chan services.WatchState, match func(services.WatchState) bool) services.WatchState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatal("watcher never reached the expected state")
			return services.WatchState{}
		}
	}
}

func TestNextAppointmentWatcher(t *testing.T) {
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []entities.IncomingAppointment{
		incoming("later", "2030-03-11", "09:00", entities.AppointmentStatusConfirmed),
		incoming("sooner", "2030-03-10", "13:01:01", entities.AppointmentStatusPending),
	}

	var (
		fetches atomic.Int32
		failing atomic.Bool
	)
	fetch := func(ctx context.Context) ([]entities.IncomingAppointment, error) {
		fetches.Add(1)
		if failing.Load() {
			return nil, errors.New("server unavailable")
		}
		return entries, nil
	}

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	watcher := services.NewNextAppointmentWatcher(fetch, services.WatcherConfig{
		UserID:   "patient-1",
		Location: time.UTC,
		Tick:     10 * time.Millisecond,
		Refresh:  time.Hour,
		Bus:      bus,
		Now:      func() time.Time { return now },
	})

	states := make(chan services.WatchState, 64)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(s services.WatchState) {
			select {
			case states <- s:
			default:
			}
		})
	}()

	loaded := waitForState(t, states, func(s services.WatchState) bool { return s.Loaded })
	require.NotNil(t, loaded.Next)
	assert.Equal(t, "sooner", loaded.Next.Appointment.ID)
	assert.Equal(t, "1h 1m 01s", loaded.Countdown.String())
	assert.NoError(t, loaded.Err)

	// an event for the user triggers a re-fetch; its failure is kept as
	// state while the last good list keeps rendering
	failing.Store(true)
	appt := entities.Appointment{ID: "sooner", PatientID: "patient-1", DoctorID: "doctor-1", Status: entities.AppointmentStatusConfirmed}
	require.NoError(t, bus.Publish(ctx, providers.GetUserChannel("patient-1"), entities.NewAppointmentEvent(appt, entities.AppointmentEventTypeStatusChanged)))

	failed := waitForState(t, states, func(s services.WatchState) bool { return s.Err != nil })
	assert.True(t, failed.Loaded)
	assert.EqualError(t, failed.Err, "server unavailable")
	require.NotNil(t, failed.Next)
	assert.Equal(t, "sooner", failed.Next.Appointment.ID)
	assert.GreaterOrEqual(t, fetches.Load(), int32(2))

	// the next successful refresh clears the error
	failing.Store(false)
	require.NoError(t, bus.Publish(ctx, providers.GetUserChannel("patient-1"), entities.NewAppointmentEvent(appt, entities.AppointmentEventTypeStatusChanged)))
	waitForState(t, states, func(s services.WatchState) bool { return s.Err == nil && s.Loaded })

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNextAppointmentWatcher_NothingUpcoming(t *testing.T) {
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)
	watcher := services.NewNextAppointmentWatcher(func(ctx context.Context) ([]entities.IncomingAppointment, error) {
		return []entities.IncomingAppointment{
			incoming("gone", "2030-03-11", "09:00", entities.AppointmentStatusCancelled),
		}, nil
	}, services.WatcherConfig{Tick: 10 * time.Millisecond, Now: func() time.Time { return now }, Location: time.UTC})

	states := make(chan services.WatchState, 64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = watcher.Run(ctx, func(s services.WatchState) {
			select {
			case states <- s:
			default:
			}
		})
	}()

	s := waitForState(t, states, func(s services.WatchState) bool { return s.Loaded })
	assert.Nil(t, s.Next)
	assert.True(t, s.Countdown.Started())
}

func TestNextAppointmentWatcher_SupersededFetchIsDropped(t *testing.T) {
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)
	stale := []entities.IncomingAppointment{incoming("stale", "2030-03-10", "12:30", entities.AppointmentStatusPending)}
	fresh := []entities.IncomingAppointment{incoming("fresh", "2030-03-10", "15:00", entities.AppointmentStatusConfirmed)}

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	firstReturned := make(chan struct{})
	var calls atomic.Int32
	// the first fetch ignores cancellation and answers late with old data
	fetch := func(ctx context.Context) ([]entities.IncomingAppointment, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-release
			defer close(firstReturned)
			return stale, nil
		}
		return fresh, nil
	}

	bus := events.NewMemoryEventBus()
	defer bus.Close()
	watcher := services.NewNextAppointmentWatcher(fetch, services.WatcherConfig{
		UserID:   "patient-1",
		Location: time.UTC,
		Tick:     5 * time.Millisecond,
		Refresh:  time.Hour,
		Bus:      bus,
		Now:      func() time.Time { return now },
	})

	states := make(chan services.WatchState, 256)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(s services.WatchState) {
			select {
			case states <- s:
			default:
			}
		})
	}()

	select {
	case <-firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch never started")
	}
	appt := entities.Appointment{ID: "fresh", PatientID: "patient-1", DoctorID: "doctor-1", Status: entities.AppointmentStatusConfirmed}
	require.NoError(t, bus.Publish(ctx, providers.GetUserChannel("patient-1"), entities.NewAppointmentEvent(appt, entities.AppointmentEventTypeStatusChanged)))

	loaded := waitForState(t, states, func(s services.WatchState) bool { return s.Loaded })
	require.NotNil(t, loaded.Next)
	assert.Equal(t, "fresh", loaded.Next.Appointment.ID)

	close(release)
	<-firstReturned

	// let several ticks render after the late answer
	settle := time.After(60 * time.Millisecond)
	for waiting := true; waiting; {
		select {
		case s := <-states:
			require.NotNil(t, s.Next)
			assert.Equal(t, "fresh", s.Next.Appointment.ID)
		case <-settle:
			waiting = false
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
