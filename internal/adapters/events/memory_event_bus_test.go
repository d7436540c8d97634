package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
)

func TestMemoryEventBus_DeliversToChannelSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, err := bus.Subscribe(ctx, providers.GetUserChannel("p1"))
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, providers.GetUserChannel("p2"))
	require.NoError(t, err)

	appt := entities.Appointment{ID: "a1", PatientID: "p1", DoctorID: "d1", Status: entities.AppointmentStatusCancelled}
	for _, ch := range providers.ChannelsFor(appt) {
		require.NoError(t, bus.Publish(ctx, ch, entities.NewAppointmentEvent(appt, entities.AppointmentEventTypeStatusChanged)))
	}

	select {
	case ev := <-mine:
		assert.Equal(t, "a1", ev.AppointmentID)
		assert.Equal(t, entities.AppointmentStatusCancelled, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}

	select {
	case ev := <-other:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestMemoryEventBus_ClosesOnContextDone(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, "appointments:user:p1")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestMemoryEventBus_RejectsAfterClose(t *testing.T) {
	bus := NewMemoryEventBus()
	require.NoError(t, bus.Close())

	_, err := bus.Subscribe(context.Background(), "x")
	assert.Error(t, err)
	assert.Error(t, bus.Publish(context.Background(), "x", &entities.AppointmentEvent{}))
}
