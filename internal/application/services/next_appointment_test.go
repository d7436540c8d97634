package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

func incoming(id, date, clock string, status entities.AppointmentStatus) entities.IncomingAppointment {
	return entities.IncomingAppointment{
		Appointment: &entities.Appointment{ID: id, Date: date, Time: clock, Status: status},
		DoctorName:  "Dr. " + id,
	}
}

func TestSelectNext(t *testing.T) {
	loc := time.FixedZone("clinic", 2*60*60)
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, loc)

	t.Run("picks the future confirmed appointment over a past pending one", func(t *testing.T) {
		entries := []entities.IncomingAppointment{
			incoming("past", "2030-03-10", "11:00", entities.AppointmentStatusPending),
			incoming("soon", "2030-03-10", "13:00", entities.AppointmentStatusConfirmed),
		}

		next, ok := services.SelectNext(entries, now, loc)

		require.True(t, ok)
		assert.Equal(t, "soon", next.Appointment.ID)
		assert.Equal(t, "Dr. soon", next.DoctorName)
		assert.Equal(t, now.Add(time.Hour), next.ScheduledAt)
	})

	t.Run("only cancelled future appointments yield nothing", func(t *testing.T) {
		entries := []entities.IncomingAppointment{
			incoming("a", "2030-03-11", "09:00", entities.AppointmentStatusCancelled),
			incoming("b", "2030-03-12", "09:00", entities.AppointmentStatusCancelled),
		}

		next, ok := services.SelectNext(entries, now, loc)

		assert.False(t, ok)
		assert.Nil(t, next)
	})

	t.Run("skips malformed entries", func(t *testing.T) {
		entries := []entities.IncomingAppointment{
			{DoctorName: "Ghost"},
			incoming("bad-date", "10/03/2030", "13:00", entities.AppointmentStatusPending),
			incoming("no-time", "2030-03-10", "", entities.AppointmentStatusPending),
			incoming("ok", "2030-03-11", "08:00", entities.AppointmentStatusPending),
		}

		next, ok := services.SelectNext(entries, now, loc)

		require.True(t, ok)
		assert.Equal(t, "ok", next.Appointment.ID)
	})

	t.Run("an appointment starting exactly now is not upcoming", func(t *testing.T) {
		entries := []entities.IncomingAppointment{
			incoming("now", "2030-03-10", "12:00", entities.AppointmentStatusConfirmed),
		}

		_, ok := services.SelectNext(entries, now, loc)

		assert.False(t, ok)
	})

	t.Run("ties are broken by id", func(t *testing.T) {
		entries := []entities.IncomingAppointment{
			incoming("b", "2030-03-10", "15:00", entities.AppointmentStatusPending),
			incoming("a", "2030-03-10", "15:00", entities.AppointmentStatusPending),
			incoming("c", "2030-03-10", "14:00:00", entities.AppointmentStatusPending),
		}

		next, ok := services.SelectNext(entries, now, loc)
		require.True(t, ok)
		assert.Equal(t, "c", next.Appointment.ID)

		next, ok = services.SelectNext(entries[:2], now, loc)
		require.True(t, ok)
		assert.Equal(t, "a", next.Appointment.ID)
	})

	t.Run("dates are read in the given zone", func(t *testing.T) {
		entries := []entities.IncomingAppointment{
			incoming("x", "2030-03-10", "13:30", entities.AppointmentStatusPending),
		}
		utcNow := time.Date(2030, 3, 10, 11, 0, 0, 0, time.UTC) // 13:00 in clinic time

		next, ok := services.SelectNext(entries, utcNow, loc)

		require.True(t, ok)
		assert.Equal(t, 30*time.Minute, next.ScheduledAt.Sub(utcNow))
	})

	t.Run("falls back to the name on the appointment", func(t *testing.T) {
		entry := incoming("x", "2030-03-11", "09:00", entities.AppointmentStatusPending)
		entry.DoctorName = ""
		entry.Appointment.DoctorName = "Dr. Nested"

		next, ok := services.SelectNext([]entities.IncomingAppointment{entry}, now, loc)

		require.True(t, ok)
		assert.Equal(t, "Dr. Nested", next.DoctorName)
	})
}

func TestCountdown(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		delta   time.Duration
		compact string
		full    string
	}{
		{"hour minute second", 3661 * time.Second, "1h 1m 01s", "0d 1h 1m 01s"},
		{"with days", 2*24*time.Hour + 5*time.Minute + 9*time.Second, "2d 0h 5m 09s", "2d 0h 5m 09s"},
		{"sub-second truncates to starting", 900 * time.Millisecond, services.StartingLabel, services.StartingLabel},
		{"fraction truncates toward zero", 59*time.Second + 999*time.Millisecond, "0h 0m 59s", "0d 0h 0m 59s"},
		{"zero", 0, services.StartingLabel, services.StartingLabel},
		{"past", -time.Minute, services.StartingLabel, services.StartingLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := services.CountdownTo(now.Add(tt.delta), now)
			assert.Equal(t, tt.compact, c.String())
			assert.Equal(t, tt.full, c.Full())
		})
	}
}
