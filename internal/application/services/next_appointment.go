package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// StartingLabel is shown once the countdown has run out
const StartingLabel = "Starting..."

// UpcomingAppointment is the appointment picked by SelectNext
type UpcomingAppointment struct {
	Appointment entities.Appointment
	DoctorName  string
	ScheduledAt time.Time
}

// SelectNext picks the soonest appointment that starts strictly after now.
// Entries without an appointment or with an unreadable date or time are
// skipped, as are cancelled ones. Ties on start time fall back to id order.
func SelectNext(entries []entities.IncomingAppointment, now time.Time, loc *time.Location) (*UpcomingAppointment, bool) {
	candidates := make([]UpcomingAppointment, 0, len(entries))
	for _, entry := range entries {
		if entry.Appointment == nil {
			continue
		}
		appt := *entry.Appointment
		if appt.Status == entities.AppointmentStatusCancelled {
			continue
		}
		at, err := appt.ScheduledAt(loc)
		if err != nil || !at.After(now) {
			continue
		}
		name := entry.DoctorName
		if name == "" {
			name = appt.DoctorName
		}
		candidates = append(candidates, UpcomingAppointment{Appointment: appt, DoctorName: name, ScheduledAt: at})
	}
	if len(candidates) == 0 {
		return nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.ScheduledAt.Equal(b.ScheduledAt) {
			return a.ScheduledAt.Before(b.ScheduledAt)
		}
		return a.Appointment.ID < b.Appointment.ID
	})
	next := candidates[0]
	return &next, true
}

// Countdown is a whole-second time remaining
type Countdown struct {
	Seconds int64
}

// CountdownTo measures from now to target, truncating toward zero
func CountdownTo(target, now time.Time) Countdown {
	return Countdown{Seconds: int64(target.Sub(now) / time.Second)}
}

// Started reports whether the countdown has run out
func (c Countdown) Started() bool {
	return c.Seconds <= 0
}

func (c Countdown) parts() (days, hours, minutes, seconds int64) {
	s := c.Seconds
	return s / 86400, s % 86400 / 3600, s % 3600 / 60, s % 60
}

// String renders the compact form used by the live display, dropping the
// day component when it is zero.
func (c Countdown) String() string {
	if c.Started() {
		return StartingLabel
	}
	d, h, m, s := c.parts()
	if d == 0 {
		return fmt.Sprintf("%dh %dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%dd %dh %dm %02ds", d, h, m, s)
}

// Full always includes the day component
func (c Countdown) Full() string {
	if c.Started() {
		return StartingLabel
	}
	d, h, m, s := c.parts()
	return fmt.Sprintf("%dd %dh %dm %02ds", d, h, m, s)
}
