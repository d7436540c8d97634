package entities

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// AllAppointmentStatuses lists every status in lifecycle order.
var AllAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusRejected,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// ParseAppointmentStatus normalizes a status received from the wire.
// "Pending", "pending" and " PENDING " all map to AppointmentStatusPending.
func ParseAppointmentStatus(raw string) (AppointmentStatus, error) {
	candidate := AppointmentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range AllAppointmentStatuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", raw)
}

// IsTerminal reports whether no transition leaves this status.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusRejected, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

const (
	// AppointmentDateLayout is the wire layout of Appointment.Date
	AppointmentDateLayout = "2006-01-02"
	// AppointmentTimeLayout is the wire layout of Appointment.Time
	AppointmentTimeLayout = "15:04"
)

// Appointment represents a booked visit between a patient and a doctor.
// Date and Time are wall-clock values without a zone.
type Appointment struct {
	ID         string            `json:"id"`
	PatientID  string            `json:"patientId"`
	DoctorID   string            `json:"doctorId"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Status     AppointmentStatus `json:"status"`
	DoctorName string            `json:"doctorName,omitempty"`
}

// ScheduledAt combines Date and Time into an instant in loc. Times with a
// seconds component are accepted as well.
func (a *Appointment) ScheduledAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	date := strings.TrimSpace(a.Date)
	clock := strings.TrimSpace(a.Time)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("appointment %s has no date or time", a.ID)
	}

	value := date + "T" + clock
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("appointment %s has unparseable date/time %q", a.ID, value)
}

// WithStatus returns a copy of the appointment carrying status.
func (a Appointment) WithStatus(status AppointmentStatus) Appointment {
	a.Status = status
	return a
}

// IncomingAppointment is one entry of a user's incoming list: the
// appointment plus the doctor's display name. Appointment is nil when the
// backend returned a malformed entry.
type IncomingAppointment struct {
	Appointment *Appointment `json:"appointment"`
	DoctorName  string       `json:"doctorName"`
}
