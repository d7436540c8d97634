package entities

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentEventType represents the type of appointment event
type AppointmentEventType string

const (
	AppointmentEventTypeCreated       AppointmentEventType = "appointment_created"
	AppointmentEventTypeStatusChanged AppointmentEventType = "appointment_status_changed"
)

// AppointmentEvent tells other views of the same users that an appointment
// changed and their lists are stale.
type AppointmentEvent struct {
	ID            string               `json:"id"`
	AppointmentID string               `json:"appointment_id"`
	PatientID     string               `json:"patient_id"`
	DoctorID      string               `json:"doctor_id"`
	EventType     AppointmentEventType `json:"event_type"`
	Status        AppointmentStatus    `json:"status"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewAppointmentEvent creates a new appointment event
func NewAppointmentEvent(appt Appointment, eventType AppointmentEventType) *AppointmentEvent {
	return &AppointmentEvent{
		ID:            uuid.NewString(),
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		EventType:     eventType,
		Status:        appt.Status,
		Timestamp:     time.Now(),
	}
}

// Involves reports whether the event concerns userID as patient or doctor.
func (e *AppointmentEvent) Involves(userID string) bool {
	return userID != "" && (e.PatientID == userID || e.DoctorID == userID)
}
