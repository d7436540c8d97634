package providers

import (
	"context"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// AppointmentAPI is the backend's appointment directory. Every call is
// scoped to the session of the injected AuthProvider.
type AppointmentAPI interface {
	// ListForDoctor returns every appointment of a doctor
	ListForDoctor(ctx context.Context, doctorID string) ([]entities.Appointment, error)

	// ListForPatient returns every appointment of a patient
	ListForPatient(ctx context.Context, patientID string) ([]entities.Appointment, error)

	// ListIncoming returns the user's incoming appointments with doctor names
	ListIncoming(ctx context.Context, userID string) ([]entities.IncomingAppointment, error)

	// History returns the current user's past appointments
	History(ctx context.Context) ([]entities.Appointment, error)

	// LastCompleted returns the current patient's most recent completed
	// appointment, or nil when there is none
	LastCompleted(ctx context.Context) (*entities.Appointment, error)

	// Details returns one appointment with its doctor name
	Details(ctx context.Context, id string) (*entities.Appointment, error)

	// Create books a new appointment and returns it as stored
	Create(ctx context.Context, req CreateAppointmentRequest) (*entities.Appointment, error)

	// Transition issues the state-changing request for action
	Transition(ctx context.Context, id string, action entities.TransitionAction) error
}

// CreateAppointmentRequest is the booking payload
type CreateAppointmentRequest struct {
	PatientID string                     `json:"patientId"`
	DoctorID  string                     `json:"doctorId"`
	Date      string                     `json:"date"`
	Time      string                     `json:"time"`
	Status    entities.AppointmentStatus `json:"status"`
}
