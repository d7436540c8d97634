package services

import (
	"context"
	"strings"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// DoctorNameResolver fills in missing doctor names on a list
type DoctorNameResolver interface {
	FillDoctorNames(ctx context.Context, appts []entities.Appointment) []entities.Appointment
}

// AppointmentDirectoryService reads the signed-in user's appointment lists
type AppointmentDirectoryService struct {
	api   providers.AppointmentAPI
	auth  providers.AuthProvider
	names func() DoctorNameResolver
}

// NewAppointmentDirectoryService creates a new directory service. names, when
// non-nil, is called once per list fetch to get a fresh resolver.
func NewAppointmentDirectoryService(api providers.AppointmentAPI, auth providers.AuthProvider, names func() DoctorNameResolver) *AppointmentDirectoryService {
	return &AppointmentDirectoryService{api: api, auth: auth, names: names}
}

// Mine returns the user's appointments: a doctor sees the ones booked with
// them, a patient the ones they booked.
func (s *AppointmentDirectoryService) Mine(ctx context.Context) ([]entities.Appointment, entities.Role, error) {
	ctx, span := observability.StartSpan(ctx, "AppointmentDirectoryService.Mine")
	defer span.End()

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, "", err
	}

	var appts []entities.Appointment
	switch user.Role {
	case entities.RoleDoctor:
		appts, err = s.api.ListForDoctor(ctx, user.ID)
	case entities.RolePatient:
		appts, err = s.api.ListForPatient(ctx, user.ID)
		if err == nil {
			appts = s.resolveNames(ctx, appts)
		}
	default:
		return nil, user.Role, apperrors.NewValidationError("appointments are only listed for patients and doctors")
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, user.Role, err
	}
	return appts, user.Role, nil
}

// Incoming returns the user's incoming list, as consumed by the selector
func (s *AppointmentDirectoryService) Incoming(ctx context.Context) ([]entities.IncomingAppointment, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.ListIncoming(ctx, user.ID)
}

// History returns the user's past appointments
func (s *AppointmentDirectoryService) History(ctx context.Context) ([]entities.Appointment, error) {
	appts, err := s.api.History(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveNames(ctx, appts), nil
}

// LastCompleted returns the most recent completed appointment, or nil
func (s *AppointmentDirectoryService) LastCompleted(ctx context.Context) (*entities.Appointment, error) {
	return s.api.LastCompleted(ctx)
}

// Details returns one appointment
func (s *AppointmentDirectoryService) Details(ctx context.Context, id string) (*entities.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("appointment id is required")
	}
	return s.api.Details(ctx, id)
}

func (s *AppointmentDirectoryService) resolveNames(ctx context.Context, appts []entities.Appointment) []entities.Appointment {
	if s.names == nil {
		return appts
	}
	return s.names().FillDoctorNames(ctx, appts)
}
