package bookingapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

const appointmentsBase = "/api/appointments"

// ListForDoctor returns every appointment of a doctor
func (c *HTTPClient) ListForDoctor(ctx context.Context, doctorID string) ([]entities.Appointment, error) {
	return c.listAppointments(ctx, "/doctor/{id}", "/doctor/", doctorID)
}

// ListForPatient returns every appointment of a patient
func (c *HTTPClient) ListForPatient(ctx context.Context, patientID string) ([]entities.Appointment, error) {
	return c.listAppointments(ctx, "/patient/{id}", "/patient/", patientID)
}

func (c *HTTPClient) listAppointments(ctx context.Context, route, prefix, id string) ([]entities.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	var out []appointmentDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  appointmentsBase + route,
		path:   appointmentsBase + prefix + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return toAppointments(out), nil
}

// ListIncoming returns the user's incoming appointments with doctor names
func (c *HTTPClient) ListIncoming(ctx context.Context, userID string) ([]entities.IncomingAppointment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	var out []incomingDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  appointmentsBase + "/incoming/{id}",
		path:   appointmentsBase + "/incoming/" + url.PathEscape(userID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return toIncoming(out), nil
}

// History returns the current user's past appointments
func (c *HTTPClient) History(ctx context.Context) ([]entities.Appointment, error) {
	var out []appointmentDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  appointmentsBase + "/history",
		path:   appointmentsBase + "/history",
	}, &out)
	if err != nil {
		return nil, err
	}
	return toAppointments(out), nil
}

// LastCompleted returns nil without error when the backend answers 404.
func (c *HTTPClient) LastCompleted(ctx context.Context) (*entities.Appointment, error) {
	var out appointmentDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  appointmentsBase + "/last-completed",
		path:   appointmentsBase + "/last-completed",
	}, &out)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	appt, err := out.toEntity()
	if err != nil {
		return nil, apperrors.NewInternalError("malformed appointment", err)
	}
	return &appt, nil
}

// Details returns one appointment with its doctor name
func (c *HTTPClient) Details(ctx context.Context, id string) (*entities.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("appointment id is required")
	}
	var out appointmentDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  appointmentsBase + "/details/{id}",
		path:   appointmentsBase + "/details/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	appt, err := out.toEntity()
	if err != nil {
		return nil, apperrors.NewInternalError("malformed appointment", err)
	}
	return &appt, nil
}

// Create books a new appointment and returns it as stored
func (c *HTTPClient) Create(ctx context.Context, req providers.CreateAppointmentRequest) (*entities.Appointment, error) {
	var out appointmentDTO
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  appointmentsBase,
		path:   appointmentsBase,
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	appt, err := out.toEntity()
	if err != nil {
		return nil, apperrors.NewInternalError("malformed appointment", err)
	}
	return &appt, nil
}

// Transition issues PUT /api/appointments/{id}/{action}
func (c *HTTPClient) Transition(ctx context.Context, id string, action entities.TransitionAction) error {
	if _, ok := entities.LookupTransition(action); !ok {
		return apperrors.NewValidationError("unknown action " + string(action))
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("appointment id is required")
	}
	return c.doJSON(ctx, request{
		method: http.MethodPut,
		route:  appointmentsBase + "/{id}/" + string(action),
		path:   appointmentsBase + "/" + url.PathEscape(id) + "/" + string(action),
	}, nil)
}
