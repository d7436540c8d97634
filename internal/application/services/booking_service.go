package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// BookingRequest is what the booking form collects. At carries both the
// date and the time; a zero At means none was chosen.
type BookingRequest struct {
	DoctorID string
	At       time.Time
}

// BookingService creates appointment requests for the signed-in patient
type BookingService struct {
	api  providers.AppointmentAPI
	auth providers.AuthProvider
	bus  providers.EventBus
	loc  *time.Location
	now  func() time.Time
}

// BookingOption configures a BookingService
type BookingOption func(*BookingService)

// WithBookingEventBus announces created appointments on bus
func WithBookingEventBus(bus providers.EventBus) BookingOption {
	return func(s *BookingService) { s.bus = bus }
}

// WithBookingClock overrides the clock used for the future-date check
func WithBookingClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

// NewBookingService creates a new booking service. Dates and times are
// rendered in loc; nil means the process's local zone.
func NewBookingService(api providers.AppointmentAPI, auth providers.AuthProvider, loc *time.Location, opts ...BookingOption) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	s := &BookingService{api: api, auth: auth, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book sends a PENDING appointment request. Every precondition is checked
// before any request goes out; on failure nothing is changed.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*entities.Appointment, error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.Book")
	defer span.End()

	doctorID := strings.TrimSpace(req.DoctorID)
	if doctorID == "" {
		return nil, apperrors.NewValidationError("select a doctor first")
	}
	if req.At.IsZero() {
		return nil, apperrors.NewValidationError("select a date and time first")
	}
	at := req.At.In(s.loc)
	if !at.After(s.now()) {
		return nil, apperrors.NewValidationError("appointment time must be in the future")
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
			return nil, apperrors.NewValidationError("sign in as a patient to book")
		}
		return nil, err
	}
	if user.Role != entities.RolePatient {
		return nil, apperrors.NewValidationError("only patients can book appointments")
	}

	created, err := s.api.Create(ctx, providers.CreateAppointmentRequest{
		PatientID: user.ID,
		DoctorID:  doctorID,
		Date:      at.Format(entities.AppointmentDateLayout),
		Time:      at.Format(entities.AppointmentTimeLayout),
		Status:    entities.AppointmentStatusPending,
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", created.ID).
		Str("doctor_id", doctorID).
		Msg("appointment requested")

	if s.bus != nil {
		event := entities.NewAppointmentEvent(*created, entities.AppointmentEventTypeCreated)
		for _, channel := range providers.ChannelsFor(*created) {
			if err := s.bus.Publish(ctx, channel, event); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish appointment event")
			}
		}
	}
	return created, nil
}
