package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// Mocks

type MockAppointmentAPI struct {
	mock.Mock
}

func (m *MockAppointmentAPI) ListForDoctor(ctx context.Context, doctorID string) ([]entities.Appointment, error) {
	args := m.Called(ctx, doctorID)
	return appointmentsArg(args), args.Error(1)
}

func (m *MockAppointmentAPI) ListForPatient(ctx context.Context, patientID string) ([]entities.Appointment, error) {
	args := m.Called(ctx, patientID)
	return appointmentsArg(args), args.Error(1)
}

func (m *MockAppointmentAPI) ListIncoming(ctx context.Context, userID string) ([]entities.IncomingAppointment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.IncomingAppointment), args.Error(1)
}

func (m *MockAppointmentAPI) History(ctx context.Context) ([]entities.Appointment, error) {
	args := m.Called(ctx)
	return appointmentsArg(args), args.Error(1)
}

func (m *MockAppointmentAPI) LastCompleted(ctx context.Context) (*entities.Appointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentAPI) Details(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentAPI) Create(ctx context.Context, req providers.CreateAppointmentRequest) (*entities.Appointment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentAPI) Transition(ctx context.Context, id string, action entities.TransitionAction) error {
	return m.Called(ctx, id, action).Error(0)
}

func appointmentsArg(args mock.Arguments) []entities.Appointment {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entities.Appointment)
}

type MockDoctorAPI struct {
	mock.Mock
}

func (m *MockDoctorAPI) ListDoctors(ctx context.Context) ([]entities.Doctor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Doctor), args.Error(1)
}

func (m *MockDoctorAPI) GetDoctor(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

func (m *MockDoctorAPI) TopDoctors(ctx context.Context) ([]entities.Doctor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Doctor), args.Error(1)
}

type MockReviewAPI struct {
	mock.Mock
}

func (m *MockReviewAPI) SubmitReview(ctx context.Context, req providers.SubmitReviewRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockReviewAPI) ListDoctorReviews(ctx context.Context, doctorID string) ([]entities.Review, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Review), args.Error(1)
}

// signedIn is an AuthProvider with a fixed user; a nil user means signed out
type signedIn struct {
	user *entities.User
}

func (s signedIn) Token(context.Context) (string, error) {
	if s.user == nil {
		return "", nil
	}
	return "token-" + s.user.ID, nil
}

func (s signedIn) CurrentUser(context.Context) (*entities.User, error) {
	if s.user == nil {
		return nil, apperrors.NewUnauthorizedError("not signed in")
	}
	return s.user, nil
}

func (s signedIn) Login(context.Context, string, string) (*entities.User, error) {
	return s.user, nil
}

func (s signedIn) Register(context.Context, providers.RegisterRequest) (*entities.User, error) {
	return s.user, nil
}

func (s signedIn) Logout(context.Context) error { return nil }

// bearer is a fixed token source
type bearer string

func (b bearer) Token(context.Context) (string, error) { return string(b), nil }

var (
	patientUser = &entities.User{ID: "patient-1", FullName: "Pat Ient", Role: entities.RolePatient}
	doctorUser  = &entities.User{ID: "doctor-1", FullName: "Dr. Who", Role: entities.RoleDoctor}
)
