package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/adapters/events"
	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/clients/bookingapi"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/clients/bookingapi/bookingapitest"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

func TestBookingService_Book(t *testing.T) {
	loc := time.FixedZone("clinic", -5*60*60)
	now := time.Date(2030, 4, 1, 8, 0, 0, 0, loc)
	clock := services.WithBookingClock(func() time.Time { return now })

	t.Run("rejects incomplete requests without a call", func(t *testing.T) {
		tests := []struct {
			name string
			auth signedIn
			req  services.BookingRequest
		}{
			{"no doctor", signedIn{user: patientUser}, services.BookingRequest{At: now.Add(time.Hour)}},
			{"no date or time", signedIn{user: patientUser}, services.BookingRequest{DoctorID: "doctor-1"}},
			{"signed out", signedIn{}, services.BookingRequest{DoctorID: "doctor-1", At: now.Add(time.Hour)}},
			{"doctor session", signedIn{user: doctorUser}, services.BookingRequest{DoctorID: "doctor-1", At: now.Add(time.Hour)}},
			{"in the past", signedIn{user: patientUser}, services.BookingRequest{DoctorID: "doctor-1", At: now.Add(-time.Minute)}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				api := new(MockAppointmentAPI)
				service := services.NewBookingService(api, tt.auth, loc, clock)

				created, err := service.Book(context.Background(), tt.req)

				assert.Nil(t, created)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)
				api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("a past time is refused before looking up the user", func(t *testing.T) {
		// Arrange
		api := new(MockAppointmentAPI)
		auth := &countingAuth{signedIn: signedIn{user: patientUser}}
		service := services.NewBookingService(api, auth, loc, clock)

		// Act
		_, err := service.Book(context.Background(), services.BookingRequest{DoctorID: "doctor-1", At: now})

		// Assert
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)
		assert.Equal(t, "appointment time must be in the future", apperrors.UserMessage(err))
		assert.Zero(t, auth.lookups)
		api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("renders date and time in the configured zone", func(t *testing.T) {
		// Arrange
		api := new(MockAppointmentAPI)
		at := time.Date(2030, 4, 2, 1, 30, 0, 0, time.UTC) // 20:30 the day before in clinic time
		want := providers.CreateAppointmentRequest{
			PatientID: patientUser.ID,
			DoctorID:  "doctor-1",
			Date:      "2030-04-01",
			Time:      "20:30",
			Status:    entities.AppointmentStatusPending,
		}
		api.On("Create", mock.Anything, want).
			Return(&entities.Appointment{ID: "new", PatientID: patientUser.ID, DoctorID: "doctor-1", Date: want.Date, Time: want.Time, Status: entities.AppointmentStatusPending}, nil).Once()
		service := services.NewBookingService(api, signedIn{user: patientUser}, loc, clock)

		// Act
		created, err := service.Book(context.Background(), services.BookingRequest{DoctorID: " doctor-1 ", At: at})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "new", created.ID)
		api.AssertExpectations(t)
	})

	t.Run("backend failure is returned", func(t *testing.T) {
		api := new(MockAppointmentAPI)
		api.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.NewServerError(http.StatusNotFound, "Doctor not found")).Once()
		service := services.NewBookingService(api, signedIn{user: patientUser}, loc, clock)

		_, err := service.Book(context.Background(), services.BookingRequest{DoctorID: "ghost", At: now.Add(24 * time.Hour)})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestBookingService_AgainstBackend(t *testing.T) {
	// Arrange
	server := bookingapitest.NewServer()
	defer server.Close()
	patient := server.AddUser(entities.User{FullName: "Pat", Email: "pat@example.com", Role: entities.RolePatient}, "secret")
	server.AddDoctor(entities.Doctor{ID: "doc-9", FullName: "Dr. Nine"})

	client := bookingapi.NewClient(server.URL).WithTokenSource(bearer(server.IssueToken(patient.ID)))
	bus := events.NewMemoryEventBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	doctorEvents, err := bus.Subscribe(ctx, providers.GetUserChannel("doc-9"))
	require.NoError(t, err)

	service := services.NewBookingService(client, signedIn{user: &patient}, time.UTC, services.WithBookingEventBus(bus))
	board := services.NewAppointmentBoard(client, entities.RolePatient)

	// Act
	created, err := service.Book(ctx, services.BookingRequest{DoctorID: "doc-9", At: time.Now().Add(48 * time.Hour)})
	require.NoError(t, err)
	board.Insert(*created)

	// Assert
	assert.Equal(t, entities.AppointmentStatusPending, created.Status)
	assert.Equal(t, "Dr. Nine", created.DoctorName)
	_, ok := board.Get(created.ID)
	assert.True(t, ok)

	select {
	case ev := <-doctorEvents:
		assert.Equal(t, entities.AppointmentEventTypeCreated, ev.EventType)
		assert.Equal(t, created.ID, ev.AppointmentID)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	// the patient may cancel what they booked
	_, err = board.Apply(ctx, created.ID, entities.ActionCancel)
	require.NoError(t, err)
	stored, _ := server.Appointment(created.ID)
	assert.Equal(t, entities.AppointmentStatusCancelled, stored.Status)
}

// countingAuth counts CurrentUser lookups, each of which may cost a request
type countingAuth struct {
	signedIn
	lookups int
}

func (a *countingAuth) CurrentUser(ctx context.Context) (*entities.User, error) {
	a.lookups++
	return a.signedIn.CurrentUser(ctx)
}
