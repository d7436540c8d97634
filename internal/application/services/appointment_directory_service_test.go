package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/adapters/loaders"
	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

func TestAppointmentDirectoryService_Mine(t *testing.T) {
	t.Run("doctor sees appointments booked with them", func(t *testing.T) {
		api := new(MockAppointmentAPI)
		api.On("ListForDoctor", mock.Anything, doctorUser.ID).Return([]entities.Appointment{{ID: "a1"}}, nil).Once()
		service := services.NewAppointmentDirectoryService(api, signedIn{user: doctorUser}, nil)

		appts, role, err := service.Mine(context.Background())

		require.NoError(t, err)
		assert.Equal(t, entities.RoleDoctor, role)
		assert.Len(t, appts, 1)
		api.AssertNotCalled(t, "ListForPatient", mock.Anything, mock.Anything)
	})

	t.Run("patient lists get doctor names", func(t *testing.T) {
		api := new(MockAppointmentAPI)
		api.On("ListForPatient", mock.Anything, patientUser.ID).Return([]entities.Appointment{
			{ID: "a1", DoctorID: "d1"},
			{ID: "a2", DoctorID: "d1"},
			{ID: "a3", DoctorID: "d2", DoctorName: "Dr. Known"},
		}, nil).Once()
		doctors := new(MockDoctorAPI)
		doctors.On("GetDoctor", mock.Anything, "d1").Return(&entities.Doctor{ID: "d1", FullName: "Dr. One"}, nil).Once()

		service := services.NewAppointmentDirectoryService(api, signedIn{user: patientUser}, func() services.DoctorNameResolver {
			return loaders.NewDoctorLoader(doctors)
		})

		appts, _, err := service.Mine(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "Dr. One", appts[0].DoctorName)
		assert.Equal(t, "Dr. One", appts[1].DoctorName)
		assert.Equal(t, "Dr. Known", appts[2].DoctorName)
		doctors.AssertExpectations(t)
	})

	t.Run("signed out", func(t *testing.T) {
		service := services.NewAppointmentDirectoryService(new(MockAppointmentAPI), signedIn{}, nil)

		_, _, err := service.Mine(context.Background())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestAppointmentDirectoryService_Incoming(t *testing.T) {
	api := new(MockAppointmentAPI)
	api.On("ListIncoming", mock.Anything, patientUser.ID).Return([]entities.IncomingAppointment{{DoctorName: "x"}}, nil).Once()
	service := services.NewAppointmentDirectoryService(api, signedIn{user: patientUser}, nil)

	got, err := service.Incoming(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
	api.AssertExpectations(t)
}

func TestAppointmentDirectoryService_Details(t *testing.T) {
	api := new(MockAppointmentAPI)
	service := services.NewAppointmentDirectoryService(api, signedIn{user: patientUser}, nil)

	_, err := service.Details(context.Background(), "  ")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	api.AssertNotCalled(t, "Details", mock.Anything, mock.Anything)
}
