package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/adapters/cache"
	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

func directoryDoctors() []entities.Doctor {
	return []entities.Doctor{
		{ID: "d1", FullName: "Dr. Ada", Specialty: "Cardiology", City: "Lagos", PriceMinCents: 5000, PriceMaxCents: 9000, Verified: true, RatingAvg: 4.2},
		{ID: "d2", FullName: "Dr. Ben", Specialty: "Dermatology", City: "Abuja", PriceMinCents: 3000, PriceMaxCents: 4000, RatingAvg: 4.9},
		{ID: "d3", FullName: "Dr. Cy", Specialty: "cardiology", City: "Lagos Island", PriceMinCents: 8000, PriceMaxCents: 12000, Verified: true, RatingAvg: 3.1},
	}
}

func TestDoctorDirectoryService_Search(t *testing.T) {
	t.Run("filters and sorts locally", func(t *testing.T) {
		api := new(MockDoctorAPI)
		api.On("ListDoctors", mock.Anything).Return(directoryDoctors(), nil)
		service := services.NewDoctorDirectoryService(api)

		got, err := service.Search(context.Background(), entities.DoctorFilter{
			Specialty:    "CARDIO",
			City:         "lagos",
			VerifiedOnly: true,
			Sort:         entities.DoctorSortRating,
		})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "d1", got[0].ID)
		assert.Equal(t, "d3", got[1].ID)
	})

	t.Run("rejects an inverted price range", func(t *testing.T) {
		api := new(MockDoctorAPI)
		service := services.NewDoctorDirectoryService(api)
		minPrice, maxPrice := int64(100), int64(50)

		_, err := service.Search(context.Background(), entities.DoctorFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		api.AssertNotCalled(t, "ListDoctors", mock.Anything)
	})

	t.Run("serves repeat searches from the cache", func(t *testing.T) {
		api := new(MockDoctorAPI)
		api.On("ListDoctors", mock.Anything).Return(directoryDoctors(), nil).Once()
		service := services.NewDoctorDirectoryService(api, services.WithDirectoryCache(cache.NewMemoryCache(), time.Minute))

		first, err := service.Search(context.Background(), entities.DoctorFilter{})
		require.NoError(t, err)
		second, err := service.Search(context.Background(), entities.DoctorFilter{Sort: entities.DoctorSortPriceAsc})
		require.NoError(t, err)

		assert.Len(t, first, 3)
		assert.Equal(t, "d2", second[0].ID)
		api.AssertExpectations(t)

		require.NoError(t, service.Invalidate(context.Background()))
		api.On("ListDoctors", mock.Anything).Return(directoryDoctors()[:1], nil).Once()
		third, err := service.Search(context.Background(), entities.DoctorFilter{})
		require.NoError(t, err)
		assert.Len(t, third, 1)
	})

	t.Run("backend errors are not cached", func(t *testing.T) {
		api := new(MockDoctorAPI)
		api.On("ListDoctors", mock.Anything).Return(nil, errors.New("boom")).Once()
		api.On("ListDoctors", mock.Anything).Return(directoryDoctors(), nil).Once()
		service := services.NewDoctorDirectoryService(api, services.WithDirectoryCache(cache.NewMemoryCache(), time.Minute))

		_, err := service.Search(context.Background(), entities.DoctorFilter{})
		require.Error(t, err)
		got, err := service.Search(context.Background(), entities.DoctorFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestDoctorDirectoryService_TopAndGet(t *testing.T) {
	api := new(MockDoctorAPI)
	api.On("TopDoctors", mock.Anything).Return(directoryDoctors()[:2], nil).Once()
	api.On("GetDoctor", mock.Anything, "d2").Return(&directoryDoctors()[1], nil).Once()
	service := services.NewDoctorDirectoryService(api)

	top, err := service.Top(context.Background())
	require.NoError(t, err)
	assert.Len(t, top, 2)

	one, err := service.Get(context.Background(), "d2")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ben", one.FullName)

	_, err = service.Get(context.Background(), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	api.AssertExpectations(t)
}
