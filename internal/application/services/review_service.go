package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// ReviewService lets a patient rate a completed visit
type ReviewService struct {
	reviews      providers.ReviewAPI
	appointments providers.AppointmentAPI
	auth         providers.AuthProvider
}

// NewReviewService creates a new review service
func NewReviewService(reviews providers.ReviewAPI, appointments providers.AppointmentAPI, auth providers.AuthProvider) *ReviewService {
	return &ReviewService{reviews: reviews, appointments: appointments, auth: auth}
}

// Submit posts a review for appt
func (s *ReviewService) Submit(ctx context.Context, appt entities.Appointment, rating int, comment string) error {
	if !entities.ValidRating(rating) {
		return apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d", entities.MinRating, entities.MaxRating))
	}
	if appt.Status != entities.AppointmentStatusCompleted {
		return apperrors.NewValidationError("only completed appointments can be reviewed")
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user.Role != entities.RolePatient || (appt.PatientID != "" && appt.PatientID != user.ID) {
		return apperrors.NewValidationError("you can only review your own appointments")
	}

	return s.reviews.SubmitReview(ctx, providers.SubmitReviewRequest{
		AppointmentID: appt.ID,
		Rating:        rating,
		Comment:       strings.TrimSpace(comment),
	})
}

// SubmitForID looks the appointment up first, then submits
func (s *ReviewService) SubmitForID(ctx context.Context, appointmentID string, rating int, comment string) error {
	if !entities.ValidRating(rating) {
		return apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d", entities.MinRating, entities.MaxRating))
	}
	appt, err := s.appointments.Details(ctx, appointmentID)
	if err != nil {
		return err
	}
	return s.Submit(ctx, *appt, rating, comment)
}

// ListForDoctor returns a doctor's reviews
func (s *ReviewService) ListForDoctor(ctx context.Context, doctorID string) ([]entities.Review, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, apperrors.NewValidationError("doctor id is required")
	}
	return s.reviews.ListDoctorReviews(ctx, doctorID)
}
