package providers

import (
	"context"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// DoctorAPI reads the doctor directory
type DoctorAPI interface {
	ListDoctors(ctx context.Context) ([]entities.Doctor, error)
	GetDoctor(ctx context.Context, id string) (*entities.Doctor, error)
	TopDoctors(ctx context.Context) ([]entities.Doctor, error)
}

// ReviewAPI reads and writes appointment reviews
type ReviewAPI interface {
	SubmitReview(ctx context.Context, req SubmitReviewRequest) error
	ListDoctorReviews(ctx context.Context, doctorID string) ([]entities.Review, error)
}

// SubmitReviewRequest is the review payload
type SubmitReviewRequest struct {
	AppointmentID string `json:"appointmentId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}
