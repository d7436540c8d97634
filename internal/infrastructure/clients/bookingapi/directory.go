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

// ListDoctors returns the full directory in server order
func (c *HTTPClient) ListDoctors(ctx context.Context) ([]entities.Doctor, error) {
	var out []doctorDTO
	if err := c.doJSON(ctx, request{method: http.MethodGet, route: "/api/doctor/all", path: "/api/doctor/all"}, &out); err != nil {
		return nil, err
	}
	return toDoctors(out), nil
}

// GetDoctor returns one doctor profile
func (c *HTTPClient) GetDoctor(ctx context.Context, id string) (*entities.Doctor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("doctor id is required")
	}
	var out doctorDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  "/api/doctor/{id}",
		path:   "/api/doctor/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	d := out.toEntity()
	return &d, nil
}

// TopDoctors returns the three best rated doctors
func (c *HTTPClient) TopDoctors(ctx context.Context) ([]entities.Doctor, error) {
	var out []doctorDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  "/api/doctor/get-top-3-doctors",
		path:   "/api/doctor/get-top-3-doctors",
	}, &out)
	if err != nil {
		return nil, err
	}
	return toDoctors(out), nil
}

// SubmitReview posts a review for a completed appointment
func (c *HTTPClient) SubmitReview(ctx context.Context, req providers.SubmitReviewRequest) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/api/review",
		path:   "/api/review",
		body:   req,
	}, nil)
}

// ListDoctorReviews returns the reviews left for a doctor
func (c *HTTPClient) ListDoctorReviews(ctx context.Context, doctorID string) ([]entities.Review, error) {
	if strings.TrimSpace(doctorID) == "" {
		return nil, apperrors.NewValidationError("doctor id is required")
	}
	var out []reviewDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  "/api/review/doctor/{id}",
		path:   "/api/review/doctor/" + url.PathEscape(doctorID),
	}, &out)
	if err != nil {
		return nil, err
	}
	reviews := make([]entities.Review, len(out))
	for i, r := range out {
		reviews[i] = r.toEntity()
	}
	return reviews, nil
}
