package entities

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a patient's rating of a completed appointment
type Review struct {
	AppointmentID string    `json:"appointmentId"`
	PatientID     string    `json:"patientId,omitempty"`
	DoctorID      string    `json:"doctorId,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	PatientName   string    `json:"patientName,omitempty"`
	DoctorName    string    `json:"doctorName,omitempty"`
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
