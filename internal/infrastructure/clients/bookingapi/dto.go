package bookingapi

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// Wire shapes of the backend. They are normalized into entities here and
// nowhere else.

type appointmentDTO struct {
	ID         string `json:"id"`
	DoctorID   string `json:"doctorId"`
	PatientID  string `json:"patientId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	DoctorName string `json:"doctorName"`
}

func (d appointmentDTO) toEntity() (entities.Appointment, error) {
	status, err := entities.ParseAppointmentStatus(d.Status)
	if err != nil {
		return entities.Appointment{}, err
	}
	return entities.Appointment{
		ID:         d.ID,
		PatientID:  d.PatientID,
		DoctorID:   d.DoctorID,
		Date:       d.Date,
		Time:       trimSeconds(d.Time),
		Status:     status,
		DoctorName: d.DoctorName,
	}, nil
}

// trimSeconds turns "09:30:00" into "09:30". Other values pass through.
func trimSeconds(clock string) string {
	clock = strings.TrimSpace(clock)
	if len(clock) == len("15:04:05") && strings.HasSuffix(clock, ":00") {
		return clock[:5]
	}
	return clock
}

// toAppointments converts a list, dropping entries with an unknown status.
func toAppointments(in []appointmentDTO) []entities.Appointment {
	out := make([]entities.Appointment, 0, len(in))
	for _, d := range in {
		appt, err := d.toEntity()
		if err != nil {
			log.Warn().Err(err).Str("appointment_id", d.ID).Msg("dropping appointment with unknown status")
			continue
		}
		out = append(out, appt)
	}
	return out
}

type incomingDTO struct {
	Appointment *appointmentDTO `json:"appointment"`
	DoctorName  string          `json:"doctorName"`
}

// toIncoming keeps malformed entries as a nil Appointment so the caller can
// decide to skip them.
func toIncoming(in []incomingDTO) []entities.IncomingAppointment {
	out := make([]entities.IncomingAppointment, 0, len(in))
	for _, d := range in {
		entry := entities.IncomingAppointment{DoctorName: d.DoctorName}
		if d.Appointment != nil {
			if appt, err := d.Appointment.toEntity(); err == nil {
				if appt.DoctorName == "" {
					appt.DoctorName = d.DoctorName
				}
				entry.Appointment = &appt
			}
		}
		out = append(out, entry)
	}
	return out
}

// doctorDTO accepts both spellings the backend has used for the specialty.
type doctorDTO struct {
	ID            string  `json:"id"`
	FullName      string  `json:"fullName"`
	Specialty     string  `json:"specialty"`
	Speciality    string  `json:"speciality"`
	Bio           string  `json:"bio"`
	City          string  `json:"city"`
	PriceMinCents int64   `json:"priceMinCents"`
	PriceMaxCents int64   `json:"priceMaxCents"`
	Verified      bool    `json:"verified"`
	RatingAvg     float64 `json:"ratingAvg"`
	RatingCount   int     `json:"ratingCount"`
}

func (d doctorDTO) toEntity() entities.Doctor {
	specialty := d.Specialty
	if specialty == "" {
		specialty = d.Speciality
	}
	return entities.Doctor{
		ID:            d.ID,
		FullName:      d.FullName,
		Specialty:     specialty,
		Bio:           d.Bio,
		City:          d.City,
		PriceMinCents: d.PriceMinCents,
		PriceMaxCents: d.PriceMaxCents,
		Verified:      d.Verified,
		RatingAvg:     d.RatingAvg,
		RatingCount:   d.RatingCount,
	}
}

func toDoctors(in []doctorDTO) []entities.Doctor {
	out := make([]entities.Doctor, len(in))
	for i, d := range in {
		out[i] = d.toEntity()
	}
	return out
}

type reviewDTO struct {
	AppointmentID string `json:"appointmentId"`
	PatientID     string `json:"patientId"`
	DoctorID      string `json:"doctorId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	CreatedAt     string `json:"createdAt"`
	PatientName   string `json:"patientName"`
	DoctorName    string `json:"doctorName"`
}

func (d reviewDTO) toEntity() entities.Review {
	r := entities.Review{
		AppointmentID: d.AppointmentID,
		PatientID:     d.PatientID,
		DoctorID:      d.DoctorID,
		Rating:        d.Rating,
		Comment:       d.Comment,
		PatientName:   d.PatientName,
		DoctorName:    d.DoctorName,
	}
	if t, err := time.Parse(time.RFC3339Nano, d.CreatedAt); err == nil {
		r.CreatedAt = t
	}
	return r
}

type userDTO struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (d userDTO) toEntity() (*entities.User, error) {
	role, err := entities.ParseRole(d.Role)
	if err != nil {
		return nil, err
	}
	return &entities.User{
		ID:        d.ID,
		FullName:  d.FullName,
		Email:     d.Email,
		Role:      role,
		CreatedAt: d.CreatedAt,
	}, nil
}

type authResponseDTO struct {
	Token string   `json:"token"`
	User  *userDTO `json:"user"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
