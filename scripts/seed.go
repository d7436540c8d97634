// Command seed starts an in-memory DoctorConnect backend filled with demo
// data, for trying the CLI without the real service:
//
//	go run ./scripts
//	API_BASE_URL=<printed url> doctorconnect login --email pat@demo.test --password demo123
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/clients/bookingapi/bookingapitest"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
)

const demoPassword = "demo123"

func main() {
	observability.InitLogger("doctorconnect-seed", "development", false)

	server := bookingapitest.NewServer()
	defer server.Close()

	// 1. Seed doctors, each with a login
	doctors := []entities.Doctor{
		{FullName: "Dr. Amara Okafor", Specialty: "Cardiology", City: "Lagos", Bio: "Heart rhythm specialist.", PriceMinCents: 1500000, PriceMaxCents: 3000000, Verified: true, RatingAvg: 4.8, RatingCount: 31},
		{FullName: "Dr. Tunde Bello", Specialty: "Dermatology", City: "Abuja", Bio: "Skin and hair.", PriceMinCents: 800000, PriceMaxCents: 1200000, Verified: true, RatingAvg: 4.5, RatingCount: 12},
		{FullName: "Dr. Ngozi Eze", Specialty: "Pediatrics", City: "Lagos", Bio: "Children's health.", PriceMinCents: 1000000, PriceMaxCents: 1800000, RatingAvg: 4.9, RatingCount: 44},
		{FullName: "Dr. Ibrahim Musa", Specialty: "General Practice", City: "Kano", Bio: "Family medicine.", PriceMinCents: 500000, PriceMaxCents: 700000, Verified: true, RatingAvg: 4.1, RatingCount: 7},
	}
	var doctorUsers []entities.User
	for i, d := range doctors {
		email := fmt.Sprintf("doctor%d@demo.test", i+1)
		user := server.AddUser(entities.User{FullName: d.FullName, Email: email, Role: entities.RoleDoctor}, demoPassword)
		d.ID = user.ID
		server.AddDoctor(d)
		doctorUsers = append(doctorUsers, user)
	}

	// 2. Seed a patient
	patient := server.AddUser(entities.User{FullName: "Pat Demo", Email: "pat@demo.test", Role: entities.RolePatient}, demoPassword)

	// 3. Seed appointments across the lifecycle
	now := time.Now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(entities.AppointmentDateLayout) }
	appointments := []entities.Appointment{
		{DoctorID: doctorUsers[0].ID, Date: day(1), Time: "09:30", Status: entities.AppointmentStatusConfirmed},
		{DoctorID: doctorUsers[1].ID, Date: day(3), Time: "14:00", Status: entities.AppointmentStatusPending},
		{DoctorID: doctorUsers[2].ID, Date: day(5), Time: "11:15", Status: entities.AppointmentStatusCancelled},
		{DoctorID: doctorUsers[3].ID, Date: day(-10), Time: "10:00", Status: entities.AppointmentStatusCompleted},
		{DoctorID: doctorUsers[0].ID, Date: day(-30), Time: "16:45", Status: entities.AppointmentStatusRejected},
	}
	for i, a := range appointments {
		a.PatientID = patient.ID
		a.DoctorName = doctors[indexOfDoctor(doctorUsers, a.DoctorID)].FullName
		appointments[i] = server.AddAppointment(a)
	}

	log.Info().Int("doctors", len(doctors)).Int("appointments", len(appointments)).Msg("seeded demo data")
	fmt.Printf("DoctorConnect demo backend listening on %s\n", server.URL)
	fmt.Printf("  export API_BASE_URL=%s\n", server.URL)
	fmt.Printf("  patient: %s / %s\n", patient.Email, demoPassword)
	for _, u := range doctorUsers {
		fmt.Printf("  doctor:  %s / %s (%s)\n", u.Email, demoPassword, u.FullName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("shutting down demo backend")
}

func indexOfDoctor(users []entities.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return 0
}
