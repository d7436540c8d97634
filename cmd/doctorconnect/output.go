package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

func printAppointments(out io.Writer, appts []entities.Appointment) {
	if len(appts) == 0 {
		fmt.Fprintln(out, "No appointments.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tSTATUS\tDOCTOR\tPATIENT")
	for _, a := range appts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Date, a.Time, a.Status, orDash(a.DoctorName), orDash(a.PatientID))
	}
	_ = w.Flush()
}

func printAppointment(out io.Writer, a *entities.Appointment) {
	if a == nil {
		fmt.Fprintln(out, "No appointment.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", a.ID)
	fmt.Fprintf(w, "Status:\t%s\n", a.Status)
	fmt.Fprintf(w, "When:\t%s %s\n", a.Date, a.Time)
	fmt.Fprintf(w, "Doctor:\t%s\n", orDash(a.DoctorName))
	fmt.Fprintf(w, "Patient:\t%s\n", orDash(a.PatientID))
	_ = w.Flush()
}

func printDoctors(out io.Writer, doctors []entities.Doctor) {
	if len(doctors) == 0 {
		fmt.Fprintln(out, "No doctors found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSPECIALTY\tCITY\tPRICE\tRATING\tVERIFIED")
	for _, d := range doctors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f (%d)\t%s\n",
			d.ID, d.FullName, orDash(d.Specialty), orDash(d.City),
			priceRange(d.PriceMinCents, d.PriceMaxCents), d.RatingAvg, d.RatingCount, yesNo(d.Verified))
	}
	_ = w.Flush()
}

func printReviews(out io.Writer, reviews []entities.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RATING\tPATIENT\tDATE\tCOMMENT")
	for _, r := range reviews {
		date := "-"
		if !r.CreatedAt.IsZero() {
			date = r.CreatedAt.Format(entities.AppointmentDateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", strings.Repeat("*", r.Rating), orDash(r.PatientName), date, r.Comment)
	}
	_ = w.Flush()
}

func printUser(out io.Writer, u *entities.User) {
	fmt.Fprintf(out, "%s <%s> (%s) id=%s\n", u.FullName, u.Email, u.Role, u.ID)
}

// describeNext renders one line for the next appointment. live selects the
// compact countdown used while watching.
func describeNext(next *services.UpcomingAppointment, countdown services.Countdown, loc *time.Location, live bool) string {
	if next == nil {
		return "No upcoming appointments."
	}
	remaining := countdown.Full()
	if live {
		remaining = countdown.String()
	}
	who := orDash(next.DoctorName)
	return fmt.Sprintf("Next: %s with %s on %s (%s) - %s",
		next.Appointment.Status, who,
		next.ScheduledAt.In(loc).Format("Mon 2 Jan 2006 15:04"),
		next.Appointment.ID, remaining)
}

func priceRange(minCents, maxCents int64) string {
	if minCents == 0 && maxCents == 0 {
		return "-"
	}
	return fmt.Sprintf("%d-%d", minCents/100, maxCents/100)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
