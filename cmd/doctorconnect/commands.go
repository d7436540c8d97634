package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

const passwordEnv = "DOCTORCONNECT_PASSWORD"

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			user, err := c.app.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Signed in as ")
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or "+passwordEnv+")")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.app.auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	var req providers.RegisterRequest
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := entities.ParseRole(role)
			if err != nil {
				return apperrors.NewValidationError("role must be PATIENT or DOCTOR")
			}
			req.Role = parsed
			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}
			user, err := c.app.auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Registered ")
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password, at least 6 characters (or "+passwordEnv+")")
	cmd.Flags().StringVar(&role, "role", string(entities.RolePatient), "PATIENT or DOCTOR")
	return cmd
}

func (c *cli) appointmentsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"ls"},
		Short:   "List your appointments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appts, _, err := c.app.directory.Mine(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				want, err := entities.ParseAppointmentStatus(status)
				if err != nil {
					return apperrors.NewValidationError(err.Error())
				}
				filtered := appts[:0:0]
				for _, a := range appts {
					if a.Status == want {
						filtered = append(filtered, a)
					}
				}
				appts = filtered
			}
			printAppointments(cmd.OutOrStdout(), appts)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show appointments in this status")
	return cmd
}

func (c *cli) nextCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show your next appointment and the time until it starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !watch {
				entries, err := c.app.directory.Incoming(ctx)
				if err != nil {
					return err
				}
				now := time.Now()
				next, _ := services.SelectNext(entries, now, c.app.loc)
				var countdown services.Countdown
				if next != nil {
					countdown = services.CountdownTo(next.ScheduledAt, now)
				}
				fmt.Fprintln(out, describeNext(next, countdown, c.app.loc, false))
				return nil
			}

			user, err := c.app.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			var width int
			return c.app.watcher(user).Run(ctx, func(s services.WatchState) {
				line := describeNext(s.Next, s.Countdown, c.app.loc, true)
				switch {
				case s.Err != nil && !s.Loaded:
					line = "Could not load appointments: " + apperrors.UserMessage(s.Err)
				case s.Err != nil:
					line += " (offline: " + apperrors.UserMessage(s.Err) + ")"
				case !s.Loaded:
					line = "Loading..."
				}
				pad := width - len(line)
				if pad < 0 {
					pad = 0
				}
				width = len(line)
				fmt.Fprint(out, "\r"+line+strings.Repeat(" ", pad))
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep the countdown running until interrupted")
	return cmd
}

func (c *cli) transitionCmd(use, short string, action entities.TransitionAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <appointment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := c.app.board(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := board.Apply(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s is now %s.\n", updated.ID, updated.Status)
			return nil
		},
	}
}

func (c *cli) bookCmd() *cobra.Command {
	var doctorID, date, clock string
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Request an appointment with a doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var at time.Time
			if date != "" && clock != "" {
				parsed, err := time.ParseInLocation(entities.AppointmentDateLayout+" "+entities.AppointmentTimeLayout, date+" "+clock, c.app.loc)
				if err != nil {
					return apperrors.NewValidationError("date must look like 2025-01-31 and time like 14:30")
				}
				at = parsed
			}

			created, err := c.app.booking.Book(cmd.Context(), services.BookingRequest{DoctorID: doctorID, At: at})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Appointment requested.")
			printAppointment(cmd.OutOrStdout(), created)
			return nil
		},
	}
	cmd.Flags().StringVar(&doctorID, "doctor", "", "Doctor id")
	cmd.Flags().StringVar(&date, "date", "", "Date, YYYY-MM-DD")
	cmd.Flags().StringVar(&clock, "time", "", "Time, HH:MM (24h)")
	return cmd
}

func (c *cli) reviewCmd() *cobra.Command {
	var rating int
	var comment string
	cmd := &cobra.Command{
		Use:   "review <appointment-id>",
		Short: "Rate a completed appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.reviews.SubmitForID(cmd.Context(), args[0], rating, comment); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thanks for your review.")
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment")
	return cmd
}

func (c *cli) reviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <doctor-id>",
		Short: "List a doctor's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviews, err := c.app.reviews.ListForDoctor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), reviews)
			return nil
		},
	}
}

func (c *cli) doctorsCmd() *cobra.Command {
	var (
		filter             entities.DoctorFilter
		sortBy             string
		minPrice, maxPrice int64
		refresh            bool
	)
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Search the doctor directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := entities.ParseDoctorSort(sortBy)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			filter.Sort = sort
			if cmd.Flags().Changed("min-price") {
				filter.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max-price") {
				filter.MaxPrice = &maxPrice
			}
			if refresh {
				if err := c.app.doctors.Invalidate(cmd.Context()); err != nil {
					return err
				}
			}

			doctors, err := c.app.doctors.Search(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printDoctors(cmd.OutOrStdout(), doctors)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Specialty, "specialty", "", "Specialty contains")
	cmd.Flags().StringVar(&filter.City, "city", "", "City contains")
	cmd.Flags().Int64Var(&minPrice, "min-price", 0, "Lowest starting price, whole currency units")
	cmd.Flags().Int64Var(&maxPrice, "max-price", 0, "Highest top price, whole currency units")
	cmd.Flags().BoolVar(&filter.VerifiedOnly, "verified", false, "Only verified doctors")
	cmd.Flags().StringVar(&sortBy, "sort", string(entities.DoctorSortRelevance), "relevance, rating, priceAsc or priceDesc")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached directory")
	return cmd
}

func (c *cli) topDoctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top-doctors",
		Short: "Show the top rated doctors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, err := c.app.doctors.Top(cmd.Context())
			if err != nil {
				return err
			}
			printDoctors(cmd.OutOrStdout(), doctors)
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your past appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appts, err := c.app.directory.History(cmd.Context())
			if err != nil {
				return err
			}
			printAppointments(cmd.OutOrStdout(), appts)
			return nil
		},
	}
}

func (c *cli) lastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show your most recent completed appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			last, err := c.app.directory.LastCompleted(cmd.Context())
			if err != nil {
				return err
			}
			if last == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No completed appointments yet.")
				return nil
			}
			printAppointment(cmd.OutOrStdout(), last)
			return nil
		},
	}
}

func (c *cli) detailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "details <appointment-id>",
		Short: "Show one appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appt, err := c.app.directory.Details(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printAppointment(cmd.OutOrStdout(), appt)
			return nil
		},
	}
}
