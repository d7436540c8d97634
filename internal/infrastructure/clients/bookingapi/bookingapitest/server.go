// Package bookingapitest provides an in-memory DoctorConnect backend for
// tests. It speaks the same REST contract as the real service, enforces the
// same status transitions and can be told to fail specific calls.
package bookingapitest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// RecordedRequest is one request the server received
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

type failure struct {
	status int
	body   string
}

type account struct {
	user     entities.User
	password string
}

// Server is an httptest server backed by in-memory state
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account // by email
	usersByID    map[string]*account
	tokens       map[string]string // token -> user id
	appointments map[string]entities.Appointment
	order        []string
	doctors      []entities.Doctor
	reviews      []entities.Review
	rawIncoming  map[string][]json.RawMessage
	requests     []RecordedRequest
	failures     map[string][]failure
	latency      time.Duration
	signingKey   []byte
}

// NewServer starts a fake backend. Close it when done.
func NewServer() *Server {
	s := &Server{
		accounts:     make(map[string]*account),
		usersByID:    make(map[string]*account),
		tokens:       make(map[string]string),
		appointments: make(map[string]entities.Appointment),
		rawIncoming:  make(map[string][]json.RawMessage),
		failures:     make(map[string][]failure),
		signingKey:   []byte("bookingapitest-signing-key"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))

	mux.HandleFunc("GET /api/appointments/doctor/{id}", s.authed(s.handleListForDoctor))
	mux.HandleFunc("GET /api/appointments/patient/{id}", s.authed(s.handleListForPatient))
	mux.HandleFunc("GET /api/appointments/incoming/{id}", s.authed(s.handleIncoming))
	mux.HandleFunc("GET /api/appointments/history", s.authed(s.handleHistory))
	mux.HandleFunc("GET /api/appointments/last-completed", s.authed(s.handleLastCompleted))
	mux.HandleFunc("GET /api/appointments/details/{id}", s.authed(s.handleDetails))
	mux.HandleFunc("POST /api/appointments", s.authed(s.handleCreate))
	mux.HandleFunc("POST /api/appointments/", s.authed(s.handleCreate))
	mux.HandleFunc("PUT /api/appointments/{id}/{action}", s.authed(s.handleTransition))

	mux.HandleFunc("GET /api/doctor/all", s.handleDoctors)
	mux.HandleFunc("GET /api/doctor/get-top-3-doctors", s.handleTopDoctors)
	mux.HandleFunc("GET /api/doctor/{id}", s.handleDoctor)

	mux.HandleFunc("POST /api/review", s.authed(s.handleSubmitReview))
	mux.HandleFunc("GET /api/review/doctor/{id}", s.handleDoctorReviews)

	s.Server = httptest.NewServer(s.intercept(mux))
	return s
}

// AddUser registers an account and returns the stored user. An empty ID is
// generated.
func (s *Server) AddUser(user entities.User, password string) entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format("2006-01-02T15:04:05")
	}
	acc := &account{user: user, password: password}
	s.accounts[strings.ToLower(user.Email)] = acc
	s.usersByID[user.ID] = acc
	return user
}

// IssueToken returns a valid bearer token for userID
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.usersByID[userID]
	if !ok {
		return ""
	}
	return s.issueTokenLocked(acc.user)
}

func (s *Server) issueTokenLocked(user entities.User) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.ID,
		"userId": user.ID,
		"email":  user.Email,
		"role":   string(user.Role),
		"iat":    now.Unix(),
		"exp":    now.Add(24 * time.Hour).Unix(),
		"jti":    uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = user.ID
	return token
}

// AddDoctor adds a directory entry
func (s *Server) AddDoctor(d entities.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors = append(s.doctors, d)
}

// AddAppointment stores an appointment as-is. An empty ID is generated.
func (s *Server) AddAppointment(a entities.Appointment) entities.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, exists := s.appointments[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.appointments[a.ID] = a
	return a
}

// AddRawIncoming appends a verbatim entry to the incoming list of userID.
// Use it to serve malformed data.
func (s *Server) AddRawIncoming(userID string, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawIncoming[userID] = append(s.rawIncoming[userID], raw)
}

// Appointment returns the server-side copy of an appointment
func (s *Server) Appointment(id string) (entities.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	return a, ok
}

// Reviews returns every stored review
func (s *Server) Reviews() []entities.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Review(nil), s.reviews...)
}

// FailNext makes the next request matching method and path answer status
// with body instead of being handled. Calls queue up.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// SetLatency delays every response by d, or until the request is canceled
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Requests returns every request received so far
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// CountRequests counts received requests with method whose path starts
// with prefix
func (s *Server) CountRequests(method, prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		latency := s.latency
		key := r.Method + " " + r.URL.Path
		var fail *failure
		if queued := s.failures[key]; len(queued) > 0 {
			f := queued[0]
			fail = &f
			s.failures[key] = queued[1:]
		}
		s.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}

		if fail != nil {
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

type handlerWithUser func(w http.ResponseWriter, r *http.Request, me entities.User)

func (s *Server) authed(h handlerWithUser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		userID, ok := s.tokens[token]
		var me entities.User
		if ok {
			me = s.usersByID[userID].user
		}
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		h(w, r, me)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acc.password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := s.issueTokenLocked(acc.user)
	user := acc.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role, err := entities.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	s.mu.Unlock()

	user := s.AddUser(entities.User{FullName: req.FullName, Email: req.Email, Role: role}, req.Password)

	s.mu.Lock()
	token := s.issueTokenLocked(user)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, me entities.User) {
	writeJSON(w, http.StatusOK, me)
}

func (s *Server) handleListForDoctor(w http.ResponseWriter, r *http.Request, me entities.User) {
	id := r.PathValue("id")
	if me.Role != entities.RoleDoctor || me.ID != id {
		writeError(w, http.StatusForbidden, "Not allowed to view these appointments")
		return
	}
	writeJSON(w, http.StatusOK, s.filterAppointments(func(a entities.Appointment) bool { return a.DoctorID == id }))
}

func (s *Server) handleListForPatient(w http.ResponseWriter, r *http.Request, me entities.User) {
	id := r.PathValue("id")
	if me.ID != id {
		writeError(w, http.StatusForbidden, "Not allowed to view these appointments")
		return
	}
	writeJSON(w, http.StatusOK, s.filterAppointments(func(a entities.Appointment) bool { return a.PatientID == id }))
}

func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request, me entities.User) {
	id := r.PathValue("id")
	if me.ID != id {
		writeError(w, http.StatusForbidden, "Not allowed to view these appointments")
		return
	}

	entries := make([]interface{}, 0)
	for _, a := range s.filterAppointments(func(a entities.Appointment) bool { return a.PatientID == id || a.DoctorID == id }) {
		entries = append(entries, map[string]interface{}{"appointment": a, "doctorName": a.DoctorName})
	}
	s.mu.Lock()
	for _, raw := range s.rawIncoming[id] {
		entries = append(entries, raw)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, me entities.User) {
	writeJSON(w, http.StatusOK, s.filterAppointments(func(a entities.Appointment) bool {
		return (a.PatientID == me.ID || a.DoctorID == me.ID) && a.Status.IsTerminal()
	}))
}

func (s *Server) handleLastCompleted(w http.ResponseWriter, r *http.Request, me entities.User) {
	completed := s.filterAppointments(func(a entities.Appointment) bool {
		return a.PatientID == me.ID && a.Status == entities.AppointmentStatusCompleted
	})
	if len(completed) == 0 {
		writeError(w, http.StatusNotFound, "No completed appointments")
		return
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date+completed[i].Time > completed[j].Date+completed[j].Time
	})
	writeJSON(w, http.StatusOK, completed[0])
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request, me entities.User) {
	a, ok := s.Appointment(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if a.PatientID != me.ID && a.DoctorID != me.ID {
		writeError(w, http.StatusForbidden, "Not allowed to view this appointment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, me entities.User) {
	var req struct {
		PatientID string `json:"patientId"`
		DoctorID  string `json:"doctorId"`
		Date      string `json:"date"`
		Time      string `json:"time"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if me.Role != entities.RolePatient || req.PatientID != me.ID {
		writeError(w, http.StatusForbidden, "Only the patient can book for themselves")
		return
	}
	status, err := entities.ParseAppointmentStatus(req.Status)
	if err != nil || status != entities.AppointmentStatusPending {
		writeError(w, http.StatusBadRequest, "New appointments must be PENDING")
		return
	}
	if _, err := time.Parse("2006-01-02T15:04", req.Date+"T"+req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date or time")
		return
	}

	s.mu.Lock()
	var doctor *entities.Doctor
	for i := range s.doctors {
		if s.doctors[i].ID == req.DoctorID {
			d := s.doctors[i]
			doctor = &d
			break
		}
	}
	s.mu.Unlock()
	if doctor == nil {
		writeError(w, http.StatusNotFound, "Doctor not found")
		return
	}

	created := s.AddAppointment(entities.Appointment{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		Date:       req.Date,
		Time:       req.Time,
		Status:     status,
		DoctorName: doctor.FullName,
	})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, me entities.User) {
	action := entities.TransitionAction(r.PathValue("action"))
	if _, ok := entities.LookupTransition(action); !ok {
		writeError(w, http.StatusNotFound, "Unknown action")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	owner := a.PatientID
	if me.Role == entities.RoleDoctor {
		owner = a.DoctorID
	}
	if owner != me.ID {
		writeError(w, http.StatusUnauthorized, "You are not part of this appointment")
		return
	}

	next, err := entities.CheckTransition(action, me.Role, a.Status)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, entities.ErrActorNotAllowed) {
			status = http.StatusUnauthorized
		}
		writeError(w, status, "Cannot "+string(action)+" an appointment that is "+string(a.Status))
		return
	}
	s.appointments[a.ID] = a.WithStatus(next)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDoctors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doctors := append([]entities.Doctor(nil), s.doctors...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, legacyDoctors(doctors))
}

func (s *Server) handleTopDoctors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doctors := append([]entities.Doctor(nil), s.doctors...)
	s.mu.Unlock()
	sort.SliceStable(doctors, func(i, j int) bool { return doctors[i].RatingAvg > doctors[j].RatingAvg })
	if len(doctors) > 3 {
		doctors = doctors[:3]
	}
	writeJSON(w, http.StatusOK, legacyDoctors(doctors))
}

func (s *Server) handleDoctor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.doctors {
		if d.ID == id {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Doctor not found")
}

// legacyDoctors renders the list endpoints with the "speciality" spelling
// the directory endpoints use, while the single-doctor endpoint uses
// "specialty".
func legacyDoctors(doctors []entities.Doctor) []map[string]interface{} {
	out := make([]map[string]interface{}, len(doctors))
	for i, d := range doctors {
		out[i] = map[string]interface{}{
			"id":            d.ID,
			"fullName":      d.FullName,
			"speciality":    d.Specialty,
			"bio":           d.Bio,
			"city":          d.City,
			"priceMinCents": d.PriceMinCents,
			"priceMaxCents": d.PriceMaxCents,
			"verified":      d.Verified,
			"ratingAvg":     d.RatingAvg,
			"ratingCount":   d.RatingCount,
		}
	}
	return out
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request, me entities.User) {
	var req struct {
		AppointmentID string `json:"appointmentId"`
		Rating        int    `json:"rating"`
		Comment       string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !entities.ValidRating(req.Rating) {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[req.AppointmentID]
	if !ok {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if a.PatientID != me.ID {
		writeError(w, http.StatusUnauthorized, "Only the patient can review this appointment")
		return
	}
	if a.Status != entities.AppointmentStatusCompleted {
		writeError(w, http.StatusBadRequest, "Only completed appointments can be reviewed")
		return
	}
	for _, existing := range s.reviews {
		if existing.AppointmentID == a.ID {
			writeError(w, http.StatusConflict, "Appointment already reviewed")
			return
		}
	}

	s.reviews = append(s.reviews, entities.Review{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		PatientName:   me.FullName,
		DoctorName:    a.DoctorName,
	})
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleDoctorReviews(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	out := make([]entities.Review, 0)
	for _, rv := range s.reviews {
		if rv.DoctorID == id {
			out = append(out, rv)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) filterAppointments(keep func(entities.Appointment) bool) []entities.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Appointment, 0)
	for _, id := range s.order {
		if a := s.appointments[id]; keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError mirrors the backend's error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status":    status,
		"message":   message,
		"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
	})
}
