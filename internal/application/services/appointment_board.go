package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// AppointmentBoard holds one view's appointment list and applies status
// transitions to it optimistically. The list is never mutated in place:
// every change swaps in a new slice, so snapshots handed out stay valid.
type AppointmentBoard struct {
	api     providers.AppointmentAPI
	actor   entities.Role
	bus     providers.EventBus
	metrics *observability.Metrics

	mu    sync.RWMutex
	items []entities.Appointment
}

// BoardOption configures an AppointmentBoard
type BoardOption func(*AppointmentBoard)

// WithBoardEventBus publishes an event after every confirmed transition
func WithBoardEventBus(bus providers.EventBus) BoardOption {
	return func(b *AppointmentBoard) { b.bus = bus }
}

// WithBoardMetrics counts transition outcomes
func WithBoardMetrics(m *observability.Metrics) BoardOption {
	return func(b *AppointmentBoard) { b.metrics = m }
}

// NewAppointmentBoard creates an empty board acting as actor
func NewAppointmentBoard(api providers.AppointmentAPI, actor entities.Role, opts ...BoardOption) *AppointmentBoard {
	b := &AppointmentBoard{api: api, actor: actor}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Actor returns the role transitions are checked against
func (b *AppointmentBoard) Actor() entities.Role {
	return b.actor
}

// Replace swaps in a freshly fetched list
func (b *AppointmentBoard) Replace(items []entities.Appointment) {
	next := append([]entities.Appointment(nil), items...)
	b.mu.Lock()
	b.items = next
	b.mu.Unlock()
}

// Insert adds a newly booked appointment, replacing any entry with the same id
func (b *AppointmentBoard) Insert(appt entities.Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := indexOf(b.items, appt.ID); idx >= 0 {
		b.items = replaceAt(b.items, idx, appt)
		return
	}
	next := make([]entities.Appointment, 0, len(b.items)+1)
	next = append(next, b.items...)
	b.items = append(next, appt)
}

// Snapshot returns a copy of the current list
func (b *AppointmentBoard) Snapshot() []entities.Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]entities.Appointment(nil), b.items...)
}

// Get returns one appointment
func (b *AppointmentBoard) Get(id string) (entities.Appointment, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if idx := indexOf(b.items, id); idx >= 0 {
		return b.items[idx], true
	}
	return entities.Appointment{}, false
}

// Apply performs action on appointment id. The local guard runs first and
// refuses without a request. Otherwise the new status is shown immediately
// and the request is sent; if it fails, that one record is restored and the
// error returned. Nothing is retried and nothing is re-fetched.
func (b *AppointmentBoard) Apply(ctx context.Context, id string, action entities.TransitionAction) (entities.Appointment, error) {
	ctx, span := observability.StartSpan(ctx, "AppointmentBoard.Apply")
	defer span.End()
	logger := observability.LoggerFromContext(ctx).With().
		Str("appointment_id", id).
		Str("action", string(action)).
		Logger()

	b.mu.Lock()
	idx := indexOf(b.items, id)
	if idx < 0 {
		b.mu.Unlock()
		return entities.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s is not in this list", id))
	}
	previous := b.items[idx]
	target, err := entities.CheckTransition(action, b.actor, previous.Status)
	if err != nil {
		b.mu.Unlock()
		observability.RecordTransition(ctx, b.metrics, string(action), observability.TransitionGuarded)
		logger.Debug().Err(err).Msg("transition refused locally")
		return entities.Appointment{}, apperrors.NewGuardError(guardMessage(err, action, previous.Status), err)
	}
	optimistic := previous.WithStatus(target)
	b.items = replaceAt(b.items, idx, optimistic)
	b.mu.Unlock()

	if err := b.api.Transition(ctx, id, action); err != nil {
		b.rollback(previous, target)
		observability.RecordTransition(ctx, b.metrics, string(action), observability.TransitionRolledBack)
		observability.RecordError(span, err)
		if !apperrors.IsCanceled(err) {
			logger.Warn().Err(err).Msg("transition rejected, restored previous status")
		}
		return entities.Appointment{}, err
	}

	observability.RecordTransition(ctx, b.metrics, string(action), observability.TransitionApplied)
	logger.Info().Str("status", string(target)).Msg("transition applied")
	b.publish(ctx, optimistic)
	return optimistic, nil
}

// rollback restores previous unless the record has changed again since the
// optimistic write, in which case the newer state wins.
func (b *AppointmentBoard) rollback(previous entities.Appointment, optimisticStatus entities.AppointmentStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := indexOf(b.items, previous.ID)
	if idx < 0 || b.items[idx].Status != optimisticStatus {
		return
	}
	b.items = replaceAt(b.items, idx, previous)
}

func (b *AppointmentBoard) publish(ctx context.Context, appt entities.Appointment) {
	if b.bus == nil {
		return
	}
	event := entities.NewAppointmentEvent(appt, entities.AppointmentEventTypeStatusChanged)
	for _, channel := range providers.ChannelsFor(appt) {
		if err := b.bus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish appointment event")
		}
	}
}

func guardMessage(err error, action entities.TransitionAction, current entities.AppointmentStatus) string {
	status := strings.ToLower(string(current))
	switch {
	case errors.Is(err, entities.ErrAlreadyInState):
		return "appointment is already " + status
	case errors.Is(err, entities.ErrActorNotAllowed):
		if t, ok := entities.LookupTransition(action); ok {
			return fmt.Sprintf("only a %s can %s an appointment", strings.ToLower(string(t.Actor)), action)
		}
	case errors.Is(err, entities.ErrIllegalTransition):
		return fmt.Sprintf("cannot %s an appointment that is %s", action, status)
	}
	return err.Error()
}

func indexOf(items []entities.Appointment, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func replaceAt(items []entities.Appointment, idx int, appt entities.Appointment) []entities.Appointment {
	next := append([]entities.Appointment(nil), items...)
	next[idx] = appt
	return next
}
