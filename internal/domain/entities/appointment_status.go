package entities

import (
	"errors"
	"fmt"
	"strings"
)

// TransitionAction is the backend action label of a status transition. The
// label is also the last path segment of the PUT endpoint.
type TransitionAction string

const (
	ActionConfirm  TransitionAction = "confirm"
	ActionReject   TransitionAction = "reject"
	ActionComplete TransitionAction = "completed"
	ActionCancel   TransitionAction = "cancel"
)

var (
	// ErrAlreadyInState is returned when the appointment already has the target status
	ErrAlreadyInState = errors.New("appointment is already in that state")
	// ErrIllegalTransition is returned when the current status is not a legal predecessor
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrActorNotAllowed is returned when the role may not perform the action
	ErrActorNotAllowed = errors.New("actor is not allowed to perform this action")
	// ErrUnknownAction is returned for labels outside the transition table
	ErrUnknownAction = errors.New("unknown transition action")
)

// Transition describes one actor-gated edge of the status machine.
type Transition struct {
	Action TransitionAction
	From   []AppointmentStatus
	To     AppointmentStatus
	Actor  Role
}

var transitions = map[TransitionAction]Transition{
	ActionConfirm: {
		Action: ActionConfirm,
		From:   []AppointmentStatus{AppointmentStatusPending},
		To:     AppointmentStatusConfirmed,
		Actor:  RoleDoctor,
	},
	ActionReject: {
		Action: ActionReject,
		From:   []AppointmentStatus{AppointmentStatusPending},
		To:     AppointmentStatusRejected,
		Actor:  RoleDoctor,
	},
	ActionComplete: {
		Action: ActionComplete,
		From:   []AppointmentStatus{AppointmentStatusConfirmed},
		To:     AppointmentStatusCompleted,
		Actor:  RoleDoctor,
	},
	ActionCancel: {
		Action: ActionCancel,
		From:   []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed},
		To:     AppointmentStatusCancelled,
		Actor:  RolePatient,
	},
}

// ParseTransitionAction accepts the action labels plus a few CLI friendly
// aliases ("complete", "cancelled").
func ParseTransitionAction(raw string) (TransitionAction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirm", "confirmed":
		return ActionConfirm, nil
	case "reject", "rejected":
		return ActionReject, nil
	case "complete", "completed":
		return ActionComplete, nil
	case "cancel", "cancelled", "canceled":
		return ActionCancel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
}

// LookupTransition returns the transition registered for action.
func LookupTransition(action TransitionAction) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

// CheckTransition validates that actor may apply action to an appointment in
// status current and returns the resulting status.
func CheckTransition(action TransitionAction, actor Role, current AppointmentStatus) (AppointmentStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if actor != t.Actor {
		return "", fmt.Errorf("%w: %s cannot %s", ErrActorNotAllowed, actor, action)
	}
	if current == t.To {
		return "", fmt.Errorf("%w: %s", ErrAlreadyInState, current)
	}
	if !current.CanTransitionTo(t.To) {
		return "", fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, t.To)
	}
	return t.To, nil
}

// CanTransitionTo reports whether some transition leads from s to target.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, t := range transitions {
		if t.To != target {
			continue
		}
		for _, from := range t.From {
			if from == s {
				return true
			}
		}
	}
	return false
}

// AllowedActions lists the actions actor may take on an appointment in
// status s, in a stable order.
func AllowedActions(actor Role, s AppointmentStatus) []TransitionAction {
	var out []TransitionAction
	for _, action := range []TransitionAction{ActionConfirm, ActionReject, ActionComplete, ActionCancel} {
		if _, err := CheckTransition(action, actor, s); err == nil {
			out = append(out, action)
		}
	}
	return out
}
