package providers

import (
	"context"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// appointment events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelUserPrefix is the prefix for per-user appointment channels
const EventChannelUserPrefix = "appointments:user:"

// GetUserChannel returns the channel carrying events for a user's appointments
func GetUserChannel(userID string) string {
	return EventChannelUserPrefix + userID
}

// ChannelsFor returns the channels an event about appt must be published on
func ChannelsFor(appt entities.Appointment) []string {
	var channels []string
	if appt.PatientID != "" {
		channels = append(channels, GetUserChannel(appt.PatientID))
	}
	if appt.DoctorID != "" && appt.DoctorID != appt.PatientID {
		channels = append(channels, GetUserChannel(appt.DoctorID))
	}
	return channels
}
