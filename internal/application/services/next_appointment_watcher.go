package services

import (
	"context"
	"time"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
)

// WatchState is what the live display shows on each render
type WatchState struct {
	Next      *UpcomingAppointment
	Countdown Countdown
	// Err is the last fetch failure; the previous list stays in use until
	// a later fetch succeeds.
	Err         error
	Loaded      bool
	RefreshedAt time.Time
	Now         time.Time
}

// WatcherConfig tunes a NextAppointmentWatcher
type WatcherConfig struct {
	UserID   string
	Location *time.Location
	Tick     time.Duration
	Refresh  time.Duration
	Bus      providers.EventBus
	Now      func() time.Time
}

// NextAppointmentWatcher keeps the next appointment and its countdown
// current. It re-renders every tick and re-fetches on an interval and on
// every appointment event addressed to the user.
type NextAppointmentWatcher struct {
	feed *Feed[[]entities.IncomingAppointment]
	cfg  WatcherConfig
}

type watchResult struct {
	entries []entities.IncomingAppointment
	err     error
	seq     uint64
}

// NewNextAppointmentWatcher creates a watcher fetching with fetch
func NewNextAppointmentWatcher(fetch FetchFunc[[]entities.IncomingAppointment], cfg WatcherConfig) *NextAppointmentWatcher {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &NextAppointmentWatcher{feed: NewFeed(fetch), cfg: cfg}
}

// Run renders until ctx is done. render is called from Run's goroutine only.
func (w *NextAppointmentWatcher) Run(ctx context.Context, render func(WatchState)) error {
	logger := observability.LoggerFromContext(ctx)
	defer w.feed.Close()

	var events <-chan *entities.AppointmentEvent
	if w.cfg.Bus != nil && w.cfg.UserID != "" {
		ch, err := w.cfg.Bus.Subscribe(ctx, providers.GetUserChannel(w.cfg.UserID))
		if err != nil {
			logger.Warn().Err(err).Msg("live appointment updates unavailable")
		} else {
			events = ch
		}
	}

	results := make(chan watchResult)
	refresh := func() {
		go func() {
			res, ok := w.feed.Refresh(ctx)
			if !ok {
				return
			}
			select {
			case results <- watchResult{entries: res.Value, err: res.Err, seq: res.Seq}:
			case <-ctx.Done():
			}
		}()
	}

	ticker := time.NewTicker(w.cfg.Tick)
	defer ticker.Stop()
	refreshTicker := time.NewTicker(w.cfg.Refresh)
	defer refreshTicker.Stop()

	var (
		state   WatchState
		entries []entities.IncomingAppointment
		applied uint64
	)
	show := func() {
		state.Now = w.cfg.Now()
		state.Next = nil
		state.Countdown = Countdown{}
		if next, ok := SelectNext(entries, state.Now, w.cfg.Location); ok {
			state.Next = next
			state.Countdown = CountdownTo(next.ScheduledAt, state.Now)
		}
		render(state)
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-results:
			if res.seq < applied {
				continue
			}
			applied = res.seq
			if res.err != nil {
				logger.Debug().Err(res.err).Msg("incoming appointments refresh failed")
				state.Err = res.err
			} else {
				entries = res.entries
				state.Err = nil
				state.Loaded = true
				state.RefreshedAt = w.cfg.Now()
			}
			show()
		case <-ticker.C:
			show()
		case <-refreshTicker.C:
			refresh()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Involves(w.cfg.UserID) {
				refresh()
			}
		}
	}
}
