package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctorconnect/internal/adapters/auth"
	"github.com/zatekoja/doctorconnect/internal/adapters/cache"
	"github.com/zatekoja/doctorconnect/internal/adapters/events"
	"github.com/zatekoja/doctorconnect/internal/adapters/loaders"
	"github.com/zatekoja/doctorconnect/internal/application/services"
	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/clients/bookingapi"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/clients/redis"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	"github.com/zatekoja/doctorconnect/pkg/config"
	"github.com/zatekoja/doctorconnect/pkg/retry"
)

// app wires the client for one command invocation
type app struct {
	cfg     *config.Config
	loc     *time.Location
	metrics *observability.Metrics

	auth      *auth.SessionProvider
	client    *bookingapi.HTTPClient
	bus       providers.EventBus
	cache     providers.CacheProvider
	directory *services.AppointmentDirectoryService
	booking   *services.BookingService
	reviews   *services.ReviewService
	doctors   *services.DoctorDirectoryService

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, loc: loc}

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			a.closers = append(a.closers, shutdown)
		}
	}

	a.metrics, err = observability.InitMetrics()
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		retryCfg := retry.DefaultConfig()
		retryCfg.MaxAttempts = 3
		rc, err := redis.NewClient(ctx, &cfg.Redis, retryCfg)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without shared cache and live events")
		} else {
			a.bus = events.NewRedisEventBus(rc)
			a.cache = cache.NewRedisAdapter(rc, "doctorconnect:")
			a.closers = append(a.closers, func(context.Context) error {
				return errors.Join(a.bus.Close(), rc.Close())
			})
		}
	}
	if a.bus == nil {
		bus := events.NewMemoryEventBus()
		a.bus = bus
		a.cache = cache.NewMemoryCache()
		a.closers = append(a.closers, func(context.Context) error { return bus.Close() })
	}

	base := bookingapi.NewClient(cfg.API.BaseURL,
		bookingapi.WithTimeout(cfg.API.Timeout),
		bookingapi.WithRateLimit(cfg.API.RateLimitRPS, cfg.API.RateBurst),
		bookingapi.WithMetrics(a.metrics),
	)
	a.auth = auth.NewSessionProvider(auth.NewFileSessionStore(cfg.Session.Path), base)
	a.client = base.WithTokenSource(a.auth)

	names := func() services.DoctorNameResolver { return loaders.NewDoctorLoader(a.client) }
	a.directory = services.NewAppointmentDirectoryService(a.client, a.auth, names)
	a.booking = services.NewBookingService(a.client, a.auth, loc, services.WithBookingEventBus(a.bus))
	a.reviews = services.NewReviewService(a.client, a.client, a.auth)
	a.doctors = services.NewDoctorDirectoryService(a.client,
		services.WithDirectoryCache(a.cache, cfg.Redis.DirectoryTTL),
		services.WithDirectoryMetrics(a.metrics),
	)
	return a, nil
}

// board loads the user's list into a fresh board, the way a view would on
// mount.
func (a *app) board(ctx context.Context) (*services.AppointmentBoard, error) {
	appts, role, err := a.directory.Mine(ctx)
	if err != nil {
		return nil, err
	}
	b := services.NewAppointmentBoard(a.client, role,
		services.WithBoardEventBus(a.bus),
		services.WithBoardMetrics(a.metrics),
	)
	b.Replace(appts)
	return b, nil
}

func (a *app) watcher(user *entities.User) *services.NextAppointmentWatcher {
	return services.NewNextAppointmentWatcher(a.directory.Incoming, services.WatcherConfig{
		UserID:   user.ID,
		Location: a.loc,
		Tick:     a.cfg.Watch.Tick,
		Refresh:  a.cfg.Watch.Refresh,
		Bus:      a.bus,
	})
}

func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}
