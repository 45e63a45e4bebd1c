package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/church-service/internal/application/auth"
	"github.com/baechuer/church-service/internal/application/contact"
	"github.com/baechuer/church-service/internal/application/dashboard"
	"github.com/baechuer/church-service/internal/application/event"
	"github.com/baechuer/church-service/internal/application/newsletter"
	"github.com/baechuer/church-service/internal/application/notify"
	"github.com/baechuer/church-service/internal/application/prayer"
	"github.com/baechuer/church-service/internal/application/sermon"
	"github.com/baechuer/church-service/internal/audit"
	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/infrastructure/db/memory"
	"github.com/baechuer/church-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/church-service/internal/infrastructure/email"
	"github.com/baechuer/church-service/internal/infrastructure/messaging/rabbitmq"
	rediscache "github.com/baechuer/church-service/internal/infrastructure/redis"
	"github.com/baechuer/church-service/internal/infrastructure/storage"
	"github.com/baechuer/church-service/internal/pkg/logger"
	"github.com/baechuer/church-service/internal/pkg/retry"
	"github.com/baechuer/church-service/internal/security"
	"github.com/baechuer/church-service/internal/transport/http/handlers"
	"github.com/baechuer/church-service/internal/transport/http/middleware"
	"github.com/baechuer/church-service/internal/transport/http/router"
)

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// repoSet lets the memory and postgres stores share one wiring path.
type repoSet struct {
	Users auth.UserRepo

	Events interface {
		event.Repo
		dashboard.EventCounter
	}
	Prayers interface {
		prayer.Repo
		dashboard.PrayerCounter
	}
	Contacts interface {
		contact.Repo
		dashboard.ContactLister
	}
	Subscriptions interface {
		newsletter.Repo
		dashboard.SubscriberCounter
	}
	Sermons interface {
		sermon.Repo
		dashboard.SermonCounter
	}
}

func main() {
	logger.Init()
	log := logger.Logger

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	log = log.With().Str("env", cfg.AppEnv).Logger()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Store ----
	var (
		db    *sql.DB
		repos repoSet
	)
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		m := memory.New()
		repos = repoSet{m.Users, m.Events, m.Prayers, m.Contacts, m.Subscriptions, m.Sermons}
		log.Warn().Msg("STORE_DRIVER=memory: data is lost on restart")
	default:
		db, err = postgres.Open(rootCtx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open failed")
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(rootCtx, db); err != nil {
				log.Fatal().Err(err).Msg("migrations failed")
			}
		}
		p := postgres.New(db)
		repos = repoSet{p.Users, p.Events, p.Prayers, p.Contacts, p.Subscriptions, p.Sermons}
		log.Info().Msg("postgres connected")
	}

	// ---- Redis (optional) ----
	var (
		cache     *rediscache.Cache
		idem      notify.IdempotencyStore
		statCache dashboard.Cache
		limiter   middleware.RateLimiter
	)
	if cfg.Redis.Enabled() {
		cache = rediscache.New(cfg.Redis)
		if err := cache.Ping(rootCtx); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
		}
		idem, statCache, limiter = cache, cache, cache
	} else {
		log.Info().Msg("REDIS_ADDR empty: idempotency, login throttle and stats cache disabled")
	}

	// ---- Notifications ----
	var sender notify.Sender
	if cfg.SMTP.Enabled() {
		sender = email.NewBreakerSender(email.NewSMTPSender(cfg.SMTP, log), cfg.SMTP.BreakerFailures, cfg.SMTP.BreakerReset, log)
	} else {
		sender = email.NewLogSender(log, cfg.Notify.FakeFailMode)
		log.Warn().Msg("SMTP_HOST empty: notifications are only logged")
	}
	notifySvc := notify.NewService(sender, idem, cfg.Notify.SentTTL, log)

	var (
		enqueuer  event.Notifier
		queue     *notify.Queue
		publisher *rabbitmq.Publisher
		consumer  *rabbitmq.Consumer
	)
	if cfg.Rabbit.Enabled() {
		publisher, err = rabbitmq.NewPublisher(cfg.Rabbit)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		consumer = rabbitmq.NewConsumer(cfg.Rabbit, notifySvc, log)
		if err := consumer.Start(rootCtx); err != nil {
			log.Fatal().Err(err).Msg("rabbit consumer start failed")
		}
		enqueuer = publisher
		log.Info().Str("exchange", cfg.Rabbit.Exchange).Str("queue", cfg.Rabbit.Queue).Msg("rabbit notifications ready")
	} else {
		queue = notify.NewQueue(notifySvc, cfg.Notify.Workers, cfg.Notify.Buffer, retry.Config{
			MaxRetries:   cfg.Notify.MaxRetries,
			InitialDelay: cfg.Notify.RetryInitial,
			MaxDelay:     cfg.Notify.RetryMax,
		}, log)
		enqueuer = queue
		log.Info().Int("workers", cfg.Notify.Workers).Msg("in-process notification queue ready")
	}

	// ---- Images ----
	var (
		images    event.ImageStore
		uploadDir string
	)
	if cfg.S3.Enabled() {
		s3, err := storage.NewS3Store(rootCtx, cfg.S3, log)
		if err != nil {
			log.Fatal().Err(err).Msg("s3 store init failed")
		}
		images = s3
	} else {
		disk, err := storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.PublicBase)
		if err != nil {
			log.Fatal().Err(err).Msg("upload dir init failed")
		}
		images, uploadDir = disk, disk.Dir()
	}

	// ---- Application ----
	clock := sysClock{}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	signer := security.NewJWTSigner(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	al := audit.New(log)

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	h := router.Handlers{
		Health:     handlers.NewHealthHandler(pinger),
		Auth:       handlers.NewAuthHandler(auth.NewService(repos.Users, hasher, signer, clock), al),
		Prayer:     handlers.NewPrayerHandler(prayer.NewService(repos.Prayers, enqueuer, clock, cfg.Notify.PrayerRecipient)),
		Events:     handlers.NewEventsHandler(event.NewService(repos.Events, images, enqueuer, clock, cfg.Upload.MaxBytes), cfg.Upload.MaxBytes, al),
		Contact:    handlers.NewContactHandler(contact.NewService(repos.Contacts, enqueuer, clock, cfg.Notify.ContactRecipient)),
		Newsletter: handlers.NewNewsletterHandler(newsletter.NewService(repos.Subscriptions, enqueuer, clock)),
		Sermons:    handlers.NewSermonHandler(sermon.NewService(repos.Sermons, clock)),
		Dashboard: handlers.NewDashboardHandler(dashboard.NewService(dashboard.Deps{
			Prayers:     repos.Prayers,
			Events:      repos.Events,
			Sermons:     repos.Sermons,
			Subscribers: repos.Subscriptions,
			Contacts:    repos.Contacts,
			Clock:       clock,
			Cache:       statCache,
			CacheTTL:    cfg.Redis.DashboardTTL,
		})),
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.New(h, router.Options{
			Verifier:     signer,
			LoginLimiter: limiter,
			LoginLimit:   cfg.RateLimit.LoginLimit,
			LoginWindow:  cfg.RateLimit.LoginWindow,
			PublicLimit:  cfg.RateLimit.PublicLimit,
			PublicWindow: cfg.RateLimit.PublicWindow,
			CORSOrigin:   cfg.CORSAllowedOrigin,
			UploadDir:    uploadDir,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()
	shutdown(shutdownCtx, log, srv, queue, publisher, consumer, cache, db)
	log.Info().Msg("shutdown complete")
}

// shutdown stops intake first, then drains notifications, then closes stores.
func shutdown(ctx context.Context, log zerolog.Logger, srv *http.Server, queue *notify.Queue,
	pub *rabbitmq.Publisher, cons *rabbitmq.Consumer, cache *rediscache.Cache, db *sql.DB) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if queue != nil {
		if err := queue.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("notification queue did not drain")
		}
	}
	if pub != nil {
		_ = pub.Close()
	}
	if cons != nil {
		if err := cons.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("rabbit consumer stop")
		}
	}
	if cache != nil {
		_ = cache.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
