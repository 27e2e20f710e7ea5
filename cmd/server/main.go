package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/ai"
	"nutrivision-go/internal/config"
	"nutrivision-go/internal/credentials"
	"nutrivision-go/internal/dashboard"
	"nutrivision-go/internal/database"
	"nutrivision-go/internal/feedback"
	httpserver "nutrivision-go/internal/http"
	"nutrivision-go/internal/imageintake"
	"nutrivision-go/internal/logging"
	"nutrivision-go/internal/metrics"
	"nutrivision-go/internal/plans"
	"nutrivision-go/internal/profiles"
	"nutrivision-go/internal/session"
	"nutrivision-go/internal/store"
	"nutrivision-go/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	users := store.NewUsers(db)
	profileRows := store.NewProfiles(db)
	dietRows := store.NewDietPlans(db)
	workoutRows := store.NewWorkoutPlans(db)
	feedbackRows := store.NewFeedback(db)

	profileSvc := profiles.NewService(profileRows, log)
	feedbackSvc := feedback.NewService(feedbackRows, dietRows, log)

	var delivery credentials.ResetDelivery = credentials.InlineDelivery{}
	if cfg.ResetDelivery == "ses" {
		ses, err := credentials.NewSESDelivery(ctx, cfg.AWSRegion, cfg.SESSender)
		if err != nil {
			log.WithError(err).Fatal("SES unavailable")
		}
		delivery = ses
	} else {
		log.Warn("password reset tokens are returned to the requester; set RESET_DELIVERY=ses to e-mail them")
	}

	sessions := newSessionStore(ctx, cfg, log)
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		log.Warn("SESSION_SECRET not set; using a random secret, sessions will not survive a restart")
		secret = []byte(uuid.NewString())
	}

	openai := ai.NewOpenAIClient(cfg)
	planner := plans.NewPlanner(profileSvc, feedbackSvc, dietRows, workoutRows, openai, log, plans.Options{
		Model:     cfg.OpenAILlmModel,
		Freshness: cfg.WorkoutFreshness(),
		Metrics:   m,
	})

	r := httpserver.NewServer(httpserver.Deps{
		Config:      cfg,
		Log:         log,
		Metrics:     m,
		Gatherer:    reg,
		Credentials: credentials.NewService(users, delivery, log),
		Sessions:    session.NewController(sessions, session.NewTokenCodec(secret), cfg.SessionIdle(), log),
		Profiles:    profileSvc,
		Planner:     planner,
		Feedback:    feedbackSvc,
		Vision:      vision.NewAnalyzer(imageintake.NewValidator(cfg.MaxUploadBytes()), openai, cfg.OpenAIVisionModel, m, log),
		Dashboard:   dashboard.NewService(profileSvc, dietRows, workoutRows),
	})

	log.Infof("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) session.Store {
	if cfg.RedisAddr == "" {
		log.Info("using in-process session store")
		return session.NewMemoryStore()
	}
	rdb, err := session.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis unavailable")
	}
	log.WithField("addr", cfg.RedisAddr).Info("using redis session store")
	return session.NewRedisStore(rdb, cfg.SessionIdle())
}
