package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/config"
	"nutrivision-go/internal/dashboard"
	"nutrivision-go/internal/feedback"
	"nutrivision-go/internal/metrics"
	"nutrivision-go/internal/models"
	"nutrivision-go/internal/plans"
	"nutrivision-go/internal/profiles"
	"nutrivision-go/internal/session"
)

type Credentials interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	BeginPasswordReset(ctx context.Context, email string) (string, error)
	CompletePasswordReset(ctx context.Context, email, token, newPassword string) error
}

type Sessions interface {
	Begin(ctx context.Context, userID uint) (string, error)
	Resume(ctx context.Context, token string) (*session.Session, error)
	End(ctx context.Context, token string) error
}

type Profiles interface {
	SaveProfile(ctx context.Context, userID uint, survey profiles.Survey) (float64, error)
	Latest(ctx context.Context, userID uint) (*models.Profile, error)
}

type Planner interface {
	GetOrGenerateDietPlan(ctx context.Context, userID uint, survey plans.DietSurvey, force bool) (*plans.Result, error)
	GetOrGenerateWorkoutPlan(ctx context.Context, userID uint, survey plans.WorkoutSurvey, force bool) (*plans.Result, error)
	History(ctx context.Context, userID uint, kind string) ([]plans.Entry, error)
	PastPlan(ctx context.Context, userID uint, kind string, index int) (*plans.Entry, error)
	CurrentPlan(ctx context.Context, userID uint, kind string) (*plans.Entry, error)
}

type Feedback interface {
	CurrentPlan(ctx context.Context, userID uint) (*models.DietPlan, error)
	Record(ctx context.Context, userID uint, in feedback.Input) (*models.DietFeedback, error)
}

type Vision interface {
	CheckFreshness(ctx context.Context, raw []byte) (string, error)
	IdentifyDish(ctx context.Context, raw []byte) (string, error)
}

type Dashboard interface {
	Summary(ctx context.Context, userID uint) (*dashboard.Summary, error)
	Export(ctx context.Context, userID uint, w io.Writer) error
}

// Deps are the components served over HTTP.
type Deps struct {
	Config      *config.Config
	Log         *logrus.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Credentials Credentials
	Sessions    Sessions
	Profiles    Profiles
	Planner     Planner
	Feedback    Feedback
	Vision      Vision
	Dashboard   Dashboard
}

type Server struct {
	Deps
	limiter *userLimiter
}

func NewServer(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(d.Config))
	r.Use(requestLogger(d.Log, d.Metrics))

	s := &Server{Deps: d, limiter: newUserLimiter(d.Config.RateLimitRPS, d.Config.RateLimitBurst)}

	// Auth
	r.POST("/v1/auth/signup", s.authSignup)
	r.POST("/v1/auth/login", s.authLogin)
	r.POST("/v1/auth/password/forgot", s.authForgotPassword)
	r.POST("/v1/auth/password/reset", s.authResetPassword)

	// Protected Routes (session token)
	authorized := r.Group("/v1")
	authorized.Use(s.requireSession())
	{
		authorized.POST("/auth/logout", s.authLogout)

		authorized.GET("/profile", s.getProfile)
		authorized.POST("/profile", s.saveProfile)

		authorized.GET("/dashboard", s.getDashboard)
		authorized.GET("/dashboard/export", s.exportDashboard)

		authorized.POST("/diet-plan", s.rateLimit(), s.dietPlan)
		authorized.GET("/diet-plans", s.listPlans(plans.KindDiet))
		authorized.GET("/diet-plans/:index/download", s.downloadPastPlan(plans.KindDiet))
		authorized.POST("/workout-plan", s.rateLimit(), s.workoutPlan)
		authorized.GET("/workout-plans", s.listPlans(plans.KindWorkout))
		authorized.GET("/workout-plans/:index/download", s.downloadPastPlan(plans.KindWorkout))
		authorized.GET("/plans/current/:kind/download", s.downloadCurrentPlan)

		authorized.GET("/feedback/plan", s.feedbackPlan)
		authorized.POST("/feedback", s.recordFeedback)

		authorized.POST("/vision/freshness", s.rateLimit(), s.visionFreshness)
		authorized.POST("/vision/dish", s.rateLimit(), s.visionDish)
	}

	r.GET("/", s.home)
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

var sections = []string{
	"Home", "Sign Up", "Login", "Forgot Password", "Dashboard", "User Profile",
	"Diet Plan", "Past Diet Plans", "Workout Plan", "Past Workout Plans",
	"Freshness Checker", "Dish Identifier", "Rate Diet Plan", "Logout",
}

// GET /
func (s *Server) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name": "Nutrivision AI",
		"description": "A health and wellness assistant that personalizes meal plans, workout routines " +
			"and food quality analysis. Sign up or log in to begin.",
		"features": []string{
			"Personal health profiles",
			"AI-generated diet and workout plans",
			"Image-based food freshness & dish identification",
			"Dashboard with health insights",
		},
		"sections": sections,
	})
}
