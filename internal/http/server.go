package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/http/middleware"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
)

// JobQueue is the batch side of the API.
type JobQueue interface {
	Enqueue(ctx context.Context, clientID int64, texts []string, region string) (string, error)
	Get(ctx context.Context, clientID int64, id string) (model.Job, error)
}

// Deps are the collaborators the HTTP bridge routes to.
type Deps struct {
	Phone   *phone.Service
	Jobs    JobQueue
	Numbers repository.CHNumbersRepository
	Clients repository.ClientsRepository
	Redis   *redis.Client
	Log     *zap.Logger

	DefaultRPS int
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Server{e: newEcho(d), log: d.Log}
}

type requestValidator struct {
	v *validator.Validate
}

func (r *requestValidator) Validate(i any) error { return r.v.Struct(i) }

func newEcho(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonlog.WARN)
	e.Validator = &requestValidator{v: validator.New()}
	e.Use(echoMid.Recover(), echoMid.Logger())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	authMW := middleware.APIKeyMiddleware(d.Clients, d.Log)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          d.Redis,
		DefaultRPS:     d.DefaultRPS,
		KeyPrefix:      "rl:client:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	h := &handlers{phone: d.Phone, jobs: d.Jobs, numbers: d.Numbers, log: d.Log}

	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/parse", h.parse)
	v1.POST("/parse-list", h.parseList)
	v1.POST("/format", h.format)
	v1.POST("/validate", h.validate)
	v1.GET("/regions", h.regions)
	v1.GET("/carrier-region", h.carrierRegion)

	v1.POST("/jobs", h.createJob)
	v1.GET("/jobs/:id", h.getJob)
	v1.GET("/reports/numbers", h.listNumbers)

	return e
}

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
