package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/middleware"
	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/repository"
	"github.com/noah-isme/sma-dashboard/internal/service"
	"github.com/noah-isme/sma-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-dashboard/pkg/middleware/requestid"
)

// RouterDeps collects what the API router needs.
type RouterDeps struct {
	DB             *sqlx.DB
	Cache          *service.CacheService
	Metrics        *service.MetricsService
	Tokens         *service.TokenService
	Validator      *validator.Validate
	Logger         *zap.Logger
	Checks         map[string]Pinger
	AllowedOrigins []string
	APIPrefix      string
	DevTokens      bool
}

// NewRouter builds the gin engine with every resource mounted under the API
// prefix behind bearer auth.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = service.NewValidator()
	}
	if deps.APIPrefix == "" {
		deps.APIPrefix = "/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	ops := NewMetricsHandler(deps.Metrics, deps.Checks, deps.Logger)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if deps.DevTokens {
		r.POST("/dev/token", NewTokenHandler(deps.Tokens).Issue)
	}

	api := r.Group(deps.APIPrefix, middleware.JWT(deps.Tokens))
	mount[models.Batch](api, deps, models.BatchResource)
	mount[models.Class](api, deps, models.ClassResource)
	mount[models.Division](api, deps, models.DivisionResource)
	mount[models.Section](api, deps, models.SectionResource)
	mount[models.Subject](api, deps, models.SubjectResource)
	mount[models.School](api, deps, models.SchoolResource)
	mount[models.Teacher](api, deps, models.TeacherResource)
	mount[models.Student](api, deps, models.StudentResource)
	mount[models.Role](api, deps, models.RoleResource)

	return r
}

func mount[T any, P interface {
	*T
	models.Entity
}](group *gin.RouterGroup, deps RouterDeps, res models.Resource) {
	repo := repository.NewResourceRepository[T, P](deps.DB, res)
	svc := service.NewResourceService[T, P](res, repo, deps.Cache, deps.Metrics, deps.Validator, deps.Logger)
	NewResourceHandler(svc).Register(group.Group("", middleware.Audit(deps.Logger, res.Name)))
}
