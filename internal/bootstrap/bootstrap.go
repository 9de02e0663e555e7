// Package bootstrap wires config into the store, cache, services and HTTP
// modules shared by cmd/api, cmd/admin and cmd/shelterctl.
package bootstrap

import (
	"fmt"
	"time"
	_ "time/tzdata" // 容器里没有 zoneinfo 时 America/Sao_Paulo 也能加载

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"animal-shelter/internal/core/auth"
	"animal-shelter/internal/core/cache"
	"animal-shelter/internal/core/config"
	"animal-shelter/internal/core/database"
	"animal-shelter/internal/core/logger"
	"animal-shelter/internal/repo"
	"animal-shelter/internal/service"
	"animal-shelter/internal/transport/http/ez"
	"animal-shelter/internal/transport/http/handler"
	"animal-shelter/internal/transport/http/router"
)

type Services struct {
	Animals    *service.AnimalService
	Adopters   *service.AdopterService
	Adoptions  *service.AdoptionService
	VetRecords *service.VetRecordService
	Volunteers *service.VolunteerService
	Donations  *service.DonationService
	Dashboard  *service.DashboardService
	Auth       *service.AuthService
	Users      *service.UserService
}

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Store *repo.Store
	Cache *cache.Cache
	JWT   *auth.JWTer
	Svc   Services
}

func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
}

// New 打开 DB（按配置迁移）、redis，组装服务
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}
	return Assemble(cfg, log, db, cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)), nil
}

// Assemble 测试里直接传 sqlite 内存库
func Assemble(cfg *config.Config, log *zap.Logger, db *gorm.DB, c *cache.Cache) *App {
	store := repo.NewStore(db)
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	totp := &auth.TOTP{Issuer: cfg.Auth.TOTPIssuer}

	loc, err := time.LoadLocation(cfg.Shelter.Timezone)
	if err != nil {
		log.Warn("unknown shelter timezone, using UTC", zap.String("tz", cfg.Shelter.Timezone), zap.Error(err))
		loc = time.UTC
	}

	adoptions := service.NewAdoptionService(store, log.Named("adoption"))
	return &App{
		Cfg: cfg, Log: log, DB: db, Store: store, Cache: c, JWT: jwter,
		Svc: Services{
			Animals:    service.NewAnimalService(store, adoptions, log.Named("animal")),
			Adopters:   service.NewAdopterService(store, log.Named("adopter")),
			Adoptions:  adoptions,
			VetRecords: service.NewVetRecordService(store, log.Named("vet")),
			Volunteers: service.NewVolunteerService(store, log.Named("volunteer")),
			Donations:  service.NewDonationService(store, log.Named("donation")),
			Dashboard: service.NewDashboardService(store, log.Named("dashboard"), service.DashboardOptions{
				WindowMonths:     cfg.Shelter.DashboardWindowMonths,
				ActiveVolunteers: cfg.Shelter.ActiveVolunteers,
				Location:         loc,
			}),
			Auth:  service.NewAuthService(store, jwter, totp, cfg.Auth.Require2FA, log.Named("auth")),
			Users: service.NewUserService(store, log.Named("user")),
		},
	}
}

func (a *App) Registry() *router.Registry {
	s := a.Svc
	return router.NewRegistry(
		&handler.Auth{Svc: s.Auth},
		&handler.Animals{
			Svc: s.Animals, Vets: s.VetRecords, Cache: a.Cache,
			TTL: time.Duration(a.Cfg.Cache.PublicTTLSec) * time.Second, Log: a.Log,
		},
		&handler.Adoptions{Svc: s.Adoptions, Cache: a.Cache, Log: a.Log},
		&handler.Adopters{Svc: s.Adopters},
		&handler.VetRecords{Svc: s.VetRecords},
		&handler.Volunteers{Svc: s.Volunteers},
		&handler.Donations{Svc: s.Donations},
		&handler.Dashboard{Svc: s.Dashboard},
		&handler.Users{Svc: s.Users},
	)
}

func (a *App) Pings() map[string]router.Ping {
	return map[string]router.Ping{
		"db": func(c *gin.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c.Request.Context())
		},
		"redis": func(c *gin.Context) error { return a.Cache.Ping(c.Request.Context()) },
	}
}

func (a *App) APIEngine() *gin.Engine {
	ez.Logger = a.Log.Named("http")
	return router.NewAPIEngine(a.Log, a.Registry(), router.DefaultLimits(), a.Pings())
}

func (a *App) AdminEngine() *gin.Engine {
	ez.Logger = a.Log.Named("http")
	return router.NewAdminEngine(a.Log, a.JWT, a.Registry(), router.DefaultLimits(), a.Pings())
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("close redis", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Logger 按配置建 logger，并把标准库 log 接到 zap
func Logger(cfg *config.Config) (*zap.Logger, func()) {
	l, cleanup := logger.FromConfig(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Filename:   cfg.Log.File.Filename,
		MaxSizeMB:  cfg.Log.File.MaxSizeMB,
		MaxBackups: cfg.Log.File.MaxBackups,
		MaxAgeDays: cfg.Log.File.MaxAgeDays,
		Compress:   cfg.Log.File.Compress,
	})
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	return l, func() { undo(); cleanup() }
}
