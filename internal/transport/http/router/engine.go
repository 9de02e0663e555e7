package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"animal-shelter/internal/core/server"
	mdw "animal-shelter/internal/transport/http/middleware"
	resp "animal-shelter/internal/transport/http/response"
)

// Limits 两个 engine 共用的保护参数
type Limits struct {
	RPS         rate.Limit
	Burst       int
	PerIPRPS    rate.Limit
	PerIPBurst  int
	Concurrency int64
	MaxBody     int64
	Timeout     time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		RPS: 200, Burst: 400,
		PerIPRPS: 20, PerIPBurst: 40,
		Concurrency: 300,
		MaxBody:     16 << 20,
		Timeout:     10 * time.Second,
	}
}

// Ping 健康检查探测的下游，例如 DB / redis
type Ping func(*gin.Context) error

func newEngine(l *zap.Logger, name string, lim Limits, pings map[string]Ping) *gin.Engine {
	r := server.NewRouter(l, func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "internal error"))
	})

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(lim.RPS, lim.Burst),
		mdw.RateLimitPerIP(lim.PerIPRPS, lim.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBody),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(name),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		checks := gin.H{}
		ok := true
		for k, p := range pings {
			if err := p(c); err != nil {
				l.Warn("health check failed", zap.String("dep", k), zap.Error(err))
				checks[k] = "down"
				ok = false
				continue
			}
			checks[k] = "ok"
		}
		if !ok {
			c.JSON(http.StatusOK, resp.ErrorWith(resp.CodeUnavailable, "", checks))
			return
		}
		c.JSON(http.StatusOK, resp.OK(checks))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
