package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAPIEngine 公开站点：/api/v1，只读
func NewAPIEngine(l *zap.Logger, reg *Registry, lim Limits, pings map[string]Ping) *gin.Engine {
	r := newEngine(l, "api", lim, pings)
	reg.MountAPI(r.Group("/api/v1"))
	return r
}
