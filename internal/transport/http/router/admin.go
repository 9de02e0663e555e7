package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animal-shelter/internal/core/auth"
	"animal-shelter/internal/domain"
	mdw "animal-shelter/internal/transport/http/middleware"
)

// NewAdminEngine 后台：/admin/v1，除登录外统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, lim Limits, pings map[string]Ping) *gin.Engine {
	r := newEngine(l, "admin", lim, pings)

	v1 := r.Group("/admin/v1")
	authed := v1.Group("")
	authed.Use(mdw.AuthJWT(jwter, domain.RoleAdmin))

	reg.MountAdmin(v1, authed)
	return r
}
