package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 模块可选择实现其中一个或多个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// AdminPublicModule 挂在 /admin/v1 但不经过 JWT，例如登录
type AdminPublicModule interface{ MountAdminPublic(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 由 main 组装后分别交给两个 engine
type Registry struct {
	mods []any
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

func (r *Registry) Register(mod any) { r.mods = append(r.mods, mod) }

func (r *Registry) sorted() []any {
	mods := append([]any(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	return mods
}

// MountAPI 在 /api/v1 上挂载所有 API 模块
func (r *Registry) MountAPI(api *gin.RouterGroup) {
	for _, m := range r.sorted() {
		if am, ok := m.(APIModule); ok {
			am.MountAPI(api)
		}
	}
}

// MountAdmin public 不鉴权，authed 已挂 AuthJWT
func (r *Registry) MountAdmin(public, authed *gin.RouterGroup) {
	for _, m := range r.sorted() {
		if pm, ok := m.(AdminPublicModule); ok {
			pm.MountAdminPublic(public)
		}
		if am, ok := m.(AdminModule); ok {
			am.MountAdmin(authed)
		}
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
