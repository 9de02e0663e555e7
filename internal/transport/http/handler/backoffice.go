package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/service"
	"animal-shelter/internal/transport/http/ez"
)

// Auth POST /auth/login 不需要 token，GET /me 需要
type Auth struct{ Svc *service.AuthService }

func (h *Auth) Priority() int { return 1 }

func (h *Auth) MountAdminPublic(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[service.LoginInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.Session, error) {
			return h.Svc.Authenticate(c.Request.Context(), *in)
		},
	})
}

func (h *Auth) MountAdmin(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.Svc.Me(c.Request.Context(), c.GetString(ez.KeyUserID))
		},
	})
}

type Dashboard struct{ Svc *service.DashboardService }

func (h *Dashboard) Priority() int { return 50 }

type statsQuery struct {
	Since  string `form:"since"` // YYYY-MM-DD
	Months int    `form:"months" binding:"omitempty,min=1,max=120"`
}

func (h *Dashboard) MountAdmin(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[statsQuery, *service.Stats]{
		Method: http.MethodGet,
		Path:   "/dashboard/stats",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *statsQuery) (*service.Stats, error) {
			start := h.Svc.WindowStart(in.Months)
			if s := strings.TrimSpace(in.Since); s != "" {
				t, err := time.Parse(time.DateOnly, s)
				if err != nil {
					return nil, errs.Field("since", "expected YYYY-MM-DD")
				}
				start = t
			}
			return h.Svc.GetStats(c.Request.Context(), start)
		},
	})
}

type Users struct{ Svc *service.UserService }

func (h *Users) Priority() int { return 90 }

type usersQuery struct {
	Offset      int    `form:"offset,default=0" binding:"min=0"`
	Limit       int    `form:"limit,default=20"`
	Q           string `form:"q"`            // 按 email/name 模糊搜
	WithDeleted bool   `form:"with_deleted"` // 是否包含软删
}

type usersOut struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (h *Users) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)
	ez.RegisterAction(e, ez.Action[usersQuery, usersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *usersQuery) (usersOut, error) {
			items, total, err := h.Svc.List(c.Request.Context(),
				domain.ListParams{Offset: in.Offset, Limit: in.Limit, Q: in.Q}, in.WithDeleted)
			return usersOut{Total: total, Items: items}, err
		},
	})

	// 封禁（软删）
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.Svc.Ban(c.Request.Context(), c.GetString(ez.KeyUserID), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
