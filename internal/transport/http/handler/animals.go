package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animal-shelter/internal/core/cache"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/service"
	"animal-shelter/internal/transport/http/ez"
)

const publicAnimalsNS = "public:animals"

// Animals 公开站点列表/详情 + 后台 CRUD
type Animals struct {
	Svc   *service.AnimalService
	Vets  *service.VetRecordService
	Cache *cache.Cache
	TTL   time.Duration
	Log   *zap.Logger
}

func (h *Animals) Priority() int { return 10 }

type publicQuery struct {
	Species string `form:"species" binding:"max=64"`
	Status  string `form:"status" binding:"omitempty,oneof=available adopted in-treatment"`
}

func (h *Animals) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)
	ez.RegisterAction(e, ez.Action[publicQuery, []domain.Animal]{
		Method: http.MethodGet,
		Path:   "/animals",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *publicQuery) ([]domain.Animal, error) {
			key := cache.Key(publicAnimalsNS, in.Species, in.Status)
			out, err := cache.GetOrLoadJSON(h.Cache, c.Request.Context(), key, h.TTL,
				func(ctx context.Context) (*[]domain.Animal, error) {
					items, err := h.Svc.ListPublic(ctx, in.Species, in.Status)
					return &items, err
				})
			if err != nil || out == nil {
				return nil, err
			}
			return *out, nil
		},
	})
	e.GET("/animals/:id", func(c *gin.Context) (any, error) {
		return h.Svc.Get(c.Request.Context(), c.Param("id"))
	})
}

func (h *Animals) MountAdmin(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.Animal, service.CreateAnimalInput, service.UpdateAnimalInput]{
		Group:   g,
		Path:    "/animals",
		Service: h.Svc,
		Hooks:   ez.CrudHooks{AfterWrite: h.invalidate},
	})
	ez.New(g).GET("/animals/:id/vet-records", func(c *gin.Context) (any, error) {
		return h.Vets.ListByAnimal(c.Request.Context(), c.Param("id"))
	})
}

// invalidate 公开列表缓存失效；失败只记日志，TTL 兜底
func (h *Animals) invalidate(c *gin.Context, _ string) {
	invalidatePublic(c.Request.Context(), h.Cache, h.Log)
}

func invalidatePublic(ctx context.Context, c *cache.Cache, l *zap.Logger) {
	if err := c.InvalidatePrefix(ctx, publicAnimalsNS+":"); err != nil {
		l.Warn("invalidate public animals cache failed", zap.Error(err))
	}
}
