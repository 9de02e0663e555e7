package ez

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"animal-shelter/internal/domain"
)

// CrudService 实体服务的统一形状；C 创建入参，U 更新入参（指针字段，nil 不改）
type CrudService[T, C, U any] interface {
	Create(ctx context.Context, in C) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, p domain.ListParams) ([]T, int64, error)
	Update(ctx context.Context, id string, in U) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Hook
type CrudHooks struct {
	AfterWrite func(c *gin.Context, id string) // 增删改成功后，例如清缓存
}

type CrudConfig[T, C, U any] struct {
	Group   *gin.RouterGroup // 已鉴权分组
	Path    string
	Service CrudService[T, C, U]
	Hooks   CrudHooks

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// PageParams ?page=1&size=20&q=xxx
func PageParams(c *gin.Context) (domain.ListParams, int, int) {
	page := atoiDefault(c.Query("page"), 1)
	size := atoiDefault(c.Query("size"), 20)
	if size > 100 {
		size = 20
	}
	return domain.ListParams{Offset: (page - 1) * size, Limit: size, Q: c.Query("q")}, page, size
}

// Crud 注册 POST / GET / GET :id / PUT :id / DELETE :id
func Crud[T, C, U any](cfg CrudConfig[T, C, U]) {
	// 默认放开所有操作
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete = true, true, true, true, true
	}
	svc := cfg.Service
	written := func(c *gin.Context, id string) {
		if cfg.Hooks.AfterWrite != nil {
			cfg.Hooks.AfterWrite(c, id)
		}
	}

	if cfg.AllowCreate {
		cfg.Group.POST(cfg.Path, func(c *gin.Context) {
			var in C
			if err := c.ShouldBindJSON(&in); err != nil {
				Fail(c, err)
				return
			}
			Reply(c, func(c *gin.Context) (*T, error) {
				m, err := svc.Create(c.Request.Context(), in)
				if err == nil {
					written(c, "")
				}
				return m, err
			})
		})
	}

	if cfg.AllowList {
		cfg.Group.GET(cfg.Path, func(c *gin.Context) {
			p, page, size := PageParams(c)
			Reply(c, func(c *gin.Context) (gin.H, error) {
				items, total, err := svc.List(c.Request.Context(), p)
				if err != nil {
					return nil, err
				}
				return gin.H{"list": items, "total": total, "page": page, "size": size}, nil
			})
		})
	}

	if cfg.AllowGet {
		cfg.Group.GET(cfg.Path+"/:id", func(c *gin.Context) {
			Reply(c, func(c *gin.Context) (*T, error) {
				return svc.Get(c.Request.Context(), c.Param("id"))
			})
		})
	}

	if cfg.AllowUpdate {
		cfg.Group.PUT(cfg.Path+"/:id", func(c *gin.Context) {
			var in U
			if err := c.ShouldBindJSON(&in); err != nil {
				Fail(c, err)
				return
			}
			id := c.Param("id")
			Reply(c, func(c *gin.Context) (*T, error) {
				m, err := svc.Update(c.Request.Context(), id, in)
				if err == nil {
					written(c, id)
				}
				return m, err
			})
		})
	}

	if cfg.AllowDelete {
		cfg.Group.DELETE(cfg.Path+"/:id", func(c *gin.Context) {
			id := c.Param("id")
			Reply(c, func(c *gin.Context) (gin.H, error) {
				if err := svc.Delete(c.Request.Context(), id); err != nil {
					return nil, err
				}
				written(c, id)
				return gin.H{"id": id}, nil
			})
		})
	}
}
