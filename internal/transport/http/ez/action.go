package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "animal-shelter/internal/transport/http/response"
)

// EZ 轻封装：handler 返回 (data, err)，统一写信封
type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

func (e EZ) Group() *gin.RouterGroup { return e.g }

func (e EZ) GET(path string, h func(c *gin.Context) (any, error)) {
	e.g.GET(path, func(c *gin.Context) { Reply(c, h) })
}

func POST[T any](e EZ, path string, h func(c *gin.Context, in T) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			Fail(c, err)
			return
		}
		Reply(c, func(c *gin.Context) (any, error) { return h(c, in) })
	})
}

// Reply 执行并写响应
func Reply[O any](c *gin.Context, h func(c *gin.Context) (O, error)) {
	out, err := h(c)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// Action 非 CRUD 接口一行注册：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/users/:id/ban"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString(KeyUserID) == "" {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(KeyRole), a.Roles) {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, bindErr)
			return
		}

		// 3) 执行 + 4) 统一错误映射
		Reply(c, func(c *gin.Context) (O, error) { return a.Handler(c, &in) })
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// 上下文 key：userId / role 由 AuthJWT 写入，请求 id 由 RequestID 写入
const (
	KeyUserID    = "userId"
	KeyRole      = "role"
	KeyRequestID = "X-Request-ID"
)

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
