package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"animal-shelter/internal/transport/http/ez"
)

const KeyRequestID = ez.KeyRequestID

const maxRequestIDLen = 64

// RequestID 沿用上游传来的 id（网关/前端），不合规则重新生成；
// 只接受 [A-Za-z0-9._-]，防止换行之类的字符进日志
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.':
		default:
			return false
		}
	}
	return true
}
