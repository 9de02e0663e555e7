package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"animal-shelter/internal/core/errs"
	resp "animal-shelter/internal/transport/http/response"
)

// Logger 非业务错误（500）在这里记录，响应里不带原始错误
var Logger = zap.NewNop()

func init() {
	// 校验错误用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	}
}

// Fail errs.Kind → 信封 code
func Fail(c *gin.Context, err error) {
	c.JSON(http.StatusOK, toResp(c, err))
}

func toResp(c *gin.Context, err error) resp.Resp {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return resp.ErrorWith(resp.CodeBadRequest, "invalid input", gin.H{"fields": fieldMessages(ve)})
	}
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return resp.Error(resp.CodeBadRequest, "request body too large")
	case errors.As(err, &te):
		return resp.ErrorWith(resp.CodeBadRequest, "invalid input", gin.H{"fields": map[string]string{te.Field: "invalid type"}})
	case errors.As(err, &se), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return resp.Error(resp.CodeBadRequest, "malformed request body")
	}

	var e *errs.Error
	if !errors.As(err, &e) {
		Logger.Error("unhandled error", zap.String("rid", c.GetString(KeyRequestID)), zap.String("path", c.FullPath()), zap.Error(err))
		return resp.Error(resp.CodeServerError, "")
	}
	switch e.Kind {
	case errs.KindValidation:
		if len(e.Fields) > 0 {
			return resp.ErrorWith(resp.CodeBadRequest, e.Msg, gin.H{"fields": e.Fields})
		}
		return resp.Error(resp.CodeBadRequest, e.Msg)
	case errs.KindNotFound:
		return resp.Error(resp.CodeNotFound, e.Msg)
	case errs.KindConflict:
		return resp.Error(resp.CodeConflict, e.Msg)
	case errs.KindUnauthorized:
		return resp.Error(resp.CodeUnauthorized, e.Msg)
	}
	Logger.Error("request failed", zap.String("rid", c.GetString(KeyRequestID)), zap.String("path", c.FullPath()), zap.String("kind", e.Kind.String()), zap.Error(err))
	return resp.Error(resp.CodeServerError, "")
}

// fieldMessages 命名空间去掉顶层类型名和嵌入结构体名，例如 adopter.phone
func fieldMessages(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		parts := strings.Split(fe.Namespace(), ".")
		keep := parts[:0]
		for _, p := range parts[1:] {
			if p != "" && !unicode.IsUpper([]rune(p)[0]) {
				keep = append(keep, p)
			}
		}
		name := strings.Join(keep, ".")
		if name == "" {
			name = fe.Field()
		}
		out[name] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "numeric":
		return "must be numeric"
	case "min", "gte":
		return "must be >= " + fe.Param()
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		}
		return "must be <= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "len":
		return fmt.Sprintf("must have %s characters", fe.Param())
	}
	return "invalid value"
}
