package service

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"

	"animal-shelter/internal/core/errs"
)

var (
	validate = validator.New()

	adoptionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_adoption_events_total",
			Help: "Adoption workflow events (created, returned, reactivated, deleted, placeholder)",
		},
		[]string{"event"},
	)
)

func init() { prometheus.MustRegister(adoptionEvents) }

// fields 收集字段级校验错误
type fields map[string]string

func (f fields) required(name, v string) {
	if strings.TrimSpace(v) == "" {
		f[name] = "required"
	}
}

func (f fields) requiredPtr(name string, v *string) {
	if v != nil {
		f.required(name, *v)
	}
}

func (f fields) email(name, v string) {
	if v = strings.TrimSpace(v); v != "" && validate.Var(v, "email") != nil {
		f[name] = "invalid email"
	}
}

func (f fields) date(name, v string) time.Time {
	t, ok := parseDate(v)
	if !ok {
		f[name] = "invalid date"
	}
	return t
}

func (f fields) datePtr(name string, v *string) *time.Time {
	if v == nil {
		return nil
	}
	t := f.date(name, *v)
	return &t
}

func (f fields) err() error {
	if len(f) == 0 {
		return nil
	}
	return errs.Validation("invalid input", f)
}

// parseDate 支持 YYYY-MM-DD、RFC3339 等常见格式；空串返回零值
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func orNow(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// columns 记录 patch 真正改到的列，只写这些列
type columns []string

func (c *columns) str(col string, dst *string, v *string) {
	if v != nil {
		setStr(dst, v)
		*c = append(*c, col)
	}
}

func (c *columns) add(col string) { *c = append(*c, col) }

func utcNow() time.Time { return time.Now().UTC() }
