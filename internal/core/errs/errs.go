// Package errs is the error taxonomy shared by services and transport.
package errs

import (
	"errors"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string // 字段级校验信息
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, fields map[string]string) error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

// Field 单字段校验失败
func Field(name, msg string) error {
	return Validation("invalid input", map[string]string{name: msg})
}

func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Error{Kind: KindConflict, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Persistence wraps a store failure. Duplicate-key violations become conflicts.
func Persistence(msg string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if IsDupKey(err) {
		return &Error{Kind: KindConflict, Msg: "duplicate record", Err: err}
	}
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, k Kind) bool { return KindOf(err) == k }

// IsDupKey 不依赖具体驱动的错误类型
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
