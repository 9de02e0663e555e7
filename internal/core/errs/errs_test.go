package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistence_ClassifiesStoreErrors(t *testing.T) {
	assert.Nil(t, Persistence("x", nil))

	err := Persistence("create adopter failed", errors.New("UNIQUE constraint failed: adopters.phone"))
	assert.Equal(t, KindConflict, KindOf(err))

	err = Persistence("create adopter failed", errors.New("connection refused"))
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, "create adopter failed", err.Error())

	nf := NotFound("animal not found")
	assert.Same(t, nf, Persistence("wrapped", nf))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("tx: %w", Conflict("animal already adopted"))
	assert.True(t, Is(err, KindConflict))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestField(t *testing.T) {
	err := Field("phone", "required")
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, map[string]string{"phone": "required"}, e.Fields)
	assert.Equal(t, "validation", e.Kind.String())
}
