package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := Errorf(KindInsufficientStock, "only %d left", 2)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrSourceNotFound)
	assert.Equal(t, "only 2 left", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInfrastructure, cause, "read %s", "stock")

	assert.Equal(t, "read stock: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInfrastructure)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Errorf(KindOrderNotFound, "order o-1 not found"))

	assert.Equal(t, KindOrderNotFound, KindOf(wrapped))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("boom")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "order o-1 not found", MessageOf(Errorf(KindOrderNotFound, "order o-1 not found")))
	assert.Equal(t, "internal error", MessageOf(errors.New("dial tcp 10.0.0.1:5432")))
}
