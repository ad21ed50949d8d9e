package errs_test

import (
	"context"
	"errors"
	"testing"

	"kitchen/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", "42")

		assert.Equal(t, "order", err.ParamName)
		assert.Equal(t, "object not found: 42", err.Error())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("row missing")
		err := errs.NewObjectNotFoundErrorWithCause("session", "s-1", cause)

		assert.Equal(t,
			"object not found: param is: session, ID is: s-1 (cause: row missing)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("quantity", errors.New("must be positive"))

		assert.Equal(t, "value is invalid: quantity (cause: must be positive)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("required", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("items")

		assert.Equal(t, "value is required: items", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("out of range sanitizes newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("station", "grill\nline", 1, 32)

		assert.Equal(t, "value is invalid: grill line is station, min value is 1, max value is 32", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestTransientStoreError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := errs.NewTransientStoreError("claim order", cause)

	assert.Equal(t, "transient store error: claim order (cause: context deadline exceeded)", err.Error())
	require.ErrorIs(t, err, errs.ErrTransientStore)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, errs.IsTransient(err))
	assert.False(t, errs.IsTransient(errs.NewValueIsRequiredError("x")))

	var target *errs.TransientStoreError
	require.ErrorAs(t, errors.Join(errors.New("outer"), err), &target)
	assert.Equal(t, "claim order", target.Op)
}

func TestStaleSessionError(t *testing.T) {
	err := errs.NewStaleSessionError("abc")

	assert.Equal(t, "session is stale: abc", err.Error())
	require.ErrorIs(t, err, errs.ErrStaleSession)
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("order status")
	assert.Equal(t, "version is invalid: order status", err.Error())
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)

	withCause := errs.NewVersionIsInvalidErrorWithCause("order status", errors.New("ready expected"))
	assert.Equal(t, "version is invalid: order status (cause: ready expected)", withCause.Error())
}
