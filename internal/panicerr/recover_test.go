package panicerr_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/jcorbin/goforth/internal/panicerr"
	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	errBoom := errors.New("boom")

	err := panicerr.Recover("ok", func() error { return nil })
	assert.NoError(t, err)

	err = panicerr.Recover("plain", func() error { return errBoom })
	assert.Equal(t, errBoom, err)

	err = panicerr.Recover("wrapped", func() error { panic(errBoom) })
	assert.True(t, panicerr.IsPanic(err))
	assert.True(t, errors.Is(err, errBoom), "panic value must unwrap")
	assert.Contains(t, panicerr.PanicStack(err), "goroutine")
	assert.EqualError(t, err, "wrapped panicked: boom")

	err = panicerr.Recover("exiter", func() error {
		runtime.Goexit()
		return nil
	})
	assert.True(t, panicerr.IsExit(err))
	assert.False(t, panicerr.IsPanic(err))
	assert.EqualError(t, err, "exiter called runtime.Goexit")
}
