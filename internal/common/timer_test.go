package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_StopRecordsDuration(t *testing.T) {
	timer := NewNamedTimer("decode")
	time.Sleep(time.Millisecond)
	d := timer.Stop()

	assert.Greater(t, d, time.Duration(0))
	assert.Equal(t, d, timer.Duration())
	assert.Equal(t, "decode", timer.Name())
}

func TestTimer_Unnamed(t *testing.T) {
	timer := NewTimer()
	timer.Stop()
	assert.Empty(t, timer.Name())
	assert.Equal(t, timer.Duration().String(), timer.String())
}

func TestTimer_StringWithName(t *testing.T) {
	timer := NewNamedTimer("encode")
	timer.Stop()
	assert.Contains(t, timer.String(), "encode: ")
}

func TestTimer_StopAndLogNilLogger(t *testing.T) {
	timer := NewNamedTimer("stage")
	assert.NotPanics(t, func() { timer.StopAndLog(nil) })
	assert.Greater(t, timer.Duration(), time.Duration(0))
}
