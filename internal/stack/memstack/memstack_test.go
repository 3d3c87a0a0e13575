package memstack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/envble/internal/stack"
)

func testService() *stack.Service {
	return stack.NewService(0x181A).
		AddCharacteristic("temperature", 0x2A6E, stack.PropertyRead|stack.PropertyNotify).
		AddCharacteristic("command", 0x2A3D, stack.PropertyRead|stack.PropertyWrite)
}

func TestEnableLifecycle(t *testing.T) {
	s := New()
	assert.False(t, s.Enabled())

	require.NoError(t, s.Enable())
	assert.True(t, s.Enabled())

	// Double enable is a state error.
	err := s.Enable()
	assert.ErrorIs(t, err, stack.ErrAlreadyEnabled)

	require.NoError(t, s.Disable())
	assert.False(t, s.Enabled())

	// A disabled stack cannot come back.
	assert.ErrorIs(t, s.Enable(), stack.ErrDisabled)
}

func TestRegisterRequiresEnable(t *testing.T) {
	s := New()
	_, err := s.RegisterService(testService())
	assert.ErrorIs(t, err, stack.ErrNotEnabled)
}

func TestRegisterAssignsHandlesInOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Enable())

	handles, err := s.RegisterService(testService())
	require.NoError(t, err)
	assert.Equal(t, []stack.ValueHandle{1, 2}, handles)

	// Second registration is rejected.
	_, err = s.RegisterService(testService())
	assert.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.Enable())
	handles, err := s.RegisterService(testService())
	require.NoError(t, err)

	require.NoError(t, s.Write(handles[0], []byte{1, 2, 3}))
	got, err := s.Read(handles[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// Unknown handle fails both ways.
	assert.ErrorIs(t, s.Write(99, nil), stack.ErrInvalidHandle)
	_, err = s.Read(99)
	assert.ErrorIs(t, err, stack.ErrInvalidHandle)
}

func TestNotifyRequiresConnection(t *testing.T) {
	s := New()
	require.NoError(t, s.Enable())
	handles, err := s.RegisterService(testService())
	require.NoError(t, err)

	err = s.Notify("aa:bb", handles[0])
	assert.ErrorIs(t, err, stack.ErrNoSuchConnection)

	s.SimulateConnect("aa:bb")
	require.NoError(t, s.Notify("aa:bb", handles[0]))
	assert.Equal(t, []Delivery{{Conn: "aa:bb", Handle: handles[0]}}, s.Notifications())
}

func TestIndicateDeliversDoneEvent(t *testing.T) {
	s := New()
	var events []stack.Event
	s.SetEventHandler(func(ev stack.Event) { events = append(events, ev) })

	require.NoError(t, s.Enable())
	handles, err := s.RegisterService(testService())
	require.NoError(t, err)

	s.SimulateConnect("aa:bb")
	require.NoError(t, s.Indicate("aa:bb", handles[0]))

	require.Len(t, events, 2) // connect + indicate-done
	done := events[1]
	assert.Equal(t, stack.EventIndicateDone, done.Kind)
	assert.Equal(t, stack.ConnID("aa:bb"), done.Conn)
	assert.Equal(t, handles[0], done.Handle)
	assert.Equal(t, stack.IndicateStatusOK, done.Status)
}

func TestSimulateCentralWrite(t *testing.T) {
	s := New()
	require.NoError(t, s.Enable())
	handles, err := s.RegisterService(testService())
	require.NoError(t, err)

	require.NoError(t, s.SimulateCentralWrite(handles[1], []byte("blink")))
	got, err := s.Read(handles[1])
	require.NoError(t, err)
	assert.Equal(t, []byte("blink"), got)
}

func TestAdvertiseRecording(t *testing.T) {
	s := New()
	require.NoError(t, s.Enable())

	opts := stack.AdvertiseOptions{Name: "env", Payload: []byte{1, 2}}
	require.NoError(t, s.Advertise(opts))
	require.NoError(t, s.Advertise(opts))
	assert.True(t, s.Advertising())
	assert.Len(t, s.AdvertiseCalls(), 2)

	require.NoError(t, s.StopAdvertising())
	assert.False(t, s.Advertising())
}

func TestErrorInjection(t *testing.T) {
	boom := errors.New("boom")

	s := New()
	s.FailEnable = boom
	assert.ErrorIs(t, s.Enable(), boom)

	s = New()
	require.NoError(t, s.Enable())
	s.FailRegister = boom
	_, err := s.RegisterService(testService())
	assert.ErrorIs(t, err, boom)
}
