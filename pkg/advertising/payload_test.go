package advertising

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadFullContent(t *testing.T) {
	payload, err := Payload(Options{
		Name:       "env",
		Services:   []uint16{0x181A},
		Appearance: 5696,
	})
	require.NoError(t, err)

	expected := []byte{
		0x02, 0x01, 0x06, // flags: general discoverable, BR/EDR not supported
		0x04, 0x09, 'e', 'n', 'v', // complete local name
		0x03, 0x03, 0x1A, 0x18, // complete 16-bit UUIDs, little-endian
		0x03, 0x19, 0x40, 0x16, // appearance 5696 = 0x1640, little-endian
	}
	assert.Equal(t, expected, payload)
}

func TestPayloadOmitsEmptySections(t *testing.T) {
	payload, err := Payload(Options{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x06, 0x02, 0x09, 'x'}, payload)

	payload, err = Payload(Options{Services: []uint16{0x180D, 0x180F}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x06, 0x05, 0x03, 0x0D, 0x18, 0x0F, 0x18}, payload)
}

func TestPayloadCustomFlags(t *testing.T) {
	payload, err := Payload(Options{Flags: FlagGeneralDiscoverable})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x02}, payload)
}

func TestPayloadTooLong(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "long device name",
			opts: Options{Name: "an-unreasonably-long-device-name-here", Services: []uint16{0x181A}},
		},
		{
			name: "too many services",
			opts: Options{Services: []uint16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Payload(tt.opts)
			assert.Error(t, err)
			assert.Nil(t, payload)
		})
	}
}

func TestPayloadFitsExactLimit(t *testing.T) {
	// 3 (flags) + 2+24 (name) + 2 = 31 bytes exactly with a 24-byte name
	// and no services or appearance.
	payload, err := Payload(Options{Name: "abcdefghijklmnopqrstuvwxyz"[:26]})
	require.NoError(t, err)
	assert.Equal(t, MaxPayloadSize, len(payload))
}
