package bledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeUUID verifies that NormalizeUUID correctly handles various UUID formats
func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "16-bit short form",
			input:    "181a",
			expected: "181a",
		},
		{
			name:     "16-bit with 0x prefix",
			input:    "0x181A",
			expected: "181a",
		},
		{
			name:     "Full Bluetooth SIG UUID with dashes",
			input:    "0000181a-0000-1000-8000-00805f9b34fb",
			expected: "181a",
		},
		{
			name:     "Full Bluetooth SIG UUID without dashes",
			input:    "0000181a00001000800000805f9b34fb",
			expected: "181a",
		},
		{
			name:     "Custom 128-bit UUID (not SIG base)",
			input:    "6e400001-b5a3-f393-e0a9-e50e24dcca9e",
			expected: "6e400001b5a3f393e0a9e50e24dcca9e",
		},
		{
			name:     "UUID with braces",
			input:    "{0000181a-0000-1000-8000-00805f9b34fb}",
			expected: "181a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeUUID(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLookupService(t *testing.T) {
	tests := []struct {
		name     string
		uuid     string
		expected string
	}{
		{
			name:     "Environmental Sensing - short form",
			uuid:     "181a",
			expected: "Environmental Sensing",
		},
		{
			name:     "Environmental Sensing - with 0x prefix",
			uuid:     "0x181A",
			expected: "Environmental Sensing",
		},
		{
			name:     "Environmental Sensing - full SIG UUID",
			uuid:     "0000181a-0000-1000-8000-00805f9b34fb",
			expected: "Environmental Sensing",
		},
		{
			name:     "Heart Rate - short form",
			uuid:     "180d",
			expected: "Heart Rate",
		},
		{
			name:     "Unknown service",
			uuid:     "ffff",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LookupService(tt.uuid))
		})
	}
}

func TestLookupCharacteristic(t *testing.T) {
	assert.Equal(t, "Temperature", LookupCharacteristic("2a6e"))
	assert.Equal(t, "Pressure", LookupCharacteristic("0x2A6D"))
	assert.Equal(t, "Humidity", LookupCharacteristic("00002a6f-0000-1000-8000-00805f9b34fb"))
	assert.Equal(t, "String", LookupCharacteristic("2a3d"))
	assert.Equal(t, "", LookupCharacteristic("beef"))
}

func TestName16Lookups(t *testing.T) {
	assert.Equal(t, "Environmental Sensing", ServiceName16(0x181A))
	assert.Equal(t, "Temperature", CharacteristicName16(0x2A6E))
	assert.Equal(t, "", ServiceName16(0xFFFF))
}

func TestShortUUID(t *testing.T) {
	assert.Equal(t, "0x181A", ShortUUID(0x181A))
	assert.Equal(t, "0x2A6E", ShortUUID(0x2A6E))
}

func TestNormalizeUUIDs(t *testing.T) {
	got := NormalizeUUIDs([]string{"0x181A", "2A6E"})
	assert.Equal(t, []string{"181a", "2a6e"}, got)
}
