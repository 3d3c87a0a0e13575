// Package bledb resolves well-known Bluetooth SIG assigned numbers to
// human-readable names for logging and status output, and normalizes UUID
// strings to a canonical comparable form.
package bledb

import (
	"fmt"
	"strings"
)

// sigBaseSuffix is the tail of the Bluetooth SIG base UUID
// 0000xxxx-0000-1000-8000-00805f9b34fb with dashes removed.
const sigBaseSuffix = "00001000800000805f9b34fb"

var services = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"180a": "Device Information",
	"180d": "Heart Rate",
	"180f": "Battery Service",
	"181a": "Environmental Sensing",
}

var characteristics = map[string]string{
	"2a19": "Battery Level",
	"2a37": "Heart Rate Measurement",
	"2a3d": "String",
	"2a6d": "Pressure",
	"2a6e": "Temperature",
	"2a6f": "Humidity",
}

// NormalizeUUID converts a UUID string to canonical form: lowercase, no
// dashes, no braces, no 0x prefix. Full 128-bit UUIDs in the Bluetooth SIG
// base format are collapsed to their 16-bit short form.
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.TrimSpace(uuid))
	s = strings.Trim(s, "{}")
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, "-", "")

	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
		return s[4:8]
	}
	return s
}

// NormalizeUUIDs normalizes a slice of UUID strings.
func NormalizeUUIDs(uuids []string) []string {
	out := make([]string, len(uuids))
	for i, u := range uuids {
		out[i] = NormalizeUUID(u)
	}
	return out
}

// ShortUUID formats a 16-bit assigned number in the conventional 0xNNNN
// form used in logs.
func ShortUUID(u uint16) string {
	return fmt.Sprintf("0x%04X", u)
}

// LookupService returns the assigned name of a service UUID, or "" if
// unknown. Accepts any format NormalizeUUID accepts.
func LookupService(uuid string) string {
	return services[NormalizeUUID(uuid)]
}

// LookupCharacteristic returns the assigned name of a characteristic UUID,
// or "" if unknown.
func LookupCharacteristic(uuid string) string {
	return characteristics[NormalizeUUID(uuid)]
}

// ServiceName16 resolves a 16-bit service assigned number.
func ServiceName16(u uint16) string {
	return services[fmt.Sprintf("%04x", u)]
}

// CharacteristicName16 resolves a 16-bit characteristic assigned number.
func CharacteristicName16(u uint16) string {
	return characteristics[fmt.Sprintf("%04x", u)]
}
