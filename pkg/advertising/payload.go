// Package advertising builds legacy BLE advertising payloads from a device
// name, a 16-bit service UUID list, and a GAP appearance code. The payload
// is a sequence of length-prefixed AD structures as defined by the GAP
// profile; it is computed once at startup and reused for every advertise
// call.
package advertising

import (
	"encoding/binary"
	"fmt"
)

// AD structure types used in the payload.
const (
	adTypeFlags               = 0x01
	adTypeComplete16BitUUIDs  = 0x03
	adTypeCompleteLocalName   = 0x09
	adTypeAppearance          = 0x19
)

// Flag bits for the flags AD structure.
const (
	FlagGeneralDiscoverable = 0x02
	FlagBREDRNotSupported   = 0x04
)

// MaxPayloadSize is the legacy advertising data limit.
const MaxPayloadSize = 31

// Options describes the payload content. A zero Appearance omits the
// appearance structure; an empty Name omits the name structure.
type Options struct {
	Name       string
	Services   []uint16
	Appearance uint16
	Flags      byte
}

// DefaultFlags is used when Options.Flags is zero: general discoverable,
// BR/EDR not supported.
const DefaultFlags = FlagGeneralDiscoverable | FlagBREDRNotSupported

// Payload encodes the advertising data buffer. It returns an error if the
// encoded payload would exceed the 31-byte legacy limit.
func Payload(opts Options) ([]byte, error) {
	flags := opts.Flags
	if flags == 0 {
		flags = DefaultFlags
	}

	buf := make([]byte, 0, MaxPayloadSize)
	buf = appendStructure(buf, adTypeFlags, []byte{flags})

	if opts.Name != "" {
		buf = appendStructure(buf, adTypeCompleteLocalName, []byte(opts.Name))
	}

	if len(opts.Services) > 0 {
		uuids := make([]byte, 2*len(opts.Services))
		for i, u := range opts.Services {
			binary.LittleEndian.PutUint16(uuids[2*i:], u)
		}
		buf = appendStructure(buf, adTypeComplete16BitUUIDs, uuids)
	}

	if opts.Appearance != 0 {
		appearance := make([]byte, 2)
		binary.LittleEndian.PutUint16(appearance, opts.Appearance)
		buf = appendStructure(buf, adTypeAppearance, appearance)
	}

	if len(buf) > MaxPayloadSize {
		return nil, fmt.Errorf("advertising payload is %d bytes, exceeds %d byte limit", len(buf), MaxPayloadSize)
	}
	return buf, nil
}

// appendStructure appends one AD structure: length (type byte included),
// type, payload.
func appendStructure(buf []byte, adType byte, data []byte) []byte {
	buf = append(buf, byte(len(data)+1), adType)
	return append(buf, data...)
}
