package stack

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Property is the capability flag set of a characteristic.
type Property uint8

const (
	PropertyRead Property = 1 << iota
	PropertyWrite
	PropertyNotify
	PropertyIndicate
)

// Read reports whether the characteristic is readable.
func (p Property) Read() bool { return p&PropertyRead != 0 }

// Write reports whether the characteristic accepts remote writes.
func (p Property) Write() bool { return p&PropertyWrite != 0 }

// Notify reports whether the characteristic supports notifications.
func (p Property) Notify() bool { return p&PropertyNotify != 0 }

// Indicate reports whether the characteristic supports indications.
func (p Property) Indicate() bool { return p&PropertyIndicate != 0 }

func (p Property) String() string {
	var parts []string
	if p.Read() {
		parts = append(parts, "read")
	}
	if p.Write() {
		parts = append(parts, "write")
	}
	if p.Notify() {
		parts = append(parts, "notify")
	}
	if p.Indicate() {
		parts = append(parts, "indicate")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Characteristic is one (UUID, capability flags) entry of a service schema.
// UUID is a 16-bit Bluetooth SIG assigned number.
type Characteristic struct {
	UUID  uint16
	Props Property
}

// Service is a fixed service schema: one primary service UUID and an
// ordered sequence of characteristics. Registration order is significant;
// the handles returned by RegisterService map back to the characteristics
// in the same order. The schema is immutable after registration.
type Service struct {
	UUID  uint16
	chars *orderedmap.OrderedMap[string, Characteristic]
}

// NewService creates an empty service schema for the given 16-bit UUID.
func NewService(uuid uint16) *Service {
	return &Service{
		UUID:  uuid,
		chars: orderedmap.New[string, Characteristic](),
	}
}

// AddCharacteristic appends a characteristic under a role name. Adding the
// same role twice replaces the entry but keeps its original position.
func (s *Service) AddCharacteristic(role string, uuid uint16, props Property) *Service {
	s.chars.Set(role, Characteristic{UUID: uuid, Props: props})
	return s
}

// Len returns the number of characteristics.
func (s *Service) Len() int { return s.chars.Len() }

// Characteristics returns the characteristics in registration order.
func (s *Service) Characteristics() []Characteristic {
	out := make([]Characteristic, 0, s.chars.Len())
	for pair := s.chars.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Roles returns the role names in registration order.
func (s *Service) Roles() []string {
	out := make([]string, 0, s.chars.Len())
	for pair := s.chars.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Characteristic returns the entry registered under the role name.
func (s *Service) Characteristic(role string) (Characteristic, bool) {
	return s.chars.Get(role)
}
