package peripheral

import "github.com/srg/envble/internal/stack"

// Bluetooth SIG assigned numbers for the Environmental Sensing profile.
const (
	// ServiceEnvironmentalSensing is org.bluetooth.service.environmental_sensing.
	ServiceEnvironmentalSensing uint16 = 0x181A

	// CharTemperature is org.bluetooth.characteristic.temperature.
	CharTemperature uint16 = 0x2A6E

	// CharPressure is org.bluetooth.characteristic.pressure.
	CharPressure uint16 = 0x2A6D

	// CharHumidity is org.bluetooth.characteristic.humidity.
	CharHumidity uint16 = 0x2A6F

	// CharCommand is org.bluetooth.characteristic.string, used as the
	// write-triggered command channel.
	CharCommand uint16 = 0x2A3D

	// AppearanceEnvironmentalSensor is the GAP appearance code for a
	// generic environmental sensor.
	AppearanceEnvironmentalSensor uint16 = 5696
)

// Characteristic role names, in registration order. The handle sequence
// returned by the stack maps back to these roles by index.
const (
	roleTemperature = "temperature"
	rolePressure    = "pressure"
	roleHumidity    = "humidity"
	roleCommand     = "command"
)

// EnvironmentalSensingService builds the fixed service schema: three
// sensor characteristics (read, notify, indicate) and the command channel
// (read, write). The schema is created once at startup and never changes.
func EnvironmentalSensingService() *stack.Service {
	sensorProps := stack.PropertyRead | stack.PropertyNotify | stack.PropertyIndicate
	return stack.NewService(ServiceEnvironmentalSensing).
		AddCharacteristic(roleTemperature, CharTemperature, sensorProps).
		AddCharacteristic(rolePressure, CharPressure, sensorProps).
		AddCharacteristic(roleHumidity, CharHumidity, sensorProps).
		AddCharacteristic(roleCommand, CharCommand, stack.PropertyRead|stack.PropertyWrite)
}
