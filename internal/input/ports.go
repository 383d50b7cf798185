package input

import "fmt"

// Port numbers as seen by the CPU: port 1 is $4016, port 2 is $4017
const (
	Port1 = 1
	Port2 = 2
)

// InputDeviceError is returned when a device cannot be plugged into a port
type InputDeviceError struct {
	Port   int
	Device string
	Reason string
}

func (e *InputDeviceError) Error() string {
	return fmt.Sprintf("cannot attach %s to port %d: %s", e.Device, e.Port, e.Reason)
}

// Ports routes the controller registers to the attached devices. An empty
// port reads as zero.
type Ports struct {
	devices [2]Device
}

// NewPorts creates the two ports with a joypad in port 1
func NewPorts() *Ports {
	return &Ports{devices: [2]Device{NewJoypad(), nil}}
}

// Attach plugs a device into a port. A nil device empties the port.
func (p *Ports) Attach(port int, device Device) error {
	name := "none"
	if device != nil {
		name = device.Name()
	}
	if port != Port1 && port != Port2 {
		return &InputDeviceError{Port: port, Device: name, Reason: "no such port"}
	}
	if _, ok := device.(*Zapper); ok && port != Port2 {
		return &InputDeviceError{Port: port, Device: name, Reason: "the zapper only works in port 2"}
	}
	p.devices[port-1] = device
	return nil
}

// Device returns the device in a port, or nil
func (p *Ports) Device(port int) Device {
	if port != Port1 && port != Port2 {
		return nil
	}
	return p.devices[port-1]
}

// Read serves $4016 and $4017
func (p *Ports) Read(address uint16) uint8 {
	d := p.devices[address&1]
	if d == nil {
		return 0
	}
	return d.Read() & 0x1F
}

// Write handles $4016. Both ports see the strobe.
func (p *Ports) Write(value uint8) {
	for _, d := range p.devices {
		if d != nil {
			d.Strobe(value)
		}
	}
}

// Reset resets every attached device
func (p *Ports) Reset() {
	for _, d := range p.devices {
		if d != nil {
			d.Reset()
		}
	}
}
