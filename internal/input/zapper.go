package input

const (
	zapperLightMissing uint8 = 0x08
	zapperTriggerHeld  uint8 = 0x10
)

// LightSensor reports whether the screen is bright at a pixel right now
type LightSensor func(x, y int) bool

// Zapper is the light gun. It only works in port 2.
//
// The photodiode is reported in D3, inverted: 0 means light is seen. The
// trigger is D4.
type Zapper struct {
	x, y    int
	trigger bool
	sensor  LightSensor
}

// NewZapper creates a zapper aimed off screen
func NewZapper() *Zapper {
	return &Zapper{x: -1, y: -1}
}

func (z *Zapper) Name() string { return "zapper" }

// Aim points the gun at a screen pixel. Negative values aim off screen.
func (z *Zapper) Aim(x, y int) {
	z.x, z.y = x, y
}

// SetTrigger sets the trigger state
func (z *Zapper) SetTrigger(pressed bool) {
	z.trigger = pressed
}

// SetLightSensor connects the gun to the picture. The console does this
// when the zapper is attached.
func (z *Zapper) SetLightSensor(sensor LightSensor) {
	z.sensor = sensor
}

// Strobe is ignored, the zapper has no shift register
func (z *Zapper) Strobe(uint8) {}

func (z *Zapper) Read() uint8 {
	var value uint8
	if !z.sensesLight() {
		value |= zapperLightMissing
	}
	if z.trigger {
		value |= zapperTriggerHeld
	}
	return value
}

func (z *Zapper) sensesLight() bool {
	if z.sensor == nil || z.x < 0 || z.y < 0 {
		return false
	}
	return z.sensor(z.x, z.y)
}

// Reset releases the trigger. Aim and sensor are kept.
func (z *Zapper) Reset() {
	z.trigger = false
}
