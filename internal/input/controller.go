// Package input implements the devices plugged into the two controller ports.
package input

// Button represents NES controller buttons
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = [8]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	for i, name := range buttonNames {
		if b == 1<<i {
			return name
		}
	}
	return "Button(?)"
}

// Device is anything that can sit in a controller port
type Device interface {
	// Strobe receives writes to $4016
	Strobe(value uint8)
	// Read returns the port bits D0-D4 for one read of $4016/$4017
	Read() uint8
	Reset()
	Name() string
}

// Joypad is the standard controller: eight buttons read out serially
// through a shift register, A first.
type Joypad struct {
	buttons uint8

	shiftRegister uint8
	strobe        bool

	// reads since the last reload, so official pads return 1 past bit 8
	bitPosition uint8
}

// NewJoypad creates a joypad with no buttons held
func NewJoypad() *Joypad {
	return &Joypad{}
}

func (c *Joypad) Name() string { return "joypad" }

// SetButton sets the state of a button
func (c *Joypad) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all button states at once, in the order A, B, Select,
// Start, Up, Down, Left, Right
func (c *Joypad) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= 1 << i
		}
	}
}

// IsPressed returns true if the button is currently pressed
func (c *Joypad) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Buttons returns the held buttons as a bit set
func (c *Joypad) Buttons() uint8 {
	return c.buttons
}

// Strobe reloads the shift register while bit 0 is high
func (c *Joypad) Strobe(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		c.reload()
	}
}

func (c *Joypad) reload() {
	c.shiftRegister = c.buttons
	c.bitPosition = 0
}

// Read shifts out the next button. While strobe is high it keeps returning A.
func (c *Joypad) Read() uint8 {
	if c.strobe {
		c.reload()
		return c.buttons & 1
	}
	if c.bitPosition >= 8 {
		return 1
	}
	bit := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.bitPosition++
	return bit
}

// Reset releases all buttons and clears the shift register
func (c *Joypad) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.bitPosition = 0
}
