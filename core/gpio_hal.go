package core

// DigitalInput is a single digital input line.
// Platform-specific implementations handle actual hardware sampling.
type DigitalInput interface {
	// ReadLevel returns the current logic level (true = high)
	ReadLevel() bool
}

// ActiveLevel names the logic level at which a button counts as held
type ActiveLevel uint8

const (
	// ActiveLow is the pull-up convention: the switch shorts the line to
	// ground, so held reads low.
	ActiveLow ActiveLevel = iota

	// ActiveHigh treats a high level as held. With a pull-up this fires
	// while the button is NOT pressed; older boards were wired that way.
	ActiveHigh
)

func (a ActiveLevel) String() string {
	if a == ActiveHigh {
		return "active-high"
	}
	return "active-low"
}

// SelectButton is the workflow selection button
type SelectButton struct {
	Input  DigitalInput
	Active ActiveLevel
}

// NewSelectButton creates a button on input with the given polarity
func NewSelectButton(input DigitalInput, active ActiveLevel) *SelectButton {
	return &SelectButton{Input: input, Active: active}
}

// Held reports whether the button asks for the selection override.
// A missing input never requests it.
func (b *SelectButton) Held() bool {
	if b == nil || b.Input == nil {
		return false
	}
	return IsHeld(b.Input.ReadLevel(), b.Active)
}

// IsHeld is the selection predicate: level matches the active level
func IsHeld(level bool, active ActiveLevel) bool {
	if active == ActiveHigh {
		return level
	}
	return !level
}

// FixedInput is a DigitalInput that always reads the same level
type FixedInput bool

func (f FixedInput) ReadLevel() bool {
	return bool(f)
}
