package core

// InputState is the held-key state of one player plus the edge guards that
// turn a held key into a single action.
//
// Left, Right and Down are level-triggered: they act on every input tick while
// held. Up (rotate) and Space (hard drop) are edge-triggered through the
// UpConsumed and SpaceConsumed guards.
type InputState struct {
	Left  bool `json:"left" msgpack:"left"`
	Right bool `json:"right" msgpack:"right"`
	Down  bool `json:"down" msgpack:"down"`
	Up    bool `json:"up" msgpack:"up"`
	Space bool `json:"space" msgpack:"space"`

	SpaceConsumed bool `json:"-" msgpack:"-"`
	UpConsumed    bool `json:"-" msgpack:"-"`
}

// Keys is the raw key state reported by a client.
type Keys struct {
	Left  bool `json:"left" msgpack:"left"`
	Right bool `json:"right" msgpack:"right"`
	Down  bool `json:"down" msgpack:"down"`
	Up    bool `json:"up" msgpack:"up"`
	Space bool `json:"space" msgpack:"space"`
}

// Merge returns the input state after applying a new raw key report.
// A consumed guard survives only while the corresponding key keeps its
// previous raw value, so it clears as soon as the key is released or
// pressed again.
func (s InputState) Merge(k Keys) InputState {
	return InputState{
		Left:          k.Left,
		Right:         k.Right,
		Down:          k.Down,
		Up:            k.Up,
		Space:         k.Space,
		SpaceConsumed: s.SpaceConsumed && k.Space == s.Space,
		UpConsumed:    s.UpConsumed && k.Up == s.Up,
	}
}

// Keys returns the raw key part of the state.
func (s InputState) Keys() Keys {
	return Keys{Left: s.Left, Right: s.Right, Down: s.Down, Up: s.Up, Space: s.Space}
}

// RotatePending reports whether a rotation should fire this tick.
func (s InputState) RotatePending() bool {
	return s.Up && !s.UpConsumed
}

// HardDropPending reports whether a hard drop should fire this tick.
func (s InputState) HardDropPending() bool {
	return s.Space && !s.SpaceConsumed
}
