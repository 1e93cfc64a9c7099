package backlight

// Fake records the colours it is asked to show.
type Fake struct {
	Colors   []Color
	SetError error
	Closed   bool
}

// SetColor records c, or returns SetError.
func (f *Fake) SetColor(c Color) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Colors = append(f.Colors, c)
	return nil
}

// Close marks the fake as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent colour, or Black.
func (f *Fake) Last() Color {
	if len(f.Colors) == 0 {
		return Black
	}
	return f.Colors[len(f.Colors)-1]
}
