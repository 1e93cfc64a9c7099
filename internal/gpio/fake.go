package gpio

import "errors"

// FakeReader is a test double that returns scripted button values.
type FakeReader struct {
	// Samples contains scripted pressed values to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeWriter records every level written to it.
type FakeWriter struct {
	// Writes contains every level passed to Set, in order.
	Writes []bool

	// SetError, if set, is reported by Err after each Set.
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Set records the level.
func (f *FakeWriter) Set(on bool) {
	f.Writes = append(f.Writes, on)
}

// Err returns SetError.
func (f *FakeWriter) Err() error {
	return f.SetError
}

// Last returns the most recent level written and whether anything was written.
func (f *FakeWriter) Last() (bool, bool) {
	if len(f.Writes) == 0 {
		return false, false
	}
	return f.Writes[len(f.Writes)-1], true
}

// Close drives the output low and marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Writes = append(f.Writes, false)
	f.Closed = true
	return nil
}
