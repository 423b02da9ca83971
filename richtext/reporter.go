package richtext

// Reporter receives migration notes emitted while content is transformed.
// Notes are a side channel: nothing reported through a Reporter ever fails
// the transformation.
type Reporter interface {
	Error(message, context string)
	Warning(message, context string)
	Info(message, context string)
}

// NopReporter discards all notes.
type NopReporter struct{}

func (NopReporter) Error(message, context string)   {}
func (NopReporter) Warning(message, context string) {}
func (NopReporter) Info(message, context string)    {}
