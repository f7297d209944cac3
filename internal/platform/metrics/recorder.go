// Package metrics records rotation activity. Components hold a Recorder and
// default to NoopRecorder, so no caller needs a nil check.
package metrics

// Trigger labels why the selection moved.
type Trigger string

const (
	TriggerLaunch    Trigger = "launch"
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerEdit      Trigger = "edit"
	TriggerReload    Trigger = "reload"
)

// Recorder is the set of rotation metrics.
type Recorder interface {
	// IncRotation counts a change of the current quote.
	IncRotation(trigger Trigger)

	// ObserveRotationSteps records how many positions a scheduled tick moved.
	ObserveRotationSteps(steps int)

	// SetQuoteCount reports the size of the quote list.
	SetQuoteCount(n int)

	// IncPersistFailure counts a failed load, encode or save.
	IncPersistFailure(op string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncRotation(Trigger)      {}
func (NoopRecorder) ObserveRotationSteps(int) {}
func (NoopRecorder) SetQuoteCount(int)        {}
func (NoopRecorder) IncPersistFailure(string) {}
