package expect

// Expectation is the command a stand-in waits for, the response it gives to
// that command and, when Fallback is not nil, the response to anything else.
type Expectation[I, O any] struct {
	Incoming I
	Outgoing O
	Fallback *O
}

// Behavior decides the response to one delivered message. ok is false when
// the stand-in must not respond and close its mailbox instead.
type Behavior[I, O any] interface {
	Handle(msg I) (out O, ok bool)
}

// MatchAndRespond records every message and answers it from an Expectation
type MatchAndRespond[I, O any] struct {
	expectation Expectation[I, O]
	equal       func(a, b I) bool
	calls       *CallLog[I]
}

// NewMatchAndRespond returns a behavior answering from expectation. Messages
// are compared to the expected one with equal and recorded in calls.
func NewMatchAndRespond[I, O any](expectation Expectation[I, O], equal func(a, b I) bool, calls *CallLog[I]) *MatchAndRespond[I, O] {
	return &MatchAndRespond[I, O]{
		expectation: expectation,
		equal:       equal,
		calls:       calls,
	}
}

// Handle implements Behavior
func (m *MatchAndRespond[I, O]) Handle(msg I) (O, bool) {
	m.calls.Record(msg)
	if m.equal(msg, m.expectation.Incoming) {
		return m.expectation.Outgoing, true
	}
	if m.expectation.Fallback != nil {
		return *m.expectation.Fallback, true
	}
	var none O
	return none, false
}

// AlwaysTerminate records every message and never responds
type AlwaysTerminate[I, O any] struct {
	calls *CallLog[I]
}

// NewAlwaysTerminate returns a behavior recording into calls
func NewAlwaysTerminate[I, O any](calls *CallLog[I]) *AlwaysTerminate[I, O] {
	return &AlwaysTerminate[I, O]{calls: calls}
}

// Handle implements Behavior
func (a *AlwaysTerminate[I, O]) Handle(msg I) (O, bool) {
	a.calls.Record(msg)
	var none O
	return none, false
}
