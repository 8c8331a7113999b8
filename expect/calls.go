package expect

import (
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
)

// CallLog records every message a stand-in observed, in arrival order. It only
// ever grows and is safe for concurrent use.
type CallLog[M any] struct {
	mtx   sync.Mutex
	calls []M
	equal func(a, b M) bool
	clone func(M) M
}

// NewCallLog returns an empty log comparing entries with equal, which is
// required. Recorded messages are copied with clone; a nil clone stores them
// as given.
func NewCallLog[M any](equal func(a, b M) bool, clone func(M) M) *CallLog[M] {
	if equal == nil {
		panic(errors.New("expect: NewCallLog needs an equal func"))
	}
	if clone == nil {
		clone = func(m M) M { return m }
	}
	return &CallLog[M]{
		equal: equal,
		clone: clone,
	}
}

// NewProtoCallLog returns a log of protobuf messages compared with proto.Equal
func NewProtoCallLog[M proto.Message]() *CallLog[M] {
	return NewCallLog(protoEqual[M], protoClone[M])
}

// Record appends a copy of msg
func (l *CallLog[M]) Record(msg M) {
	copied := l.clone(msg)
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.calls = append(l.calls, copied)
}

// Count returns how many messages were recorded
func (l *CallLog[M]) Count() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.calls)
}

// CountMatching returns how many recorded messages equal probe
func (l *CallLog[M]) CountMatching(probe M) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	count := 0
	for _, call := range l.calls {
		if l.equal(probe, call) {
			count++
		}
	}
	return count
}

// Calls returns a snapshot of the recorded messages
func (l *CallLog[M]) Calls() []M {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	out := make([]M, len(l.calls))
	copy(out, l.calls)
	return out
}

func protoEqual[M proto.Message](a, b M) bool {
	return proto.Equal(a, b)
}

func protoClone[M proto.Message](m M) M {
	cloned, _ := proto.Clone(m).(M)
	return cloned
}
