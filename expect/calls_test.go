package expect

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func intEqual(a, b int) bool { return a == b }

func TestCallLog(t *testing.T) {
	calls := NewCallLog(intEqual, nil)
	assert.Equal(t, 0, calls.Count())
	assert.Equal(t, 0, calls.CountMatching(1))

	for _, v := range []int{1, 2, 1, 3} {
		calls.Record(v)
	}
	assert.Equal(t, 4, calls.Count())
	assert.Equal(t, 2, calls.CountMatching(1))
	assert.Equal(t, 1, calls.CountMatching(3))
	assert.Equal(t, 0, calls.CountMatching(4))
	assert.Equal(t, []int{1, 2, 1, 3}, calls.Calls())
}

func TestCallLogRequiresEqual(t *testing.T) {
	assert.PanicsWithError(t, "expect: NewCallLog needs an equal func", func() {
		NewCallLog[int](nil, nil)
	})
}

func TestCallLogSnapshotIsDetached(t *testing.T) {
	calls := NewCallLog(intEqual, nil)
	calls.Record(1)

	snapshot := calls.Calls()
	snapshot[0] = 42
	calls.Record(2)

	assert.Equal(t, []int{1, 2}, calls.Calls())
}

func TestCallLogConcurrentRecord(t *testing.T) {
	calls := NewCallLog(intEqual, nil)
	const workers, perWorker = 8, 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				calls.Record(w)
				_ = calls.Count()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, calls.Count())
	for w := 0; w < workers; w++ {
		assert.Equal(t, perWorker, calls.CountMatching(w))
	}
}

func TestProtoCallLogStoresCopies(t *testing.T) {
	calls := NewProtoCallLog[*wrapperspb.StringValue]()
	msg := wrapperspb.String("first")
	calls.Record(msg)
	msg.Value = "changed"

	assert.Equal(t, 1, calls.CountMatching(wrapperspb.String("first")))
	assert.Equal(t, 0, calls.CountMatching(msg))
	assert.Equal(t, "first", calls.Calls()[0].GetValue())
}
