package expect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func stringEqual(a, b string) bool { return a == b }

func TestMatchAndRespondWithFallback(t *testing.T) {
	calls := NewCallLog(stringEqual, nil)
	fallback := "Miss"
	behavior := NewMatchAndRespond(Expectation[string, string]{
		Incoming: "echo",
		Outgoing: "Message",
		Fallback: &fallback,
	}, stringEqual, calls)

	out, ok := behavior.Handle("echo")
	assert.True(t, ok)
	assert.Equal(t, "Message", out)

	out, ok = behavior.Handle("hello")
	assert.True(t, ok)
	assert.Equal(t, "Miss", out)

	assert.Equal(t, 2, calls.Count())
	assert.Equal(t, 1, calls.CountMatching("echo"))
}

func TestMatchAndRespondWithoutFallback(t *testing.T) {
	calls := NewCallLog(stringEqual, nil)
	behavior := NewMatchAndRespond(Expectation[string, int]{
		Incoming: "echo",
		Outgoing: 7,
	}, stringEqual, calls)

	out, ok := behavior.Handle("echo")
	assert.True(t, ok)
	assert.Equal(t, 7, out)

	out, ok = behavior.Handle("hello")
	assert.False(t, ok)
	assert.Zero(t, out)

	// unmatched messages are recorded too
	assert.Equal(t, 2, calls.Count())
	assert.Equal(t, 1, calls.CountMatching("hello"))
}

func TestAlwaysTerminate(t *testing.T) {
	calls := NewCallLog(stringEqual, nil)
	behavior := NewAlwaysTerminate[string, string](calls)

	for _, msg := range []string{"echo", "hello"} {
		out, ok := behavior.Handle(msg)
		assert.False(t, ok)
		assert.Empty(t, out)
	}
	assert.Equal(t, 2, calls.Count())
}
