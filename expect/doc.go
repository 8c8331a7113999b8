/*
Package expect provides stand-in actors for unit testing code that talks to
actors through the actors runtime.

A stand-in answers exactly one expected command with a prescribed response.
Anything else gets the fallback response when one is configured, otherwise
the stand-in closes its mailbox so the delivery, and every later one, fails
with actors.ErrMailboxClosed. Every delivered command is recorded.

# Basic Usage

	directory := expect.Send(ctx,
		wrapperspb.String("user-1"),   // expected command
		wrapperspb.String("Ada"),      // response to it
		wrapperspb.String("someone"),  // response to anything else, or nil
	)
	defer directory.Stop()

	greeter := actors.Spawn(ctx, "greeter", newGreeterFactory(directory.Ref))
	// ... exercise the greeter ...

	assert.Equal(t, 1, directory.TotalCalls())
	assert.Equal(t, 1, directory.CallsOfVariant(wrapperspb.String("user-1")))

# Placeholders

A placeholder stands in for a dependency that must never be used: the first
delivery closes its mailbox.

	audit := expect.Placeholder(ctx)
	defer audit.Stop()

# Delivering The Wrong Type

A stand-in built with Send handles a single command type. Delivering any other
type is a bug in the test and panics inside the actor.
*/
package expect
