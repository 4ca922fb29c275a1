/*
Package flow provides small, composable primitives for structuring
concurrent, cancellable processing pipelines.

# Core Concepts

Node is the fundamental unit: anything that turns an input into an output
under a context.

	type Node[I any, O any] interface {
	    Run(ctx context.Context, input I) (O, error)
	}

Processor is a function type that implements Node, letting ordinary
functions be used as nodes without a wrapper struct:

	uppercase := Processor[string, string](func(ctx context.Context, in string) (string, error) {
	    return strings.ToUpper(in), nil
	})

Chain composes any/any nodes into a single sequential Node, threading each
output into the next input and stopping at the first error or cancellation.

# Loop

Loop repeats a node until a Terminator condition is met or MaxIterations is
reached, feeding the same input on every iteration and returning the last
output:

	loop, err := NewLoop(&LoopConfig[State, State]{
	    Node:          iterationNode,
	    MaxIterations: 3,
	    Terminator: func(ctx context.Context, i int, in, out State) (bool, error) {
	        return out.Done, nil
	    },
	})

# Parallel

Parallel fans an input out to independent processors, waits for a
configurable subset of them, and aggregates the results:

	p := NewParallel[Query, Result](speculative, agentic).
	    WithWaitAny().
	    WithAggregator(firstReady)

# AsyncResult

AsyncResult is a context-aware, promise-like container for a value produced
by a background goroutine; Result blocks until the value is set or the
context is cancelled.

Every suspension point in a flow pipeline should accept a context and honor
its cancellation; nodes must not retain locks across a call to another node.
*/
package flow
