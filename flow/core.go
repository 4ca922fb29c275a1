package flow

import (
	"context"
	"errors"
)

// Node represents a processing unit in the workflow that can transform input to output.
// The generic parameters I and O define the input and output types for the node.
type Node[I any, O any] interface {
	// Run executes the node's processing logic with the provided context and input.
	// Returns the processed output and any error that occurred during processing.
	Run(ctx context.Context, input I) (O, error)
}

// Chain composes nodes into a single Node by threading each output into the next
// input. All intermediate nodes share the any/any boundary; callers that need
// strict typing should wrap the chain with a typed Processor.
func Chain(nodes ...Node[any, any]) (Node[any, any], error) {
	if len(nodes) == 0 {
		return nil, errors.New("flow: chain requires at least one node")
	}
	return chainedNodes(nodes), nil
}

type chainedNodes []Node[any, any]

func (c chainedNodes) Run(ctx context.Context, input any) (any, error) {
	var (
		out any = input
		err error
	)
	for _, node := range c {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		out, err = node.Run(ctx, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
