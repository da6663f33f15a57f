package models

import "context"

// OutputFunc reads the current value of an output attribute.
// The boolean is false while the processor has not produced the value.
type OutputFunc func() (any, bool)

// InputFunc stores a value connected to an input attribute.
type InputFunc func(value any) error

// Processor is the lifecycle every unit of a chain honors.
// Configure is called once before the chain starts, Run exactly once per execution.
type Processor interface {
	// Name returns the unique name of the processor inside a toolbox
	Name() string
	// Configure validates and stores the processor parameters
	Configure(params map[string]any) error
	// Run executes the unit of work using the configured state and connected inputs
	Run(ctx context.Context) error
	// Delete reports whether the processor is released right after running
	Delete() bool
	// Outputs declares the attributes other processors can read
	Outputs() map[string]OutputFunc
	// Inputs declares the attributes other processors can write
	Inputs() map[string]InputFunc
}
