package engine

import (
	"context"
	"fmt"

	"github.com/hawkline/mailflow/logger"
	"github.com/hawkline/mailflow/model"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome

// Operation binds a step name to its remote method and handler.
type Operation struct {
	Name         string
	RemoteMethod string
	Handler      HandlerFunc
}

// StepError surfaces a FAIL outcome to the caller, which is the single
// point that reports the failure to the operator and terminates.
type StepError struct {
	Step   string
	Detail any
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Detail)
}

// WorkflowEngine dispatches named steps until one completes or fails.
// It is a trampoline, not a persisted state machine: a restart begins
// at the start step again.
type WorkflowEngine struct {
	registry map[string]Operation
}

// NewWorkflowEngine builds the immutable step registry.
func NewWorkflowEngine(operations []Operation) (*WorkflowEngine, error) {
	registry := make(map[string]Operation, len(operations))
	for _, op := range operations {
		if op.Name == "" || op.Handler == nil {
			return nil, fmt.Errorf("invalid operation %q", op.Name)
		}
		if _, ok := registry[op.Name]; ok {
			return nil, fmt.Errorf("duplicate operation %s", op.Name)
		}
		registry[op.Name] = op
	}
	return &WorkflowEngine{registry: registry}, nil
}

func (e *WorkflowEngine) Run(ctx context.Context, stash *model.Stash, start string) error {
	current := start
	for {
		op, ok := e.registry[current]
		if !ok {
			return fmt.Errorf("unknown step %s", current)
		}
		logger.Info("entering step", zap.String("step", op.Name), zap.String("method", op.RemoteMethod))
		outcome := op.Handler(ctx, stash, op.RemoteMethod)
		switch outcome.Type {
		case model.OUTCOME_CONTINUE:
			current = outcome.Next
		case model.OUTCOME_COMPLETE:
			logger.Info("workflow complete", zap.String("lastStep", op.Name))
			return nil
		case model.OUTCOME_FAIL:
			return &StepError{Step: op.Name, Detail: outcome.Detail}
		default:
			return fmt.Errorf("step %s returned unknown outcome %s", op.Name, outcome.Type)
		}
	}
}
