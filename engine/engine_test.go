package engine

import (
	"context"
	"testing"

	"github.com/hawkline/mailflow/model"
	"github.com/stretchr/testify/require"
)

func handlerReturning(outcome model.Outcome, visited *[]string, name string) HandlerFunc {
	return func(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome {
		*visited = append(*visited, name)
		return outcome
	}
}

func TestRunDispatchesUntilComplete(t *testing.T) {
	var visited []string
	ops := []Operation{
		{Name: "first", RemoteMethod: "remote.first", Handler: handlerReturning(model.Continue("second"), &visited, "first")},
		{Name: "second", RemoteMethod: "remote.second", Handler: handlerReturning(model.Continue("last"), &visited, "second")},
		{Name: "last", RemoteMethod: "remote.last", Handler: handlerReturning(model.Complete(), &visited, "last")},
	}
	eng, err := NewWorkflowEngine(ops)
	require.NoError(t, err)

	err = eng.Run(context.Background(), model.NewStash(1), "first")
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "last"}, visited)
}

func TestRunSurfacesFailDetail(t *testing.T) {
	var visited []string
	ops := []Operation{
		{Name: "first", RemoteMethod: "remote.first", Handler: handlerReturning(model.Continue("broken"), &visited, "first")},
		{Name: "broken", RemoteMethod: "remote.broken", Handler: handlerReturning(model.Fail("bad subject"), &visited, "broken")},
	}
	eng, err := NewWorkflowEngine(ops)
	require.NoError(t, err)

	err = eng.Run(context.Background(), model.NewStash(1), "first")
	require.Error(t, err)
	stepErr, ok := err.(*StepError)
	require.True(t, ok)
	require.Equal(t, "broken", stepErr.Step)
	require.Equal(t, "bad subject", stepErr.Detail)
}

func TestRunUnknownStep(t *testing.T) {
	var visited []string
	ops := []Operation{
		{Name: "first", RemoteMethod: "remote.first", Handler: handlerReturning(model.Continue("missing"), &visited, "first")},
	}
	eng, err := NewWorkflowEngine(ops)
	require.NoError(t, err)

	err = eng.Run(context.Background(), model.NewStash(1), "first")
	require.ErrorContains(t, err, "unknown step missing")

	err = eng.Run(context.Background(), model.NewStash(1), "nowhere")
	require.ErrorContains(t, err, "unknown step nowhere")
}

func TestNewWorkflowEngineRejectsBadRegistry(t *testing.T) {
	var visited []string
	valid := Operation{Name: "first", RemoteMethod: "remote.first", Handler: handlerReturning(model.Complete(), &visited, "first")}

	_, err := NewWorkflowEngine([]Operation{valid, valid})
	require.ErrorContains(t, err, "duplicate operation first")

	_, err = NewWorkflowEngine([]Operation{{Name: "", Handler: valid.Handler}})
	require.Error(t, err)

	_, err = NewWorkflowEngine([]Operation{{Name: "nohandler"}})
	require.Error(t, err)
}
