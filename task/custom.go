package task

import "github.com/vkforge/taskgraph/backend"

// CustomTaskBase is embedded by any concrete custom task. Unlike the
// other task bases, its GetKind is configurable at construction: a
// custom task stands in for whichever kind of work it actually submits
// for the compiler's batching and barrier-synthesis purposes, even
// though it never binds a pipeline (GetBindPoint is always None).
//
// A custom task's ExecuteTask typically calls cl.Internal() to record
// directly against the backend command buffer, bypassing the rest of
// the TaskCommandList translation layer.
type CustomTaskBase struct {
	base
	kind backend.TaskType
}

// SetKind fixes the TaskType this custom task reports to the compiler.
// Call it once, from the concrete type's constructor.
func (c *CustomTaskBase) SetKind(kind backend.TaskType) { c.kind = kind }

func (c *CustomTaskBase) GetBindPoint() backend.PipelineBindPoint { return backend.BindPointNone }
func (c *CustomTaskBase) GetKind() backend.TaskType               { return c.kind }
