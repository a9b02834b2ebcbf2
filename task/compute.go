package task

import "github.com/vkforge/taskgraph/backend"

// ComputeTaskBase is embedded by any concrete compute task.
type ComputeTaskBase struct{ base }

func (c *ComputeTaskBase) GetBindPoint() backend.PipelineBindPoint { return backend.BindPointCompute }
func (c *ComputeTaskBase) GetKind() backend.TaskType               { return backend.TaskTypeCompute }
