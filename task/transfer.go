package task

import "github.com/vkforge/taskgraph/backend"

// TransferTaskBase is embedded by any concrete transfer task.
type TransferTaskBase struct{ base }

func (t *TransferTaskBase) GetBindPoint() backend.PipelineBindPoint { return backend.BindPointNone }
func (t *TransferTaskBase) GetKind() backend.TaskType               { return backend.TaskTypeTransfer }
