package task

import "github.com/vkforge/taskgraph/backend"

// GraphicsCallbackTask delegates setup and execute to user-supplied
// closures, for callers who do not need a named concrete type.
type GraphicsCallbackTask struct {
	GraphicsTaskBase
	setup func(*GraphicsTaskBase)
	exec  func(CommandList)
}

// NewGraphicsCallbackTask constructs a GraphicsCallbackTask. setup is
// invoked once at AddTask time; exec runs once per frame.
func NewGraphicsCallbackTask(info Info, setup func(*GraphicsTaskBase), exec func(CommandList)) *GraphicsCallbackTask {
	t := &GraphicsCallbackTask{setup: setup, exec: exec}
	t.info = info
	return t
}

func (t *GraphicsCallbackTask) SetupTask()            { t.setup(&t.GraphicsTaskBase) }
func (t *GraphicsCallbackTask) ExecuteTask(cl CommandList) { t.exec(cl) }

// ComputeCallbackTask delegates setup and execute to closures.
type ComputeCallbackTask struct {
	ComputeTaskBase
	setup func(*ComputeTaskBase)
	exec  func(CommandList)
}

func NewComputeCallbackTask(info Info, setup func(*ComputeTaskBase), exec func(CommandList)) *ComputeCallbackTask {
	t := &ComputeCallbackTask{setup: setup, exec: exec}
	t.info = info
	return t
}

func (t *ComputeCallbackTask) SetupTask()            { t.setup(&t.ComputeTaskBase) }
func (t *ComputeCallbackTask) ExecuteTask(cl CommandList) { t.exec(cl) }

// TransferCallbackTask delegates setup and execute to closures.
type TransferCallbackTask struct {
	TransferTaskBase
	setup func(*TransferTaskBase)
	exec  func(CommandList)
}

func NewTransferCallbackTask(info Info, setup func(*TransferTaskBase), exec func(CommandList)) *TransferCallbackTask {
	t := &TransferCallbackTask{setup: setup, exec: exec}
	t.info = info
	return t
}

func (t *TransferCallbackTask) SetupTask()            { t.setup(&t.TransferTaskBase) }
func (t *TransferCallbackTask) ExecuteTask(cl CommandList) { t.exec(cl) }

// CustomCallbackTask delegates setup to a closure and execute directly
// to the backend command buffer, bypassing TaskCommandList translation
// (mirroring the original's CustomTask::ExecuteTask(ICommandBuffer*)).
type CustomCallbackTask struct {
	CustomTaskBase
	setup func(*CustomTaskBase)
	exec  func(backend.CmdBuffer)
}

func NewCustomCallbackTask(info Info, kind backend.TaskType, setup func(*CustomTaskBase), exec func(backend.CmdBuffer)) *CustomCallbackTask {
	t := &CustomCallbackTask{setup: setup, exec: exec}
	t.info = info
	t.SetKind(kind)
	return t
}

func (t *CustomCallbackTask) SetupTask()                 { t.setup(&t.CustomTaskBase) }
func (t *CustomCallbackTask) ExecuteTask(cl CommandList) { t.exec(cl.Internal()) }
