package tasks

// TaskSchedulerInterface is what the API layer and main need from the
// scheduler: lifecycle control and on-demand task submission.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
