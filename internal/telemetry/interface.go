package telemetry

type ITelemetry interface {
	SnapshotWorkflowStatus() error
}
