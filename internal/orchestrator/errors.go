package orchestrator

import "fmt"

// Pipeline stages that can fail a request.
const (
	StageRouteAndFormat = "route_and_format"
	StageDispatch       = "dispatch"
	StageParseResponse  = "parse_response"
)

// PipelineError is the fatal-to-request error class. Only dispatch and
// response parsing produce it; every other failure in the pipeline is
// absorbed as a degraded feature.
type PipelineError struct {
	Stage   string
	Details string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Details)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func pipelineErr(stage, details string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Details: details, Err: err}
}
