package pipeline

import "encoding/json"

// Status is the execution state of a pipeline or a single step.
type Status int32

const (
	// StatusPending indicates work that has not started yet.
	StatusPending Status = iota
	// StatusRunning indicates work currently being executed by a worker.
	StatusRunning
	// StatusSucceeded is the terminal state of successful work.
	StatusSucceeded
	// StatusFailed is the terminal state of failed work.
	StatusFailed
	// StatusBlocked is the terminal state of a step that can never become
	// ready because something upstream of it failed. Pipelines themselves
	// are never blocked, only failed.
	StatusBlocked
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusBlocked:
		return "blocked"
	}
	return "unknown"
}

// Terminal reports whether no further transition out of this status exists.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusBlocked:
		return true
	}
	return false
}

// MarshalJSON serializes the status as its wire string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Stage labels the phase of a CI/CD pipeline a step belongs to. Stages are
// purely descriptive: execution order is derived from step dependencies.
type Stage string

const (
	StageSource Stage = "source"
	StageBuild  Stage = "build"
	StageTest   Stage = "test"
	StageDeploy Stage = "deploy"
	StageVerify Stage = "verify"
)

// KnownStage reports whether s is one of the declared stage labels.
func KnownStage(s Stage) bool {
	switch s {
	case StageSource, StageBuild, StageTest, StageDeploy, StageVerify:
		return true
	}
	return false
}
