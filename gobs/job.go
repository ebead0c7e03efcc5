// Copyright (c) 2023 BVK Chaitanya

package gobs

import "time"

type State string

const (
	PAUSED    State = "PAUSED"
	RUNNING   State = "RUNNING"
	COMPLETED State = "COMPLETED"
	CANCELED  State = "CANCELED"
	FAILED    State = "FAILED"
)

// JobData holds the persistent metadata for a job run. Job parameters are
// stored separately by the job type owner.
type JobData struct {
	ID       string
	Typename string

	State State

	// Error holds the failure reason when State is FAILED.
	Error string

	CreateTime time.Time
}

type KeyValue struct {
	Key   string
	Value []byte
}
