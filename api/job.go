// Copyright (c) 2023 BVK Chaitanya

package api

import (
	"fmt"
	"os"
	"time"
)

const (
	JobListPath   = "/oco/job/list"
	JobGetPath    = "/oco/job/get"
	JobCancelPath = "/oco/job/cancel"
)

type JobListRequest struct {
	// All includes the jobs in final states.
	All bool
}

type JobListResponseItem struct {
	UID         string
	Type        string
	State       string
	Description string
	Error       string
	CreateTime  time.Time
}

type JobListResponse struct {
	Jobs []*JobListResponseItem
}

type JobGetRequest struct {
	UID string
}

type JobGetResponse struct {
	Job *JobListResponseItem
}

func (r *JobGetRequest) Check() error {
	if len(r.UID) == 0 {
		return fmt.Errorf("job id cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}

type JobCancelRequest struct {
	UID string
}

type JobCancelResponse struct {
	FinalState string
}

func (r *JobCancelRequest) Check() error {
	if len(r.UID) == 0 {
		return fmt.Errorf("job id cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}
