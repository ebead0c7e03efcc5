// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"github.com/bvk/oco/dispatch"
	"github.com/bvk/oco/notify"
	"github.com/bvk/oco/orderstate"
)

type Options struct {
	// NoResume when true, unfinished jobs are not resumed at startup.
	NoResume bool

	Notify     notify.Options
	Dispatch   dispatch.Options
	OrderState orderstate.Options
}
