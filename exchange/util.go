// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"fmt"
	"time"

	"github.com/bvk/oco/gobs"
	"github.com/shopspring/decimal"
)

// Merge combines a known order state with a newer update for the same order.
// Fields only move forward: empty fields are filled in, filled sizes and fees
// never shrink and a done order stays done.
func Merge(known, update *Order) *Order {
	if known.ServerOrderID != update.ServerOrderID {
		return known
	}
	m := *known
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&m.ClientOrderID, update.ClientOrderID)
	fill(&m.DoneReason, update.DoneReason)
	if m.Side == "" {
		m.Side = update.Side
	}
	if m.CreateTime.IsZero() {
		m.CreateTime = update.CreateTime
	}
	if m.FinishTime.IsZero() {
		m.FinishTime = update.FinishTime
	}
	if m.Fee.LessThan(update.Fee) {
		m.Fee = update.Fee
	}
	if m.FilledSize.LessThan(update.FilledSize) || m.FilledPrice.IsZero() {
		m.FilledSize = decimal.Max(m.FilledSize, update.FilledSize)
		if !update.FilledPrice.IsZero() {
			m.FilledPrice = update.FilledPrice
		}
	}
	if !known.Done {
		if update.Status != "" {
			m.Status = update.Status
		}
		m.Done = update.Done
	}
	return &m
}

func (v *Order) String() string {
	return fmt.Sprintf("{ID: %s ClientID %s Side %s Price %s FilledSize %s FilledPrice %s Fee %s Status %s CreatedAt %s}",
		v.ServerOrderID, v.ClientOrderID, v.Side, v.Price, v.FilledSize, v.FilledPrice.StringFixed(3), v.Fee.StringFixed(3), v.Status, v.CreateTime.Time.Format(time.DateTime))
}

func (v *Order) Gob() *gobs.Order {
	return &gobs.Order{
		ServerOrderID: v.ServerOrderID,
		ClientOrderID: v.ClientOrderID,
		CreateTime:    v.CreateTime.Time,
		FinishTime:    v.FinishTime.Time,
		Side:          string(v.Side),
		Status:        v.Status,
		Price:         v.Price,
		Size:          v.Size,
		FilledFee:     v.Fee,
		FilledSize:    v.FilledSize,
		FilledPrice:   v.FilledPrice,
		Done:          v.Done,
		DoneReason:    v.DoneReason,
	}
}

func OrderFromGob(pair string, v *gobs.Order) *Order {
	return &Order{
		ServerOrderID: v.ServerOrderID,
		ClientOrderID: v.ClientOrderID,
		Pair:          pair,
		Side:          Side(v.Side),
		Price:         v.Price,
		Size:          v.Size,
		CreateTime:    RemoteTime{v.CreateTime},
		FinishTime:    RemoteTime{v.FinishTime},
		Fee:           v.FilledFee,
		FilledSize:    v.FilledSize,
		FilledPrice:   v.FilledPrice,
		Status:        v.Status,
		Done:          v.Done,
		DoneReason:    v.DoneReason,
	}
}
