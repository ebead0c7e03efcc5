// Copyright (c) 2023 BVK Chaitanya

// Package idgen derives stable client order ids from job ids, so that a job
// that is re-run after a crash submits the same client id to the exchange.
package idgen

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/google/uuid"
)

// Generator creates a sequence of uuids derived from a seed string.
type Generator struct {
	base uuid.UUID
	next uint64
}

func New(seed string, offset uint64) *Generator {
	return &Generator{
		base: uuid.UUID(md5.Sum([]byte(seed))),
		next: offset,
	}
}

func (v *Generator) Offset() uint64 {
	return v.next
}

func (v *Generator) NextID() uuid.UUID {
	var buf [16 + 8]byte
	copy(buf[:16], v.base[:])
	binary.BigEndian.PutUint64(buf[16:], v.next)
	v.next++

	id := uuid.UUID(md5.Sum(buf[:]))
	// Mark the id as a version-4, RFC-4122 variant so that exchanges which
	// validate client ids accept it.
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// ClientOrderID returns the client order id for the n-th order placed by a
// job.
func ClientOrderID(jobID string, n uint64) uuid.UUID {
	return New(jobID, n).NextID()
}
