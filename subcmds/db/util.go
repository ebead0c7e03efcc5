// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bvk/oco/dispatch"
	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/job"
	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/orderstate"
)

// TypeNameValue returns a pointer to a zero value of the named gob type.
func TypeNameValue(typename string) (any, error) {
	var v any
	switch typename {
	case "JobData":
		v = new(gobs.JobData)
	case "Job":
		v = new(jobdef.Job)
	case "OrderStateNotifierState":
		v = new(gobs.OrderStateNotifierState)
	case "TelegramState":
		v = new(gobs.TelegramState)
	case "KeyValue":
		v = new(gobs.KeyValue)
	default:
		return nil, fmt.Errorf("unsupported type name %q: %w", typename, os.ErrInvalid)
	}
	return v, nil
}

// KeyTypeName returns the gob type name for the values stored at the key.
func KeyTypeName(key string) (string, bool) {
	switch {
	case strings.HasPrefix(key, job.Keyspace):
		return "JobData", true
	case strings.HasPrefix(key, dispatch.Keyspace):
		return "Job", true
	case strings.HasPrefix(key, orderstate.Keyspace):
		return "OrderStateNotifierState", true
	case strings.HasPrefix(key, "/telegram/"):
		return "TelegramState", true
	}
	return "", false
}

// formatValue decodes the gob value of the named type and returns it as JSON.
// Values without a known type are returned in hex.
func formatValue(typename string, r io.Reader, indent string) (string, error) {
	if typename == "" {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(data), nil
	}
	value, err := TypeNameValue(typename)
	if err != nil {
		return "", err
	}
	if err := gob.NewDecoder(r).Decode(value); err != nil {
		return "", fmt.Errorf("could not decode %s value: %w", typename, err)
	}
	var data []byte
	if indent == "" {
		data, err = json.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", indent)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
