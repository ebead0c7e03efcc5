// Copyright (c) 2025 BVK Chaitanya

package sglog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"
)

type slogHandler struct {
	backend *Backend

	// attrs holds the preformatted attributes from WithAttrs.
	attrs []byte

	// group is the dotted key prefix from WithGroup.
	group string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.backend.level.Level()
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogHandler{
		backend: h.backend,
		attrs:   h.attrs,
		group:   h.group + name + ".",
	}
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var buf bytes.Buffer
	for _, a := range attrs {
		appendAttr(&buf, a, h.group)
	}
	return &slogHandler{
		backend: h.backend,
		attrs:   append(slices.Clip(h.attrs), buf.Bytes()...),
		group:   h.group,
	}
}

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)
	buf.Reset()

	level := normalize(r.Level)
	h.format(buf, level, r)
	return h.backend.emit(time.Now(), level, buf.Bytes())
}

// format writes the record in glog format:
//
//	Lmmdd hh:mm:ss.uuuuuu pid file:line] msg key=value...
func (h *slogHandler) format(buf *bytes.Buffer, level slog.Level, r slog.Record) {
	buf.WriteByte(levelLetter(level))
	buf.WriteString(r.Time.Format("0102 15:04:05.000000"))
	fmt.Fprintf(buf, " %7d ", pid)

	file, line := "???", 0
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		file, line = filepath.Base(frame.File), frame.Line
	}
	buf.WriteString(file)
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(line))
	buf.WriteString("] ")
	buf.WriteString(r.Message)

	buf.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(buf, a, h.group)
		return true
	})

	if n := h.backend.opts.LogMessageMaxLen; buf.Len() > n-1 {
		buf.Truncate(n - 1)
	}
	buf.WriteByte('\n')
}

func appendAttr(buf *bytes.Buffer, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	switch a.Value.Kind() {
	case slog.KindString:
		fmt.Fprintf(buf, " %s%s=%q", prefix, a.Key, a.Value.String())
	case slog.KindTime:
		fmt.Fprintf(buf, " %s%s=%s", prefix, a.Key, a.Value.Time().Format(time.RFC3339Nano))
	case slog.KindGroup:
		if a.Key != "" {
			prefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, ga, prefix)
		}
	default:
		fmt.Fprintf(buf, " %s%s=%s", prefix, a.Key, a.Value)
	}
}

func levelLetter(level slog.Level) byte {
	switch {
	case level >= slog.LevelError:
		return 'E'
	case level >= slog.LevelWarn:
		return 'W'
	case level >= slog.LevelInfo:
		return 'I'
	}
	return 'D'
}

// normalize rounds custom levels down to the nearest standard level.
func normalize(v slog.Level) slog.Level {
	switch {
	case v >= slog.LevelError:
		return slog.LevelError
	case v >= slog.LevelWarn:
		return slog.LevelWarn
	case v >= slog.LevelInfo:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
