// Copyright (c) 2025 BVK Chaitanya

package sglog

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const timeLayout = "20060102-150405"

var (
	pid      = os.Getpid()
	program  = filepath.Base(os.Args[0])
	host     = "unknownhost"
	userName = "unknownuser"
)

func init() {
	if h, err := os.Hostname(); err == nil {
		host, _, _ = strings.Cut(h, ".")
	}
	if u, err := user.Current(); err == nil {
		userName = u.Username
	}
	// Windows user names can contain the domain name.
	userName = strings.ReplaceAll(userName, `\`, "_")
}

type levelFile struct {
	opts  *Options
	level slog.Level

	dir  string
	file *os.File
	bw   *bufio.Writer
	size uint64
}

func (v *Backend) newLevelFile(level slog.Level) *levelFile {
	return &levelFile{opts: &v.opts, level: level}
}

// prefix returns the file name prefix shared by all log files of the level.
func (f *levelFile) prefix() string {
	return fmt.Sprintf("%s.%s.%s.log.%s.", program, host, userName, f.level)
}

func (f *levelFile) fileName(t time.Time) string {
	return fmt.Sprintf("%s%s.%d", f.prefix(), t.Format(timeLayout), pid)
}

// fileTime returns the creation time encoded in a log file name.
func (f *levelFile) fileTime(name string) (time.Time, error) {
	rest, ok := strings.CutPrefix(filepath.Base(name), f.prefix())
	if !ok {
		return time.Time{}, fmt.Errorf("log file name %q has no %q prefix: %w", name, f.prefix(), os.ErrInvalid)
	}
	stamp, _, _ := strings.Cut(rest, ".")
	return time.ParseInLocation(timeLayout, stamp, time.Local)
}

func (f *levelFile) write(now time.Time, msg []byte) error {
	if f.file != nil && f.size+uint64(len(msg)) > f.opts.LogFileMaxSize {
		if err := f.rotate(now); err != nil {
			return err
		}
	}
	if f.file == nil {
		if err := f.open(now); err != nil {
			return err
		}
	}
	n, err := f.bw.Write(msg)
	f.size += uint64(n)
	return err
}

func (f *levelFile) flush() error {
	if f.bw == nil {
		return nil
	}
	if err := f.bw.Flush(); err != nil {
		return err
	}
	return f.file.Sync()
}

func (f *levelFile) close() error {
	if f.file == nil {
		return nil
	}
	ferr := f.bw.Flush()
	cerr := f.file.Close()
	f.file, f.bw, f.size = nil, nil, 0
	return errors.Join(ferr, cerr)
}

func (f *levelFile) rotate(now time.Time) error {
	if err := f.close(); err != nil {
		return err
	}
	return f.create(now)
}

// open reuses the latest log file of the level when it is recent and small
// enough, and creates a new file otherwise.
func (f *levelFile) open(now time.Time) error {
	var errs []error
	for _, dir := range f.opts.LogDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			errs = append(errs, err)
			continue
		}
		f.dir = dir
		if ok, err := f.reuse(now); err != nil {
			errs = append(errs, err)
			continue
		} else if ok {
			return nil
		}
		if err := f.create(now); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	f.dir = ""
	return fmt.Errorf("could not open log file in any of %q: %w", f.opts.LogDirs, errors.Join(errs...))
}

func (f *levelFile) reuse(now time.Time) (bool, error) {
	matches, err := filepath.Glob(filepath.Join(f.dir, f.prefix()+"*"))
	if err != nil {
		return false, err
	}
	slices.Sort(matches)
	for _, m := range slices.Backward(matches) {
		ts, err := f.fileTime(m)
		if err != nil {
			continue
		}
		if now.Sub(ts) > f.opts.ReuseFileDuration {
			return false, nil
		}
		fi, err := os.Stat(m)
		if err != nil || !fi.Mode().IsRegular() || uint64(fi.Size()) >= f.opts.LogFileMaxSize {
			return false, nil
		}
		fp, err := os.OpenFile(m, os.O_WRONLY|os.O_APPEND, f.opts.LogFileMode)
		if err != nil {
			return false, nil
		}
		f.setFile(fp, uint64(fi.Size()))
		return true, nil
	}
	return false, nil
}

func (f *levelFile) create(now time.Time) error {
	name := f.fileName(now)
	for i := 1; ; i++ {
		path := filepath.Join(f.dir, name)
		fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, f.opts.LogFileMode)
		if errors.Is(err, fs.ErrExist) {
			name = fmt.Sprintf("%s.%d", f.fileName(now), i)
			continue
		}
		if err != nil {
			return err
		}
		f.setFile(fp, 0)

		fmt.Fprintf(f.bw, "Log file created at: %s\n", now.Format("2006/01/02 15:04:05"))
		fmt.Fprintf(f.bw, "Running on machine: %s\n", host)
		fmt.Fprintf(f.bw, "Log line format: [DIWE]mmdd hh:mm:ss.uuuuuu pid file:line] msg\n")
		f.size = uint64(f.bw.Buffered())

		link := filepath.Join(f.dir, fmt.Sprintf("%s.%s", program, f.level))
		os.Remove(link)
		os.Symlink(name, link)
		return nil
	}
}

func (f *levelFile) setFile(fp *os.File, size uint64) {
	f.file = fp
	f.bw = bufio.NewWriterSize(fp, 256*1024)
	f.size = size
}
