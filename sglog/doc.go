// Copyright (c) 2025 BVK Chaitanya

// Package sglog implements a log/slog handler that writes glog style log
// files, one file per severity. File for a severity receives the records at
// that severity and above, so the INFO file is the complete log and the ERROR
// file holds only the errors.
//
// Log file names are in the form
//
//	<program>.<host>.<user>.log.<LEVEL>.<yyyymmdd-hhmmss>.<pid>
//
// and a <program>.<LEVEL> symbolic link points to the current file. Files are
// rotated when they grow beyond the size limit. A restarted process appends
// to the latest file of its severity when the file is recent enough, which
// keeps a crash-looping daemon from creating a new file on every restart.
package sglog
