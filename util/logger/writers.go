// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"os"
)

// Ansi terminal color codes
const (
	csi      = "\x1B["
	white    = "37m"
	green    = "32m"
	byellow  = "33;1m"
	bred     = "31;1m"
	bmagenta = "35;1m"
)

// Maps log level to color sequence
var colorMap = map[int]string{
	DEBUG: white,
	INFO:  green,
	WARN:  byellow,
	ERROR: bred,
	FATAL: bmagenta,
}

// Console is a console writer used for logging.
type Console struct {
	writer *os.File
	color  bool
}

// NewConsole creates and returns a new logger Console writer.
// If color is true, this writer uses Ansi codes to write
// log messages in color according to their level.
func NewConsole(color bool) *Console {

	return &Console{os.Stderr, color}
}

// Write writes the provided logger event to the console.
func (w *Console) Write(event *Event) {

	if w.color {
		w.writer.Write([]byte(csi))
		w.writer.Write([]byte(colorMap[event.Level]))
	}
	w.writer.Write([]byte(event.Line))
	if w.color {
		w.writer.Write([]byte(csi))
		w.writer.Write([]byte(white))
	}
}

// Close closes the console writer.
func (w *Console) Close() {

}

// File is a file writer used for logging.
type File struct {
	writer *os.File
}

// NewFile creates and returns a pointer to a new File logger writer
// appending to the file with the specified name.
func NewFile(filename string) (*File, error) {

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &File{f}, nil
}

// Write writes the provided logger event to the file.
func (w *File) Write(event *Event) {

	w.writer.Write([]byte(event.Line))
}

// Close closes the file writer.
func (w *File) Close() {

	w.writer.Close()
}
