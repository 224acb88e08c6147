// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daserror defines the error taxonomy shared by all parsers,
// compilers and codecs of the das module. Every failure surfaced to a
// caller carries a Kind, which the command line front-end translates
// into its process exit code.
package daserror

import (
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// ASCII parse errors
	InvalidKeyword Kind = iota + 1
	InvalidType
	MissingIdentifier
	InvalidArgument
	TooManyAttributes
	NotEnoughAttributes
	IncompleteNewline
	InvalidCSType
	InvalidSymbol
	UnexpectedEndStatement
	IncompleteScope
	ScopeAlreadyClosed
	UnexpectedEOF

	// Binary parse errors
	InvalidSignature
	InvalidDataLength
	InvalidValue

	// URI errors
	UnresolvedURI
	MalformedURI
	InvalidBase64

	// Huffman codec errors
	CorruptEncoding

	// glTF specific errors
	UnsupportedExtension
	InvalidAccessor
	MissingField
	CyclicGraph
	NonIndexedPrimitive

	// Generic I/O errors
	InvalidFile
)

var kindNames = map[Kind]string{
	InvalidKeyword:         "invalid keyword",
	InvalidType:            "invalid type",
	MissingIdentifier:      "missing identifier",
	InvalidArgument:        "invalid argument",
	TooManyAttributes:      "too many attributes",
	NotEnoughAttributes:    "not enough attributes",
	IncompleteNewline:      "incomplete newline",
	InvalidCSType:          "invalid cs type",
	InvalidSymbol:          "invalid symbol",
	UnexpectedEndStatement: "unexpected end statement",
	IncompleteScope:        "incomplete scope",
	ScopeAlreadyClosed:     "scope already closed",
	UnexpectedEOF:          "unexpected end of file",
	InvalidSignature:       "invalid signature",
	InvalidDataLength:      "invalid data length",
	InvalidValue:           "invalid value",
	UnresolvedURI:          "unresolved uri",
	MalformedURI:           "malformed uri",
	InvalidBase64:          "invalid base64",
	CorruptEncoding:        "corrupt encoding",
	UnsupportedExtension:   "unsupported extension",
	InvalidAccessor:        "invalid accessor",
	MissingField:           "missing field",
	CyclicGraph:            "cyclic graph",
	NonIndexedPrimitive:    "non indexed primitive",
	InvalidFile:            "invalid file",
}

// String returns the human readable name of the kind.
func (k Kind) String() string {

	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is the concrete error type returned by the das module.
// File, Line and Offset carry the input context when known;
// a zero Line or negative Offset means the field is not set.
type Error struct {
	Kind   Kind
	File   string
	Line   int
	Offset int64
	Msg    string
	Err    error
}

// New creates an error with the specified kind and message.
func New(kind Kind, msg string) *Error {

	return &Error{Kind: kind, Offset: -1, Msg: msg}
}

// Newf creates an error with the specified kind and formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {

	return &Error{Kind: kind, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with the specified kind wrapping an underlying error.
func Wrap(kind Kind, err error) *Error {

	return &Error{Kind: kind, Offset: -1, Msg: err.Error(), Err: err}
}

// AtLine returns a copy of the error annotated with file and line context.
func (e *Error) AtLine(file string, line int) *Error {

	ne := *e
	ne.File = file
	ne.Line = line
	return &ne
}

// AtOffset returns a copy of the error annotated with file and byte offset context.
func (e *Error) AtOffset(file string, offset int64) *Error {

	ne := *e
	ne.File = file
	ne.Offset = offset
	return &ne
}

// Error implements the error interface.
func (e *Error) Error() string {

	loc := ""
	switch {
	case e.File != "" && e.Line > 0:
		loc = fmt.Sprintf("%s:%d: ", e.File, e.Line)
	case e.File != "" && e.Offset >= 0:
		loc = fmt.Sprintf("%s@%d: ", e.File, e.Offset)
	case e.File != "":
		loc = e.File + ": "
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s%s: %s", loc, e.Kind, e.Msg)
	}
	return loc + e.Kind.String()
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error {

	return e.Err
}

// KindOf returns the kind of the specified error or 0
// when the error was not produced by this module.
func KindOf(err error) Kind {

	for err != nil {
		if de, ok := err.(*Error); ok {
			return de.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}
