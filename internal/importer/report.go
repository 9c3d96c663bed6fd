package importer

// report.go assembles the final error report.
//
// Executor failure messages are composite: one command may reject several
// statements, and the executor joins their messages with ErrorDelimiter.
// The reporter splits composite messages back into individual descriptors
// so the response carries one entry per failure.

import "strings"

// ErrorDelimiter separates sub-errors inside a composite executor message.
const ErrorDelimiter = "-\n-"

// SplitErrors splits a possibly composite error message into individual
// descriptors. Empty fragments are dropped.
func SplitErrors(msg string) []string {
	parts := strings.Split(msg, ErrorDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinErrors combines sub-error messages into one composite message that
// SplitErrors reverses.
func JoinErrors(msgs []string) string {
	return strings.Join(msgs, ErrorDelimiter)
}
