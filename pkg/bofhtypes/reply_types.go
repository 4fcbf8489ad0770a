// Package bofhtypes defines reply and display-format types.
// This file contains the tagged reply union returned by command dispatch and the
// server-declared format specification used to render structured replies.
package bofhtypes

// ReplyKind tags the shape of a dispatch reply.
type ReplyKind int

const (
	// ReplyNone is an empty reply; nothing is shown.
	ReplyNone ReplyKind = iota
	// ReplyScalar is a plain string printed verbatim.
	ReplyScalar
	// ReplyRows is structured data rendered through a FormatSpec.
	ReplyRows
)

// Reply is the result of dispatching a command: Scalar(string) | Rows([]record).
type Reply struct {
	Kind   ReplyKind
	Scalar string
	Rows   []map[string]string
	// IsSequence records whether the service answered with a sequence. A single
	// mapping is normalized into a one-record Rows reply with IsSequence false.
	IsSequence bool
}

// NoReply returns an empty reply.
func NoReply() Reply {
	return Reply{Kind: ReplyNone}
}

// ScalarReply returns a reply holding a single string.
func ScalarReply(s string) Reply {
	return Reply{Kind: ReplyScalar, Scalar: s}
}

// RowsReply returns a reply holding the given records.
func RowsReply(rows []map[string]string, isSequence bool) Reply {
	return Reply{Kind: ReplyRows, Rows: rows, IsSequence: isSequence}
}

// FormatLine is one printf-style template and the record fields substituted into it,
// in order. A field may carry a display type after its name, e.g.
// "expire_date:date:yyyy-MM-dd".
type FormatLine struct {
	Template string
	Fields   []string
	// Header, when set, is printed once before the records rendered by this line.
	Header string
}

// FormatSpec is the server-declared display format of a command's structured reply.
type FormatSpec struct {
	Header    string
	HasHeader bool
	Lines     []FormatLine
}
