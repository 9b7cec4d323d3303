package answer

import "strings"

const (
	summaryLabel = "Summary:"
	answerLabel  = "Answer:"

	// NoAnswer stands in for an answer the provider did not give.
	NoAnswer = "No answer provided"
)

// Segments holds the raw summary and answer parts of a completion, before normalization.
type Segments struct {
	Summary string
	Answer  string
}

// Splitter cuts a provider completion into summary and answer segments.
type Splitter interface {
	Split(completion string) Segments
}

// DelimiterSplitter splits on the first "Answer:" label. It is a best-effort heuristic:
// nothing forces the provider to follow the requested layout.
type DelimiterSplitter struct{}

func (DelimiterSplitter) Split(completion string) Segments {
	head, tail, found := strings.Cut(completion, answerLabel)
	seg := Segments{Summary: stripSummaryLabel(head), Answer: tail}
	if !found || strings.TrimSpace(tail) == "" {
		seg.Answer = NoAnswer
	}
	return seg
}

// stripSummaryLabel drops a leading "Summary:" label, also when it is wrapped in
// emphasis markers such as "**Summary:**".
func stripSummaryLabel(head string) string {
	trimmed := strings.TrimLeft(head, " \t\r\n*")
	if rest, ok := strings.CutPrefix(trimmed, summaryLabel); ok {
		return rest
	}
	return head
}
