package internal

import (
	"fmt"
	"time"
)

// CreateTestResponse creates a response as the simulated engine would shape it
func CreateTestResponse(op Operation, text string) *Response {
	req := Request{Text: text, Operation: op}
	switch op {
	case OperationSummarize:
		req.SentenceLimit = DefaultSentenceLimit
	case OperationTranslate:
		req.TargetLanguage = "fr"
	case OperationRewrite:
		req.Tone = ToneFormal
	}
	return &Response{
		Text:           text,
		Operation:      op,
		ElapsedSeconds: 0.5,
		Formatted:      formatMarkdown(req, text),
	}
}

// CreateTestHistoryEntry creates a history entry with a deterministic id
func CreateTestHistoryEntry(id, source string, op Operation, createdAt time.Time) HistoryEntry {
	return HistoryEntry{
		ID:         id,
		SourceName: source,
		Operation:  op,
		CreatedAt:  createdAt,
		Preview:    fmt.Sprintf("%s of %s", op.Title(), source),
	}
}

// CreateTestHistory creates n entries, newest first, one hour apart, cycling
// through the operations
func CreateTestHistory(n int, newest time.Time) []HistoryEntry {
	entries := make([]HistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		op := Operations[i%len(Operations)]
		entries = append(entries, CreateTestHistoryEntry(
			fmt.Sprintf("entry-%d", i),
			fmt.Sprintf("doc-%d.txt", i),
			op,
			newest.Add(-time.Duration(i)*time.Hour),
		))
	}
	return entries
}
