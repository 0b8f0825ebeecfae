// Package patch implements the edit protocol between the model and the
// document editor: parsing free-form model output into Change records and
// applying them to LaTeX source.
package patch

import "strings"

// Recognized change kinds. Anything else is parsed but never applied,
// so a model hallucinating a new operation degrades to a no-op.
const (
	KindReplace     = "replace"
	KindDelete      = "delete"
	KindInsertAfter = "insert_after"
)

// Change represents a single edit operation requested by the model.
type Change struct {
	Type    string `json:"type"`
	Search  string `json:"search"`
	Replace string `json:"replace,omitempty"`
	Content string `json:"content,omitempty"`
}

// Apply applies changes to doc in order and returns the result. Each
// change is applied to the output of the previous one, so a later change
// may match text that an earlier change introduced. A change whose search
// text is empty or not found leaves the document untouched; there is no
// rollback across the batch.
func Apply(doc string, changes []Change) string {
	result := doc
	for _, c := range changes {
		result = applyOne(result, c)
	}
	return result
}

// applyOne applies a single change against the first occurrence of its
// search text. Matching is exact and case-sensitive.
func applyOne(doc string, c Change) string {
	if c.Search == "" {
		return doc
	}

	idx := strings.Index(doc, c.Search)
	if idx < 0 {
		return doc
	}
	end := idx + len(c.Search)

	switch c.Type {
	case KindReplace:
		return doc[:idx] + c.Replace + doc[end:]
	case KindDelete:
		return doc[:idx] + doc[end:]
	case KindInsertAfter:
		return doc[:end] + c.Content + doc[end:]
	default:
		return doc
	}
}
