package patch

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParsedResponse is the structured form of one model reply: the prose
// explanation and the edits it requested, in order.
type ParsedResponse struct {
	Explanation string
	Changes     []Change
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")

	// Fallback for models that emit the changes object without a fence.
	// Non-greedy so a trailing prose brace doesn't swallow the document.
	bareChangesRe = regexp.MustCompile(`(?s)\{\s*"changes"\s*:\s*\[.*?\]\s*\}`)
)

// changesPayload mirrors the wire shape {"changes": [...]}. The pointer
// distinguishes a missing "changes" key from a present-but-empty array.
type changesPayload struct {
	Changes *[]Change `json:"changes"`
}

// Parse extracts an explanation and a change list from raw model output.
// Three attempts are made in order, first success wins: a fenced ```json
// block, a bare {"changes": [...]} object anywhere in the text, and
// finally the whole text as a plain answer with no changes. Parse never
// fails: malformed payloads fall through to the next attempt, and a pure
// Q&A reply with no JSON at all is a normal outcome, not an error.
func Parse(raw string) ParsedResponse {
	if resp, ok := parseFenced(raw); ok {
		return resp
	}
	if resp, ok := parseBare(raw); ok {
		return resp
	}
	return ParsedResponse{Explanation: raw}
}

func parseFenced(raw string) (ParsedResponse, bool) {
	m := fencedJSONRe.FindStringSubmatchIndex(raw)
	if m == nil {
		return ParsedResponse{}, false
	}

	inner := raw[m[2]:m[3]]
	changes, ok := decodeChanges(inner)
	if !ok {
		return ParsedResponse{}, false
	}

	return ParsedResponse{
		Explanation: strings.TrimSpace(raw[:m[0]]),
		Changes:     changes,
	}, true
}

func parseBare(raw string) (ParsedResponse, bool) {
	m := bareChangesRe.FindStringIndex(raw)
	if m == nil {
		return ParsedResponse{}, false
	}

	changes, ok := decodeChanges(raw[m[0]:m[1]])
	if !ok {
		return ParsedResponse{}, false
	}

	return ParsedResponse{
		Explanation: strings.TrimSpace(raw[:m[0]]),
		Changes:     changes,
	}, true
}

// decodeChanges parses a JSON object and requires a "changes" array.
// Unknown fields on the object and on individual changes are ignored;
// changes with a missing type or search stay in the list (the applier
// skips them).
func decodeChanges(s string) ([]Change, bool) {
	var payload changesPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, false
	}
	if payload.Changes == nil {
		return nil, false
	}
	return *payload.Changes, true
}
