package ai

import "strings"

// Models often open an edit reply with a boilerplate label before the
// actual explanation. In streaming mode that label must be removed
// before the first content chunk is forwarded, without waiting for the
// whole response.
//
// The stripper buffers content until it has seen enough of the reply
// to know whether a label is present (a size threshold or the first
// line break), strips at most one label from the buffer start, flushes
// the buffer, and from then on forwards everything verbatim. Thinking
// chunks never pass through it.

// headerBufferLimit is how much content is buffered before the header
// check runs, if no newline arrives first.
const headerBufferLimit = 48

// headerPatterns is checked in order against the lowercased buffer
// start; the first match is stripped, and only that one.
var headerPatterns = []string{
	"**explanation:**",
	"**explanation**:",
	"explanation:",
	"**explicación:**",
	"explicación:",
	"**answer:**",
	"answer:",
	"**respuesta:**",
	"respuesta:",
}

type headerStripper struct {
	flushed bool
	buf     strings.Builder
}

// Feed accepts one content chunk and returns the chunks to forward,
// which may be none while the stripper is still buffering.
func (h *headerStripper) Feed(chunk string) []string {
	if h.flushed {
		return []string{chunk}
	}
	h.buf.WriteString(chunk)
	buffered := h.buf.String()
	if h.buf.Len() < headerBufferLimit && !strings.Contains(buffered, "\n") {
		return nil
	}
	h.flushed = true
	if out := stripHeader(buffered); out != "" {
		return []string{out}
	}
	return nil
}

// Flush drains whatever is still buffered at end of stream. Short
// replies that never hit the threshold are stripped here.
func (h *headerStripper) Flush() string {
	if h.flushed {
		return ""
	}
	h.flushed = true
	return stripHeader(h.buf.String())
}

func stripHeader(s string) string {
	lower := strings.ToLower(s)
	for _, pat := range headerPatterns {
		if strings.HasPrefix(lower, pat) {
			return strings.TrimLeft(s[len(pat):], " \t\n")
		}
	}
	return s
}
