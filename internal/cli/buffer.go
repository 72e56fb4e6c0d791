package cli

import "github.com/bastiangx/typr-suggest/pkg/suggest"

// Buffer is a single line of text with a caret or a selected range.
// Offsets count runes. start <= end always holds; they are equal when
// nothing is selected.
type Buffer struct {
	text       []rune
	start, end int
}

// Value returns the buffer text.
func (b *Buffer) Value() string {
	return string(b.text)
}

// Selection returns the selected range.
func (b *Buffer) Selection() (start, end int) {
	return b.start, b.end
}

// Segments splits the text around the selection.
func (b *Buffer) Segments() (prefix, selection, postfix string) {
	return string(b.text[:b.start]), string(b.text[b.start:b.end]), string(b.text[b.end:])
}

// Apply replaces the buffer with state, clamping the selection.
func (b *Buffer) Apply(state suggest.State) {
	b.text = []rune(state.Value)
	b.start = clamp(state.SelectionStart, 0, len(b.text))
	b.end = clamp(state.SelectionEnd, b.start, len(b.text))
}

// Insert replaces the selection with s.
func (b *Buffer) Insert(s string) {
	r := []rune(s)
	text := make([]rune, 0, len(b.text)-(b.end-b.start)+len(r))
	text = append(text, b.text[:b.start]...)
	text = append(text, r...)
	text = append(text, b.text[b.end:]...)
	b.text = text
	b.start += len(r)
	b.end = b.start
}

// Backspace deletes the selection, or the rune before the caret.
func (b *Buffer) Backspace() {
	if b.start == b.end && b.start > 0 {
		b.start--
	}
	b.Insert("")
}

// Delete deletes the selection, or the rune after the caret.
func (b *Buffer) Delete() {
	if b.start == b.end && b.end < len(b.text) {
		b.end++
	}
	b.Insert("")
}

// Move collapses the selection and moves the caret by delta runes. A
// selection collapses to the side of the move without moving further.
func (b *Buffer) Move(delta int) {
	switch {
	case b.start != b.end && delta < 0:
		b.end = b.start
	case b.start != b.end:
		b.start = b.end
	default:
		b.start = clamp(b.start+delta, 0, len(b.text))
		b.end = b.start
	}
}

// Home moves the caret to the start of the line.
func (b *Buffer) Home() {
	b.start, b.end = 0, 0
}

// End moves the caret to the end of the line.
func (b *Buffer) End() {
	b.start, b.end = len(b.text), len(b.text)
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.text = nil
	b.start, b.end = 0, 0
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
