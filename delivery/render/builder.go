package render

import "strings"

// Builder assembles a multi-line message. AddField skips empty values so a
// label is never printed with nothing after it.
type Builder struct {
	parts []string
}

func (b *Builder) AddLine(line string) *Builder {
	b.parts = append(b.parts, line)
	return b
}

func (b *Builder) AddField(label, value, suffix string) *Builder {
	if value == "" {
		return b
	}
	b.parts = append(b.parts, label+": "+value+suffix)
	return b
}

func (b *Builder) String() string {
	return strings.Join(b.parts, "\n")
}
