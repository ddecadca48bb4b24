package typedjson

import (
	"strconv"
	"strings"
)

// PathStep is one descent step: a field/map key or an array index.
type PathStep struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s PathStep) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a value inside a nested value. It is immutable: Field and Index
// return extended copies, so sibling subtrees never share steps.
type Path struct {
	steps []PathStep
}

// Field returns p extended by a field name or map key.
func (p Path) Field(name string) Path {
	return Path{steps: append(append(make([]PathStep, 0, len(p.steps)+1), p.steps...), PathStep{Key: name})}
}

// Index returns p extended by an array index.
func (p Path) Index(i int) Path {
	return Path{steps: append(append(make([]PathStep, 0, len(p.steps)+1), p.steps...), PathStep{Index: i, IsIndex: true})}
}

// Len returns the number of steps.
func (p Path) Len() int { return len(p.steps) }

// Steps returns a copy of the steps.
func (p Path) Steps() []PathStep { return append([]PathStep(nil), p.steps...) }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders p as a JSON Pointer (RFC 6901). The root renders as "/".
func (p Path) Pointer() string {
	if len(p.steps) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p.steps {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
			continue
		}
		b.WriteString(pointerEscaper.Replace(s.Key))
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }
