package engine

// Frames tracks object/array nesting so a flat token stream (as produced by
// encoding/json style decoders) can tell object keys from string values. It
// also knows the position of the value being read, and with TrackKeys set the
// keys already seen in each open object.
type Frames struct {
	TrackKeys bool

	stack []frame
}

type frame struct {
	object       bool
	expectingKey bool
	key          string // key of the current member (objects)
	index        int    // index of the current element (arrays)
	seen         map[string]struct{}
}

// Step is one level of the current position: a member key or an element index.
type Step struct {
	Key    string
	Index  int
	Object bool
}

// Open enters an object or array.
func (f *Frames) Open(object bool) {
	fr := frame{object: object, expectingKey: object}
	if object && f.TrackKeys {
		fr.seen = map[string]struct{}{}
	}
	f.stack = append(f.stack, fr)
}

// Close leaves the current container; the container itself counts as a value
// of its parent.
func (f *Frames) Close() {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.Value()
}

// Key reports whether a string token at this position is an object key, and
// consumes the key position when it is.
func (f *Frames) Key() bool {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	return false
}

// Member records name as the key of the current object member, consuming the
// key position. It reports whether name was already seen in this object;
// duplicates are only detected with TrackKeys.
func (f *Frames) Member(name string) (dup bool) {
	n := len(f.stack)
	if n == 0 || !f.stack[n-1].object {
		return false
	}
	top := &f.stack[n-1]
	top.expectingKey = false
	top.key = name
	if top.seen != nil {
		_, dup = top.seen[name]
		top.seen[name] = struct{}{}
	}
	return dup
}

// Value records that a value was consumed.
func (f *Frames) Value() {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object {
			top.expectingKey = true
		} else {
			top.index++
		}
	}
}

// Depth returns the number of open containers.
func (f *Frames) Depth() int { return len(f.stack) }

// Position returns the steps leading to the value about to be read, or to the
// member just named.
func (f *Frames) Position() []Step {
	steps := make([]Step, 0, len(f.stack))
	for _, fr := range f.stack {
		switch {
		case !fr.object:
			steps = append(steps, Step{Index: fr.index})
		case !fr.expectingKey:
			steps = append(steps, Step{Key: fr.key, Object: true})
		}
	}
	return steps
}
