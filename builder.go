package typedjson

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/typedjson/i18n"
)

// builder accumulates the outcome of transcoding one subtree: a value, or the
// issues explaining why there is none. The value is only meaningful when
// issues is empty. fatal carries configuration errors, which abort the whole
// traversal instead of being accumulated.
type builder struct {
	value  any
	issues Issues
	fatal  error
}

func (b *builder) ok() bool { return len(b.issues) == 0 && b.fatal == nil }

func (b *builder) set(v any) { b.value = v }

// merge appends the child's issues and reports whether the child succeeded.
func (b *builder) merge(child *builder) bool {
	if child.fatal != nil && b.fatal == nil {
		b.fatal = child.fatal
	}
	if len(child.issues) > 0 {
		b.issues = AppendIssues(b.issues, child.issues...)
	}
	return child.ok()
}

func (b *builder) add(path Path, code string, v any, t Type, params map[string]string) {
	b.issues = AppendIssues(b.issues, Issue{
		Path:     path.Pointer(),
		Location: path,
		Code:     code,
		Message:  i18n.T(code, params),
		Value:    v,
		Type:     t,
		Params:   params,
	})
}

func (b *builder) addCause(path Path, code string, v any, t Type, cause error) {
	var params map[string]string
	if cause != nil {
		params = map[string]string{"cause": cause.Error()}
	}
	b.add(path, code, v, t, params)
	b.issues[len(b.issues)-1].Cause = cause
}

func (b *builder) fail(path Path, format string, a ...any) *builder {
	b.fatal = fmt.Errorf("%w at %s: %s", ErrInvalidType, path.Pointer(), fmt.Sprintf(format, a...))
	return b
}

// nameList renders the count/names parameters shared by the field and key
// count messages.
func nameList(names []string) map[string]string {
	return map[string]string{
		"count": strconv.Itoa(len(names)),
		"names": strings.Join(names, ", "),
	}
}
