package typedjson

// Category is the closed set of type shapes the transcoder dispatches on.
type Category int

const (
	CategoryPrimitive Category = iota
	CategoryBuffer              // bytes and fixed
	CategoryArray
	CategoryMap
	CategoryRecord
	CategoryErrorRecord
	CategoryWrappedUnion
	CategoryUnwrappedUnion
	CategoryLogical
)

func (c Category) String() string {
	switch c {
	case CategoryPrimitive:
		return "primitive"
	case CategoryBuffer:
		return "buffer"
	case CategoryArray:
		return "array"
	case CategoryMap:
		return "map"
	case CategoryRecord:
		return "record"
	case CategoryErrorRecord:
		return "error"
	case CategoryWrappedUnion:
		return "union(wrapped)"
	case CategoryUnwrappedUnion:
		return "union"
	case CategoryLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// EqualOpt tunes structural comparison.
type EqualOpt struct {
	// IgnoreMapOrder treats two ordered objects with the same entries in a
	// different order as equal.
	IgnoreMapOrder bool
}

// Type is the read-only capability surface a schema node exposes to the
// transcoder. Implementations must be immutable once handed out.
type Type interface {
	Category() Category
	// Name is the branch name used when the type appears inside a union.
	Name() string
	// IsValid reports whether v is a valid in-memory value. The transcoder only
	// consults it for primitive and buffer categories.
	IsValid(v any) bool
	// Equal compares two in-memory values of this type structurally.
	Equal(a, b any, opt EqualOpt) bool
}

// RecordValue is implemented by record instances that know their own type,
// such as those built by RecordType.BuildRecord. They are read as objects only
// where a record is expected.
type RecordValue interface {
	ObjectView
	RecordType() RecordType
}

// ArrayType is implemented by CategoryArray nodes.
type ArrayType interface {
	Type
	Items() Type
}

// MapType is implemented by CategoryMap nodes.
type MapType interface {
	Type
	Values() Type
}

// Field is a declared record field.
type Field interface {
	Name() string
	Type() Type
	// Default returns the in-memory default value and whether one is declared.
	Default() (any, bool)
}

// RecordType is implemented by CategoryRecord and CategoryErrorRecord nodes.
type RecordType interface {
	Type
	Fields() []Field
	Field(name string) (Field, bool)
	// BuildRecord receives one value per declared field, in declaration order.
	// Omitted fields are passed as Undefined.
	BuildRecord(values []any) (any, error)
}

// UnionType is implemented by CategoryWrappedUnion and CategoryUnwrappedUnion
// nodes.
type UnionType interface {
	Type
	Branches() []Type
	Branch(name string) (Type, bool)
	// BranchType resolves the branch an unwrapped in-memory value belongs to.
	BranchType(v any) (Type, bool)
	// Wrap builds the in-memory representation of a wrapped branch value.
	Wrap(branch Type, v any) any
}

// LogicalType is implemented by CategoryLogical nodes.
type LogicalType interface {
	Type
	Underlying() Type
	// ToValue converts a domain value into a value of the underlying type.
	ToValue(v any) (any, error)
	// FromValue converts a decoded underlying value into the domain value.
	FromValue(v any) (any, error)
}

// Normalizer is an optional capability of primitive types. When present, the
// decoded value is replaced by Normalize(v) (for example json.Number -> int32).
type Normalizer interface {
	Normalize(v any) any
}

// Enumerator is an optional capability of enum-like primitive types.
type Enumerator interface {
	Symbols() []string
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks an absent value: an omitted record field passed to
// BuildRecord, or a logical conversion that produced nothing.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// IsNullType reports whether t is the null primitive.
func IsNullType(t Type) bool {
	return t != nil && t.Category() == CategoryPrimitive && t.Name() == "null"
}
