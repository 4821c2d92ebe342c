package typelib

// TypeTag classifies a type signature node.
type TypeTag uint8

const (
	TagVoid TypeTag = iota
	TagBoolean
	TagInt8
	TagUint8
	TagInt16
	TagUint16
	TagInt32
	TagUint32
	TagInt64
	TagUint64
	TagFloat
	TagDouble
	TagGType
	TagUTF8
	TagFilename
	TagArray
	TagInterface
	TagGList
	TagGSList
	TagGHash
	TagError
	TagUnichar
)

var typeTagNames = [...]string{
	TagVoid:      "void",
	TagBoolean:   "gboolean",
	TagInt8:      "gint8",
	TagUint8:     "guint8",
	TagInt16:     "gint16",
	TagUint16:    "guint16",
	TagInt32:     "gint32",
	TagUint32:    "guint32",
	TagInt64:     "gint64",
	TagUint64:    "guint64",
	TagFloat:     "gfloat",
	TagDouble:    "gdouble",
	TagGType:     "GType",
	TagUTF8:      "utf8",
	TagFilename:  "filename",
	TagArray:     "array",
	TagInterface: "interface",
	TagGList:     "glist",
	TagGSList:    "gslist",
	TagGHash:     "ghash",
	TagError:     "error",
	TagUnichar:   "gunichar",
}

// String matches the spelling used by the C introspection library.
func (t TypeTag) String() string {
	if int(t) < len(typeTagNames) {
		return typeTagNames[t]
	}
	return "unknown"
}

// IsBasic reports whether values of this tag are plain scalars or strings.
func (t TypeTag) IsBasic() bool {
	return t < TagArray || t == TagUnichar
}

// IsContainer reports whether the tag carries element type parameters.
func (t TypeTag) IsContainer() bool {
	switch t {
	case TagArray, TagGList, TagGSList, TagGHash:
		return true
	}
	return false
}

// ParamCount is the number of element types a container tag carries.
func (t TypeTag) ParamCount() int {
	switch t {
	case TagArray, TagGList, TagGSList:
		return 1
	case TagGHash:
		return 2
	}
	return 0
}

// ArrayType is the in-memory representation of an array type signature.
type ArrayType uint8

const (
	ArrayC ArrayType = iota
	ArrayArray
	ArrayPtrArray
	ArrayByteArray
)

func (a ArrayType) String() string {
	switch a {
	case ArrayC:
		return "c"
	case ArrayArray:
		return "array"
	case ArrayPtrArray:
		return "ptr_array"
	case ArrayByteArray:
		return "byte_array"
	}
	return "unknown"
}

// Direction of an argument.
type Direction uint8

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionInOut
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "inout"
	}
	return "in"
}

// Transfer describes ownership transfer of an argument or return value.
type Transfer uint8

const (
	TransferNothing Transfer = iota
	TransferContainer
	TransferEverything
)

func (t Transfer) String() string {
	switch t {
	case TransferContainer:
		return "container"
	case TransferEverything:
		return "full"
	}
	return "none"
}
