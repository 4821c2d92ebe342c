package typelib

// InfoType is the runtime kind tag of a metadata record.
type InfoType uint8

const (
	InfoTypeInvalid InfoType = iota
	InfoTypeFunction
	InfoTypeCallback
	InfoTypeStruct
	InfoTypeBoxed
	InfoTypeEnum
	InfoTypeFlags
	InfoTypeObject
	InfoTypeInterface
	InfoTypeConstant
	InfoTypeErrorDomain
	InfoTypeUnion
	InfoTypeValue
	InfoTypeSignal
	InfoTypeVFunc
	InfoTypeProperty
	InfoTypeField
	InfoTypeArg
	InfoTypeType
	InfoTypeUnresolved
)

var infoTypeNames = [...]string{
	InfoTypeInvalid:     "invalid",
	InfoTypeFunction:    "function",
	InfoTypeCallback:    "callback",
	InfoTypeStruct:      "struct",
	InfoTypeBoxed:       "boxed",
	InfoTypeEnum:        "enum",
	InfoTypeFlags:       "flags",
	InfoTypeObject:      "object",
	InfoTypeInterface:   "interface",
	InfoTypeConstant:    "constant",
	InfoTypeErrorDomain: "error_domain",
	InfoTypeUnion:       "union",
	InfoTypeValue:       "value",
	InfoTypeSignal:      "signal",
	InfoTypeVFunc:       "vfunc",
	InfoTypeProperty:    "property",
	InfoTypeField:       "field",
	InfoTypeArg:         "arg",
	InfoTypeType:        "type",
	InfoTypeUnresolved:  "unresolved",
}

func (t InfoType) String() string {
	if int(t) < len(infoTypeNames) {
		return infoTypeNames[t]
	}
	return "invalid"
}

// Capability predicates. Several kinds answer true to more than one of them
// (a function is also callable, flags are also enums), so callers must not
// treat them as mutually exclusive.

func (t InfoType) IsCallable() bool {
	switch t {
	case InfoTypeFunction, InfoTypeCallback, InfoTypeSignal, InfoTypeVFunc:
		return true
	}
	return false
}

func (t InfoType) IsRegisteredType() bool {
	switch t {
	case InfoTypeBoxed, InfoTypeEnum, InfoTypeFlags, InfoTypeInterface,
		InfoTypeObject, InfoTypeStruct, InfoTypeUnion:
		return true
	}
	return false
}

func (t InfoType) IsEnum() bool   { return t == InfoTypeEnum || t == InfoTypeFlags }
func (t InfoType) IsStruct() bool { return t == InfoTypeStruct || t == InfoTypeBoxed }
