package typelib

import (
	"strconv"
	"strings"
)

// Registered types

// RegisteredTypeName is the runtime type name, or "" when the type has none.
func (bi *BaseInfo) RegisteredTypeName() string {
	if !bi.IsRegisteredType() {
		return ""
	}
	return bi.n.typeName
}

// RegisteredGType returns the type's runtime id, GTypeNone when the type is
// not registered with the type system.
func (bi *BaseInfo) RegisteredGType() GType {
	if !bi.IsRegisteredType() {
		return GTypeInvalid
	}
	if bi.n.typeName == "" {
		return GTypeNone
	}
	return bi.repo.gtypes.Register(bi.n.typeName)
}

// Structs (and boxed)

func (bi *BaseInfo) structFields() []*node  { return listIf(bi.IsStruct(), bi.n.fields) }
func (bi *BaseInfo) structMethods() []*node { return listIf(bi.IsStruct(), bi.n.methods) }

func (bi *BaseInfo) StructNFields() int           { return len(bi.structFields()) }
func (bi *BaseInfo) StructField(i int) *BaseInfo  { return bi.child(bi.structFields(), i) }
func (bi *BaseInfo) StructNMethods() int          { return len(bi.structMethods()) }
func (bi *BaseInfo) StructMethod(i int) *BaseInfo { return bi.child(bi.structMethods(), i) }
func (bi *BaseInfo) StructIsGTypeStruct() bool    { return bi.IsStruct() && bi.n.gtypeStruct }
func (bi *BaseInfo) StructFindMethod(name string) *BaseInfo {
	return bi.repo.newInfo(find(bi.structMethods(), name))
}

// Unions

func (bi *BaseInfo) unionFields() []*node  { return listIf(bi.IsUnion(), bi.n.fields) }
func (bi *BaseInfo) unionMethods() []*node { return listIf(bi.IsUnion(), bi.n.methods) }

func (bi *BaseInfo) UnionNFields() int           { return len(bi.unionFields()) }
func (bi *BaseInfo) UnionField(i int) *BaseInfo  { return bi.child(bi.unionFields(), i) }
func (bi *BaseInfo) UnionNMethods() int          { return len(bi.unionMethods()) }
func (bi *BaseInfo) UnionMethod(i int) *BaseInfo { return bi.child(bi.unionMethods(), i) }

// Interfaces

func (bi *BaseInfo) ifaceOnly() bool { return bi.IsInterface() }

func (bi *BaseInfo) InterfaceNPrerequisites() int {
	return len(listIf(bi.ifaceOnly(), bi.n.prereqs))
}

func (bi *BaseInfo) InterfacePrerequisite(i int) *BaseInfo {
	return bi.ref(listIf(bi.ifaceOnly(), bi.n.prereqs), i)
}

func (bi *BaseInfo) InterfaceNMethods() int { return len(listIf(bi.ifaceOnly(), bi.n.methods)) }
func (bi *BaseInfo) InterfaceMethod(i int) *BaseInfo {
	return bi.child(listIf(bi.ifaceOnly(), bi.n.methods), i)
}
func (bi *BaseInfo) InterfaceNConstants() int { return len(listIf(bi.ifaceOnly(), bi.n.constants)) }
func (bi *BaseInfo) InterfaceConstant(i int) *BaseInfo {
	return bi.child(listIf(bi.ifaceOnly(), bi.n.constants), i)
}
func (bi *BaseInfo) InterfaceNProperties() int { return len(listIf(bi.ifaceOnly(), bi.n.properties)) }
func (bi *BaseInfo) InterfaceProperty(i int) *BaseInfo {
	return bi.child(listIf(bi.ifaceOnly(), bi.n.properties), i)
}
func (bi *BaseInfo) InterfaceNSignals() int { return len(listIf(bi.ifaceOnly(), bi.n.signals)) }
func (bi *BaseInfo) InterfaceSignal(i int) *BaseInfo {
	return bi.child(listIf(bi.ifaceOnly(), bi.n.signals), i)
}
func (bi *BaseInfo) InterfaceNVFuncs() int { return len(listIf(bi.ifaceOnly(), bi.n.vfuncs)) }
func (bi *BaseInfo) InterfaceVFunc(i int) *BaseInfo {
	return bi.child(listIf(bi.ifaceOnly(), bi.n.vfuncs), i)
}

// Objects

func (bi *BaseInfo) objOnly() bool { return bi.IsObject() }

// ObjectParent returns the parent class, or nil for root classes.
func (bi *BaseInfo) ObjectParent() *BaseInfo {
	if !bi.objOnly() || bi.n.parent == nil {
		return nil
	}
	return bi.repo.newInfo(bi.repo.resolve(bi.n.parent))
}

func (bi *BaseInfo) ObjectNInterfaces() int { return len(listIf(bi.objOnly(), bi.n.ifaces)) }
func (bi *BaseInfo) ObjectInterface(i int) *BaseInfo {
	return bi.ref(listIf(bi.objOnly(), bi.n.ifaces), i)
}
func (bi *BaseInfo) ObjectNFields() int { return len(listIf(bi.objOnly(), bi.n.fields)) }
func (bi *BaseInfo) ObjectField(i int) *BaseInfo {
	return bi.child(listIf(bi.objOnly(), bi.n.fields), i)
}
func (bi *BaseInfo) ObjectNMethods() int { return len(listIf(bi.objOnly(), bi.n.methods)) }
func (bi *BaseInfo) ObjectMethod(i int) *BaseInfo {
	return bi.child(listIf(bi.objOnly(), bi.n.methods), i)
}
func (bi *BaseInfo) ObjectNConstants() int { return len(listIf(bi.objOnly(), bi.n.constants)) }
func (bi *BaseInfo) ObjectConstant(i int) *BaseInfo {
	return bi.child(listIf(bi.objOnly(), bi.n.constants), i)
}
func (bi *BaseInfo) ObjectNProperties() int { return len(listIf(bi.objOnly(), bi.n.properties)) }
func (bi *BaseInfo) ObjectProperty(i int) *BaseInfo {
	return bi.child(listIf(bi.objOnly(), bi.n.properties), i)
}
func (bi *BaseInfo) ObjectNSignals() int { return len(listIf(bi.objOnly(), bi.n.signals)) }
func (bi *BaseInfo) ObjectSignal(i int) *BaseInfo {
	return bi.child(listIf(bi.objOnly(), bi.n.signals), i)
}
func (bi *BaseInfo) ObjectNVFuncs() int { return len(listIf(bi.objOnly(), bi.n.vfuncs)) }
func (bi *BaseInfo) ObjectVFunc(i int) *BaseInfo {
	return bi.child(listIf(bi.objOnly(), bi.n.vfuncs), i)
}

// ObjectFindMethod looks a method up by name on this class only.
func (bi *BaseInfo) ObjectFindMethod(name string) *BaseInfo {
	return bi.repo.newInfo(find(listIf(bi.objOnly(), bi.n.methods), name))
}

// Callables

// CallableReturnType returns the return type signature, or nil for
// non-callables.
func (bi *BaseInfo) CallableReturnType() *BaseInfo {
	if !bi.IsCallable() {
		return nil
	}
	return bi.repo.newInfo(bi.n.ret)
}

func (bi *BaseInfo) CallableNArgs() int { return len(listIf(bi.IsCallable(), bi.n.args)) }
func (bi *BaseInfo) CallableArg(i int) *BaseInfo {
	return bi.child(listIf(bi.IsCallable(), bi.n.args), i)
}

// CallableCanThrow reports whether the callable takes a trailing GError.
func (bi *BaseInfo) CallableCanThrow() bool {
	return bi.IsCallable() && bi.n.throws
}

func (bi *BaseInfo) SignalFlags() SignalFlags {
	if !bi.IsSignal() {
		return 0
	}
	return SignalFlags(bi.n.flags)
}

func (bi *BaseInfo) FunctionFlags() FunctionFlags {
	if !bi.IsFunction() {
		return 0
	}
	return FunctionFlags(bi.n.flags)
}

// FunctionSymbol is the C identifier, or "" when unknown.
func (bi *BaseInfo) FunctionSymbol() string {
	if !bi.IsFunction() {
		return ""
	}
	return bi.n.symbol
}

// Enums

func (bi *BaseInfo) EnumStorageType() TypeTag {
	if !bi.IsEnum() {
		return TagVoid
	}
	return bi.n.storage
}

func (bi *BaseInfo) EnumNValues() int { return len(listIf(bi.IsEnum(), bi.n.values)) }
func (bi *BaseInfo) EnumValue(i int) *BaseInfo {
	return bi.child(listIf(bi.IsEnum(), bi.n.values), i)
}

func (bi *BaseInfo) EnumNMethods() int { return len(listIf(bi.IsEnum(), bi.n.methods)) }
func (bi *BaseInfo) EnumMethod(i int) *BaseInfo {
	return bi.child(listIf(bi.IsEnum(), bi.n.methods), i)
}

func (bi *BaseInfo) ValueValue() int64 {
	if !bi.IsValue() {
		return 0
	}
	return bi.n.value
}

// Typed members

func (bi *BaseInfo) typed(kind InfoType) *BaseInfo {
	if bi.n.kind != kind {
		return nil
	}
	return bi.repo.newInfo(bi.n.typ)
}

func (bi *BaseInfo) ArgType() *BaseInfo      { return bi.typed(InfoTypeArg) }
func (bi *BaseInfo) ConstantType() *BaseInfo { return bi.typed(InfoTypeConstant) }
func (bi *BaseInfo) PropertyType() *BaseInfo { return bi.typed(InfoTypeProperty) }
func (bi *BaseInfo) FieldType() *BaseInfo    { return bi.typed(InfoTypeField) }

func (bi *BaseInfo) ArgDirection() Direction {
	if !bi.IsArg() {
		return DirectionIn
	}
	return bi.n.direction
}

func (bi *BaseInfo) ArgTransfer() Transfer {
	if !bi.IsArg() {
		return TransferNothing
	}
	return bi.n.transfer
}

func (bi *BaseInfo) ArgMayBeNull() bool  { return bi.IsArg() && bi.n.nullable }
func (bi *BaseInfo) ArgIsOptional() bool { return bi.IsArg() && bi.n.optional }

func (bi *BaseInfo) PropertyFlags() PropertyFlags {
	if !bi.IsProperty() {
		return 0
	}
	return PropertyFlags(bi.n.flags)
}

// ConstantValue decodes the constant's literal according to its type tag:
// bool, int64, uint64, float64 or string. Unparseable literals yield nil.
func (bi *BaseInfo) ConstantValue() any {
	if !bi.IsConstant() || bi.n.typ == nil {
		return nil
	}
	return decodeConstant(bi.n.typ.tag, bi.n.constant)
}

func decodeConstant(tag TypeTag, raw string) any {
	switch tag {
	case TagBoolean:
		switch strings.ToLower(raw) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	case TagInt8, TagInt16, TagInt32, TagInt64:
		if v, err := strconv.ParseInt(raw, 0, 64); err == nil {
			return v
		}
	case TagUint8, TagUint16, TagUint32, TagUint64, TagUnichar, TagGType:
		if v, err := strconv.ParseUint(raw, 0, 64); err == nil {
			return v
		}
	case TagFloat, TagDouble:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	case TagUTF8, TagFilename:
		return raw
	}
	return nil
}

// Type signatures

func (bi *BaseInfo) TypeTag() TypeTag {
	if !bi.IsType() {
		return TagVoid
	}
	return bi.n.tag
}

func (bi *BaseInfo) TypeIsPointer() bool { return bi.IsType() && bi.n.pointer }

// TypeParamType returns the n-th element type of a container signature.
func (bi *BaseInfo) TypeParamType(n int) *BaseInfo {
	if !bi.IsType() || !bi.n.tag.IsContainer() {
		return nil
	}
	return bi.child(bi.n.params, n)
}

// TypeInterface resolves the target of an interface-tagged signature.
func (bi *BaseInfo) TypeInterface() *BaseInfo {
	if !bi.IsType() || bi.n.tag != TagInterface || bi.n.iface == nil {
		return nil
	}
	return bi.repo.newInfo(bi.repo.resolve(bi.n.iface))
}

func (bi *BaseInfo) TypeArrayType() ArrayType {
	if !bi.IsType() || bi.n.tag != TagArray {
		return ArrayC
	}
	return bi.n.arrayType
}
