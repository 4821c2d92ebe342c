package gi

import (
	"github.com/wippyai/gireflect/typelib"
)

// Getter produces one property value of bi. A nil result means absent.
type Getter func(s *State, bi *typelib.BaseInfo) any

// Rule is one row of the property table: when Match accepts a record, the
// properties in Props are answered by this rule.
type Rule struct {
	Match func(*typelib.BaseInfo) bool
	Props map[string]Getter
	Name  string
}

// Rules returns the property table in evaluation order. Predicates overlap
// (a function is also callable), so rules are tried top to bottom and the
// first rule that matches and knows the property answers it.
func Rules() []Rule { return rules }

func dispatch(s *State, bi *typelib.BaseInfo, prop string) any {
	for i := range rules {
		r := &rules[i]
		if !r.Match(bi) {
			continue
		}
		if get, ok := r.Props[prop]; ok {
			return get(s, bi)
		}
	}
	return nil
}

func always(*typelib.BaseInfo) bool { return true }

func notType(bi *typelib.BaseInfo) bool { return !bi.IsType() }

func predicate(p func(*typelib.BaseInfo) bool) Getter {
	return func(_ *State, bi *typelib.BaseInfo) any { return p(bi) }
}

func kindName(_ *State, bi *typelib.BaseInfo) any { return bi.Type().String() }

// wrapped turns an accessor returning a new reference into a proxy getter.
func wrapped(get func(*typelib.BaseInfo) *typelib.BaseInfo) Getter {
	return func(s *State, bi *typelib.BaseInfo) any {
		return absent(s.Wrap(get(bi)))
	}
}

// view builds a collection getter from a count and an item accessor.
func view(count func(*typelib.BaseInfo) int, item typelib.ItemGetter) Getter {
	return func(s *State, bi *typelib.BaseInfo) any {
		return absent(s.newInfos(bi, count(bi), item))
	}
}

// flagSet reports every set bit by name.
func flagSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

var rules = []Rule{
	{
		Name:  "kind",
		Match: always,
		Props: map[string]Getter{
			"kind":               kindName,
			"type":               kindName,
			"is_arg":             predicate((*typelib.BaseInfo).IsArg),
			"is_callable":        predicate((*typelib.BaseInfo).IsCallable),
			"is_function":        predicate((*typelib.BaseInfo).IsFunction),
			"is_signal":          predicate((*typelib.BaseInfo).IsSignal),
			"is_vfunc":           predicate((*typelib.BaseInfo).IsVFunc),
			"is_constant":        predicate((*typelib.BaseInfo).IsConstant),
			"is_error_domain":    predicate((*typelib.BaseInfo).IsErrorDomain),
			"is_field":           predicate((*typelib.BaseInfo).IsField),
			"is_property":        predicate((*typelib.BaseInfo).IsProperty),
			"is_registered_type": predicate((*typelib.BaseInfo).IsRegisteredType),
			"is_enum":            predicate((*typelib.BaseInfo).IsEnum),
			"is_interface":       predicate((*typelib.BaseInfo).IsInterface),
			"is_object":          predicate((*typelib.BaseInfo).IsObject),
			"is_struct":          predicate((*typelib.BaseInfo).IsStruct),
			"is_union":           predicate((*typelib.BaseInfo).IsUnion),
			"is_type":            predicate((*typelib.BaseInfo).IsType),
			"is_value":           predicate((*typelib.BaseInfo).IsValue),
		},
	},
	{
		// type signatures are anonymous
		Name:  "named",
		Match: notType,
		Props: map[string]Getter{
			"name":      func(_ *State, bi *typelib.BaseInfo) any { return bi.Name() },
			"namespace": func(_ *State, bi *typelib.BaseInfo) any { return bi.Namespace() },
		},
	},
	{
		Name:  "base",
		Match: always,
		Props: map[string]Getter{
			"fullname":   func(_ *State, bi *typelib.BaseInfo) any { return qualifiedName(bi) },
			"deprecated": func(_ *State, bi *typelib.BaseInfo) any { return bi.IsDeprecated() },
			"container":  wrapped((*typelib.BaseInfo).Container),
			"typeinfo":   wrapped(typeInfo),
		},
	},
	{
		Name:  "registered_type",
		Match: (*typelib.BaseInfo).IsRegisteredType,
		Props: map[string]Getter{
			"gtype":     func(_ *State, bi *typelib.BaseInfo) any { return bi.RegisteredGType() },
			"type_name": func(_ *State, bi *typelib.BaseInfo) any { return bi.RegisteredTypeName() },
		},
	},
	{
		Name:  "struct",
		Match: (*typelib.BaseInfo).IsStruct,
		Props: map[string]Getter{
			"is_gtype_struct": func(_ *State, bi *typelib.BaseInfo) any { return bi.StructIsGTypeStruct() },
			"fields":          view((*typelib.BaseInfo).StructNFields, (*typelib.BaseInfo).StructField),
			"methods":         view((*typelib.BaseInfo).StructNMethods, (*typelib.BaseInfo).StructMethod),
		},
	},
	{
		Name:  "union",
		Match: (*typelib.BaseInfo).IsUnion,
		Props: map[string]Getter{
			"fields":  view((*typelib.BaseInfo).UnionNFields, (*typelib.BaseInfo).UnionField),
			"methods": view((*typelib.BaseInfo).UnionNMethods, (*typelib.BaseInfo).UnionMethod),
		},
	},
	{
		Name:  "interface",
		Match: (*typelib.BaseInfo).IsInterface,
		Props: map[string]Getter{
			"prerequisites": view((*typelib.BaseInfo).InterfaceNPrerequisites, (*typelib.BaseInfo).InterfacePrerequisite),
			"methods":       view((*typelib.BaseInfo).InterfaceNMethods, (*typelib.BaseInfo).InterfaceMethod),
			"constants":     view((*typelib.BaseInfo).InterfaceNConstants, (*typelib.BaseInfo).InterfaceConstant),
			"properties":    view((*typelib.BaseInfo).InterfaceNProperties, (*typelib.BaseInfo).InterfaceProperty),
			"signals":       view((*typelib.BaseInfo).InterfaceNSignals, (*typelib.BaseInfo).InterfaceSignal),
			"vfuncs":        view((*typelib.BaseInfo).InterfaceNVFuncs, (*typelib.BaseInfo).InterfaceVFunc),
		},
	},
	{
		Name:  "object",
		Match: (*typelib.BaseInfo).IsObject,
		Props: map[string]Getter{
			"parent":     wrapped((*typelib.BaseInfo).ObjectParent),
			"interfaces": view((*typelib.BaseInfo).ObjectNInterfaces, (*typelib.BaseInfo).ObjectInterface),
			"fields":     view((*typelib.BaseInfo).ObjectNFields, (*typelib.BaseInfo).ObjectField),
			"methods":    view((*typelib.BaseInfo).ObjectNMethods, (*typelib.BaseInfo).ObjectMethod),
			"constants":  view((*typelib.BaseInfo).ObjectNConstants, (*typelib.BaseInfo).ObjectConstant),
			"properties": view((*typelib.BaseInfo).ObjectNProperties, (*typelib.BaseInfo).ObjectProperty),
			"signals":    view((*typelib.BaseInfo).ObjectNSignals, (*typelib.BaseInfo).ObjectSignal),
			"vfuncs":     view((*typelib.BaseInfo).ObjectNVFuncs, (*typelib.BaseInfo).ObjectVFunc),
		},
	},
	{
		Name:  "callable",
		Match: (*typelib.BaseInfo).IsCallable,
		Props: map[string]Getter{
			"return_type": wrapped((*typelib.BaseInfo).CallableReturnType),
			"args":        view((*typelib.BaseInfo).CallableNArgs, (*typelib.BaseInfo).CallableArg),
			"can_throw":   func(_ *State, bi *typelib.BaseInfo) any { return bi.CallableCanThrow() },
		},
	},
	{
		Name:  "signal",
		Match: (*typelib.BaseInfo).IsSignal,
		Props: map[string]Getter{
			"flags": func(_ *State, bi *typelib.BaseInfo) any { return flagSet(bi.SignalFlags().Names()) },
		},
	},
	{
		Name:  "function",
		Match: (*typelib.BaseInfo).IsFunction,
		Props: map[string]Getter{
			"flags":  func(_ *State, bi *typelib.BaseInfo) any { return flagSet(bi.FunctionFlags().Names()) },
			"symbol": func(_ *State, bi *typelib.BaseInfo) any { return bi.FunctionSymbol() },
		},
	},
	{
		Name:  "enum",
		Match: (*typelib.BaseInfo).IsEnum,
		Props: map[string]Getter{
			"storage": func(_ *State, bi *typelib.BaseInfo) any { return bi.EnumStorageType().String() },
			"values":  view((*typelib.BaseInfo).EnumNValues, (*typelib.BaseInfo).EnumValue),
			"methods": view((*typelib.BaseInfo).EnumNMethods, (*typelib.BaseInfo).EnumMethod),
		},
	},
	{
		Name:  "value",
		Match: (*typelib.BaseInfo).IsValue,
		Props: map[string]Getter{
			"value": func(_ *State, bi *typelib.BaseInfo) any { return bi.ValueValue() },
		},
	},
	{
		Name:  "type",
		Match: (*typelib.BaseInfo).IsType,
		Props: map[string]Getter{
			"tag":        func(_ *State, bi *typelib.BaseInfo) any { return bi.TypeTag().String() },
			"is_basic":   func(_ *State, bi *typelib.BaseInfo) any { return bi.TypeTag().IsBasic() },
			"is_pointer": func(_ *State, bi *typelib.BaseInfo) any { return bi.TypeIsPointer() },
			"params":     typeParams,
			"interface": func(s *State, bi *typelib.BaseInfo) any {
				if bi.TypeTag() != typelib.TagInterface {
					return nil
				}
				return absent(s.Wrap(bi.TypeInterface()))
			},
			"array_type": func(_ *State, bi *typelib.BaseInfo) any {
				if bi.TypeTag() != typelib.TagArray {
					return nil
				}
				return bi.TypeArrayType().String()
			},
		},
	},
	{
		Name:  "arg",
		Match: (*typelib.BaseInfo).IsArg,
		Props: map[string]Getter{
			"direction": func(_ *State, bi *typelib.BaseInfo) any { return bi.ArgDirection().String() },
			"transfer":  func(_ *State, bi *typelib.BaseInfo) any { return bi.ArgTransfer().String() },
			"nullable":  func(_ *State, bi *typelib.BaseInfo) any { return bi.ArgMayBeNull() },
			"optional":  func(_ *State, bi *typelib.BaseInfo) any { return bi.ArgIsOptional() },
		},
	},
	{
		Name:  "property",
		Match: (*typelib.BaseInfo).IsProperty,
		Props: map[string]Getter{
			"flags": func(_ *State, bi *typelib.BaseInfo) any { return flagSet(bi.PropertyFlags().Names()) },
		},
	},
	{
		Name:  "constant",
		Match: (*typelib.BaseInfo).IsConstant,
		Props: map[string]Getter{
			"value": func(_ *State, bi *typelib.BaseInfo) any { return bi.ConstantValue() },
		},
	},
}

// typeInfo returns the type signature of an arg, constant, property or
// field, nil for anything else.
func typeInfo(bi *typelib.BaseInfo) *typelib.BaseInfo {
	switch {
	case bi.IsArg():
		return bi.ArgType()
	case bi.IsConstant():
		return bi.ConstantType()
	case bi.IsProperty():
		return bi.PropertyType()
	case bi.IsField():
		return bi.FieldType()
	}
	return nil
}

// typeParams lists the element types of array, list and hash signatures:
// one entry, or key and value for hashes.
func typeParams(s *State, bi *typelib.BaseInfo) any {
	n := bi.TypeTag().ParamCount()
	if n == 0 {
		return nil
	}
	params := make([]*Info, n)
	for i := range params {
		params[i] = s.Wrap(bi.TypeParamType(i))
	}
	return params
}
