package typelib

// SignalFlags mirrors GSignalFlags.
type SignalFlags uint32

const (
	SignalRunFirst SignalFlags = 1 << iota
	SignalRunLast
	SignalRunCleanup
	SignalNoRecurse
	SignalDetailed
	SignalAction
	SignalNoHooks
)

// FunctionFlags mirrors GIFunctionInfoFlags.
type FunctionFlags uint32

const (
	FunctionIsMethod FunctionFlags = 1 << iota
	FunctionIsConstructor
	FunctionIsGetter
	FunctionIsSetter
	FunctionWrapsVFunc
	FunctionThrows
)

// PropertyFlags mirrors the subset of GParamFlags recorded in typelibs.
type PropertyFlags uint32

const (
	PropertyReadable PropertyFlags = 1 << iota
	PropertyWritable
	PropertyConstruct
	PropertyConstructOnly
)

type flagName struct {
	bit  uint32
	name string
}

var signalFlagNames = []flagName{
	{uint32(SignalRunFirst), "run_first"},
	{uint32(SignalRunLast), "run_last"},
	{uint32(SignalRunCleanup), "run_cleanup"},
	{uint32(SignalNoRecurse), "no_recurse"},
	{uint32(SignalDetailed), "detailed"},
	{uint32(SignalAction), "action"},
	{uint32(SignalNoHooks), "no_hooks"},
}

var functionFlagNames = []flagName{
	{uint32(FunctionIsMethod), "is_method"},
	{uint32(FunctionIsConstructor), "is_constructor"},
	{uint32(FunctionIsGetter), "is_getter"},
	{uint32(FunctionIsSetter), "is_setter"},
	{uint32(FunctionWrapsVFunc), "wraps_vfunc"},
	{uint32(FunctionThrows), "throws"},
}

var propertyFlagNames = []flagName{
	{uint32(PropertyReadable), "readable"},
	{uint32(PropertyWritable), "writable"},
	{uint32(PropertyConstruct), "construct"},
	{uint32(PropertyConstructOnly), "construct_only"},
}

func setNames(v uint32, table []flagName) []string {
	var names []string
	for _, f := range table {
		if v&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

// Names lists every set flag, in declaration order.
func (f SignalFlags) Names() []string { return setNames(uint32(f), signalFlagNames) }

// Names lists every set flag, in declaration order.
func (f FunctionFlags) Names() []string { return setNames(uint32(f), functionFlagNames) }

// Names lists every set flag, in declaration order.
func (f PropertyFlags) Names() []string { return setNames(uint32(f), propertyFlagNames) }
