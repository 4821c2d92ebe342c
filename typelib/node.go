package typelib

// node is one immutable metadata record. A single struct serves every kind;
// fields not meaningful for a kind stay zero.
type node struct {
	container *node
	iface     *typeRef
	parent    *typeRef
	typ       *node
	ret       *node

	name      string
	namespace string
	typeName  string
	constant  string
	symbol    string

	prereqs    []*typeRef
	ifaces     []*typeRef
	fields     []*node
	methods    []*node
	constants  []*node
	properties []*node
	signals    []*node
	vfuncs     []*node
	values     []*node
	args       []*node
	params     []*node

	value int64
	flags uint32

	kind        InfoType
	tag         TypeTag
	storage     TypeTag
	arrayType   ArrayType
	direction   Direction
	transfer    Transfer
	deprecated  bool
	pointer     bool
	nullable    bool
	optional    bool
	throws      bool
	gtypeStruct bool
}

// typeRef points at a registered type by qualified name. inline is set for
// anonymous targets embedded in their user, such as a callback-typed field.
type typeRef struct {
	inline    *node
	namespace string
	name      string
}

func (r *typeRef) String() string {
	if r.inline != nil {
		return r.inline.name
	}
	return r.namespace + "." + r.name
}

func newNode(kind InfoType, namespace, name string, container *node) *node {
	return &node{kind: kind, namespace: namespace, name: name, container: container}
}

// find returns the child named name, or nil.
func find(children []*node, name string) *node {
	for _, c := range children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func invalidNode(namespace, name string) *node {
	return &node{kind: InfoTypeInvalid, namespace: namespace, name: name}
}

func unresolvedNode(ref *typeRef) *node {
	return &node{kind: InfoTypeUnresolved, namespace: ref.namespace, name: ref.name}
}

// basicType builds a type signature node for a non-container tag.
func basicType(tag TypeTag, container *node) *node {
	n := newNode(InfoTypeType, "", "", container)
	n.tag = tag
	n.pointer = tag == TagUTF8 || tag == TagFilename
	if container != nil {
		n.namespace = container.namespace
	}
	return n
}
