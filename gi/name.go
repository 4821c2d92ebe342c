package gi

import (
	"strings"

	"github.com/wippyai/gireflect/typelib"
)

// qualifiedName joins the namespace and the names along the container chain,
// outermost first: "GObject.Object.notify".
func qualifiedName(bi *typelib.BaseInfo) string {
	var parts []string
	if name := bi.Name(); name != "" {
		parts = append(parts, name)
	}

	cur := bi.Container()
	for cur != nil {
		if name := cur.Name(); name != "" {
			parts = append(parts, name)
		}
		next := cur.Container()
		cur.Unref()
		cur = next
	}

	if ns := bi.Namespace(); ns != "" {
		parts = append(parts, ns)
	}

	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ".")
}
