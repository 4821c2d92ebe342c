package gi

import (
	"fmt"
	"strings"
)

// Namespace is a loaded namespace, identified by name only. The repository
// keeps the loaded state; a Namespace owns nothing.
type Namespace struct {
	st   *State
	name string
}

// Name is the namespace name.
func (n *Namespace) Name() string { return n.name }

// Len is the number of top-level entries plus one. The last slot is
// reserved and always reads as nil.
func (n *Namespace) Len() int {
	return n.st.repo.NInfos(n.name) + 1
}

// At returns the i-th top-level entry, counting from 1, or nil when i is
// outside the namespace.
func (n *Namespace) At(i int) any {
	if i < 1 || i > n.st.repo.NInfos(n.name) {
		return nil
	}
	return absent(n.st.Wrap(n.st.repo.Info(n.name, i-1)))
}

// Get reads a namespace property. "dependencies" maps each direct
// dependency to its version (nil when there are none) and "version" is the
// loaded version. Any other name is looked up as a top-level symbol.
func (n *Namespace) Get(prop string) any {
	switch prop {
	case "dependencies":
		deps := n.st.repo.Dependencies(n.name)
		if deps == nil {
			return nil
		}
		out := make(map[string]string, len(deps))
		for _, d := range deps {
			name, version, _ := strings.Cut(d, "-")
			out[name] = version
		}
		return out
	case "version":
		return n.st.repo.Version(n.name)
	}
	return absent(n.st.Wrap(n.st.repo.FindByName(n.name, prop)))
}

// Index dispatches integer keys to At and string keys to Get.
func (n *Namespace) Index(key any) any {
	if i, ok := toIndex(key); ok {
		return n.At(i)
	}
	if prop, ok := key.(string); ok {
		return n.Get(prop)
	}
	return nil
}

func (n *Namespace) String() string {
	return fmt.Sprintf("gi.Namespace(%s)", n.name)
}
