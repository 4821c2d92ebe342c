package typelib

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/gireflect/errors"
)

// LoadFlags controls how Require materializes a namespace.
type LoadFlags uint8

const (
	// LoadFlagNone builds every record at load time and fails the load if any
	// record is malformed.
	LoadFlagNone LoadFlags = 0
	// LoadFlagLazy builds records on first access.
	LoadFlagLazy LoadFlags = 1 << 0
)

// RepositoryError is the numeric code of a load failure.
type RepositoryError int

const (
	ErrorTypelibNotFound RepositoryError = iota
	ErrorNamespaceMismatch
	ErrorNamespaceVersionConflict
	ErrorLibraryNotFound
	ErrorInvalidTypelib
)

func (c RepositoryError) String() string {
	switch c {
	case ErrorTypelibNotFound:
		return "typelib_not_found"
	case ErrorNamespaceMismatch:
		return "namespace_mismatch"
	case ErrorNamespaceVersionConflict:
		return "namespace_version_conflict"
	case ErrorLibraryNotFound:
		return "library_not_found"
	case ErrorInvalidTypelib:
		return "invalid_typelib"
	}
	return "unknown"
}

// LoadError is returned by Require and RequirePrivate.
type LoadError struct {
	Err     error
	Message string
	Code    RepositoryError
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Err }

var defaultSearchPath = []string{
	"/usr/lib/girepository-1.0",
	"/usr/share/gir-1.0",
}

// Option configures a Repository.
type Option func(*Repository)

// WithSearchPath puts dirs ahead of $GI_TYPELIB_PATH and the system defaults.
func WithSearchPath(dirs ...string) Option {
	return func(r *Repository) {
		r.extraPath = append(r.extraPath, dirs...)
	}
}

// WithoutDefaultPath ignores $GI_TYPELIB_PATH and the system directories.
func WithoutDefaultPath() Option {
	return func(r *Repository) {
		r.noDefaults = true
	}
}

// WithLogger overrides the package logger for this repository.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// Repository is a set of loaded namespaces plus the type registry they share.
// Independent repositories do not see each other's namespaces.
type Repository struct {
	gtypes     *GTypeRegistry
	log        *zap.Logger
	namespaces map[string]*namespace
	order      []string
	searchPath []string
	extraPath  []string
	live       atomic.Int64
	noDefaults bool
	mu         sync.RWMutex
}

// NewRepository creates an empty repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		gtypes:     NewGTypeRegistry(),
		log:        Logger(),
		namespaces: make(map[string]*namespace),
	}
	for _, opt := range opts {
		opt(r)
	}

	path := append([]string(nil), r.extraPath...)
	if !r.noDefaults {
		if env := os.Getenv("GI_TYPELIB_PATH"); env != "" {
			path = append(path, filepath.SplitList(env)...)
		}
		path = append(path, defaultSearchPath...)
	}
	r.searchPath = path
	return r
}

// Typelib describes a loaded namespace.
type Typelib struct {
	ns *namespace
}

func (t *Typelib) Namespace() string { return t.ns.name }
func (t *Typelib) Version() string   { return t.ns.version }
func (t *Typelib) Path() string      { return t.ns.path }

// Require loads namespace (and its dependencies) from the search path. An
// empty version selects the highest version available. Requiring a loaded
// namespace is a no-op unless the versions conflict.
func (r *Repository) Require(name, version string, flags LoadFlags) (*Typelib, error) {
	return r.require(name, version, "", flags)
}

// RequirePrivate is Require restricted to dir. Dependencies are looked up in
// dir first, then on the regular search path.
func (r *Repository) RequirePrivate(dir, name, version string, flags LoadFlags) (*Typelib, error) {
	return r.require(name, version, dir, flags)
}

func (r *Repository) require(name, version, privateDir string, flags LoadFlags) (*Typelib, error) {
	r.mu.Lock()
	dirs := r.searchPath
	if privateDir != "" {
		dirs = []string{privateDir}
	}
	ns, fresh, err := r.requireLocked(name, version, dirs, privateDir)
	r.mu.Unlock()
	if err != nil {
		r.log.Debug("namespace load failed",
			zap.String("namespace", name),
			zap.String("version", version),
			zap.Error(err))
		return nil, err
	}

	if flags&LoadFlagLazy == 0 {
		for _, f := range fresh {
			if err := f.materializeAll(r.log); err != nil {
				r.mu.Lock()
				r.unregisterLocked(fresh)
				r.mu.Unlock()
				return nil, &LoadError{
					Code:    ErrorInvalidTypelib,
					Message: fmt.Sprintf("Failed to load typelib file '%s' for namespace '%s': %v", f.path, f.name, err),
					Err:     err,
				}
			}
		}
	}
	return &Typelib{ns: ns}, nil
}

// requireLocked returns the namespace plus every namespace this call newly
// registered. On error nothing stays registered.
func (r *Repository) requireLocked(name, version string, dirs []string, privateDir string) (*namespace, []*namespace, error) {
	if ns, ok := r.namespaces[name]; ok {
		if version != "" && ns.version != version {
			return nil, nil, &LoadError{
				Code:    ErrorNamespaceVersionConflict,
				Message: fmt.Sprintf("Requiring namespace '%s' version '%s', but '%s' is already loaded", name, version, ns.version),
			}
		}
		return ns, nil, nil
	}

	path, ok := locate(dirs, name, version)
	if !ok {
		msg := fmt.Sprintf("Typelib file for namespace '%s' (any version) not found", name)
		if version != "" {
			msg = fmt.Sprintf("Typelib file for namespace '%s', version '%s' not found", name, version)
		}
		return nil, nil, &LoadError{Code: ErrorTypelibNotFound, Message: msg}
	}

	ns, err := parseFile(path, r.log)
	if err != nil {
		return nil, nil, &LoadError{
			Code:    ErrorInvalidTypelib,
			Message: fmt.Sprintf("Failed to load typelib file '%s' for namespace '%s': %v", path, name, err),
			Err:     err,
		}
	}
	if ns.name != name {
		return nil, nil, &LoadError{
			Code:    ErrorNamespaceMismatch,
			Message: fmt.Sprintf("Typelib file %s for namespace '%s' contains namespace '%s' which doesn't match the file name", path, name, ns.name),
		}
	}
	if version != "" && ns.version != version {
		return nil, nil, &LoadError{
			Code:    ErrorNamespaceVersionConflict,
			Message: fmt.Sprintf("Typelib file %s for namespace '%s' contains version '%s' which doesn't match the expected version '%s'", path, name, ns.version, version),
		}
	}

	r.namespaces[name] = ns
	r.order = append(r.order, name)
	for _, e := range ns.entries {
		if e.typeName != "" {
			r.gtypes.Register(e.typeName)
		}
	}
	r.log.Debug("namespace loaded",
		zap.String("namespace", ns.name),
		zap.String("version", ns.version),
		zap.String("path", path),
		zap.Int("entries", len(ns.entries)))

	fresh := []*namespace{ns}
	for _, inc := range ns.includes {
		depName, depVersion, _ := strings.Cut(inc, "-")
		depDirs := r.searchPath
		if privateDir != "" {
			depDirs = append([]string{privateDir}, r.searchPath...)
		}
		dep, depFresh, err := r.requireLocked(depName, depVersion, depDirs, privateDir)
		if err != nil {
			r.unregisterLocked(fresh)
			return nil, nil, err
		}
		ns.deps = append(ns.deps, dep)
		fresh = append(fresh, depFresh...)
	}
	return ns, fresh, nil
}

func (r *Repository) unregisterLocked(nss []*namespace) {
	for _, ns := range nss {
		delete(r.namespaces, ns.name)
		for i, name := range r.order {
			if name == ns.name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// locate finds the typelib file for name. Without a version the highest
// version across all directories wins; ties go to the earlier directory.
func locate(dirs []string, name, version string) (string, bool) {
	if version != "" {
		for _, dir := range dirs {
			for _, f := range formats {
				p := filepath.Join(dir, name+"-"+version+f.ext)
				if fileExists(p) {
					return p, true
				}
			}
		}
		return "", false
	}

	var best, bestVersion string
	for _, dir := range dirs {
		for _, f := range formats {
			matches, _ := filepath.Glob(filepath.Join(dir, name+"-*"+f.ext))
			for _, m := range matches {
				base := strings.TrimSuffix(filepath.Base(m), f.ext)
				ns, ver, ok := strings.Cut(base, "-")
				if !ok || ns != name {
					continue
				}
				if best == "" || compareVersionStrings(ver, bestVersion) > 0 {
					best, bestVersion = m, ver
				}
			}
		}
	}
	return best, best != ""
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func (r *Repository) lookup(name string) *namespace {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namespaces[name]
}

// IsRegistered reports whether name is loaded; a non-empty version must also
// match.
func (r *Repository) IsRegistered(name, version string) bool {
	ns := r.lookup(name)
	return ns != nil && (version == "" || ns.version == version)
}

// NInfos is the number of top-level entries of a loaded namespace.
func (r *Repository) NInfos(name string) int {
	if ns := r.lookup(name); ns != nil {
		return len(ns.entries)
	}
	return 0
}

// Info returns the i-th top-level entry in name order, or nil.
func (r *Repository) Info(name string, i int) *BaseInfo {
	ns := r.lookup(name)
	if ns == nil || i < 0 || i >= len(ns.entries) {
		return nil
	}
	return r.newInfo(ns.entries[i].materialize(r.log, ns.name))
}

// FindByName returns the top-level entry called symbol, or nil.
func (r *Repository) FindByName(name, symbol string) *BaseInfo {
	ns := r.lookup(name)
	if ns == nil {
		return nil
	}
	e, ok := ns.byName[symbol]
	if !ok {
		return nil
	}
	return r.newInfo(e.materialize(r.log, ns.name))
}

// FindByGType returns the registered type with runtime id g, searching
// namespaces in load order.
func (r *Repository) FindByGType(g GType) *BaseInfo {
	typeName := r.gtypes.Name(g)
	if typeName == "" {
		return nil
	}
	r.mu.RLock()
	var found *entry
	var owner string
	for _, name := range r.order {
		ns := r.namespaces[name]
		if e, ok := ns.byTypeName[typeName]; ok {
			found, owner = e, ns.name
			break
		}
	}
	r.mu.RUnlock()
	if found == nil {
		return nil
	}
	return r.newInfo(found.materialize(r.log, owner))
}

// Dependencies lists the direct dependencies of name as "Name-Version"
// strings, or nil when there are none.
func (r *Repository) Dependencies(name string) []string {
	ns := r.lookup(name)
	if ns == nil || len(ns.includes) == 0 {
		return nil
	}
	return append([]string(nil), ns.includes...)
}

// Version returns the loaded version of name, or "".
func (r *Repository) Version(name string) string {
	if ns := r.lookup(name); ns != nil {
		return ns.version
	}
	return ""
}

// TypelibPath returns the file name was loaded from, or "".
func (r *Repository) TypelibPath(name string) string {
	if ns := r.lookup(name); ns != nil {
		return ns.path
	}
	return ""
}

// LoadedNamespaces lists loaded namespaces in load order.
func (r *Repository) LoadedNamespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Repository) SearchPath() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.searchPath...)
}

// PrependSearchPath puts dir in front of the search path.
func (r *Repository) PrependSearchPath(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchPath = append([]string{dir}, r.searchPath...)
}

func (r *Repository) GTypes() *GTypeRegistry { return r.gtypes }

// LiveInfos is the number of handles acquired and not yet fully released.
func (r *Repository) LiveInfos() int64 { return r.live.Load() }

// resolve turns a by-name reference into a record. Targets in namespaces that
// are not loaded, or missing from them, come back unresolved.
func (r *Repository) resolve(ref *typeRef) *node {
	if ref.inline != nil {
		return ref.inline
	}
	ns := r.lookup(ref.namespace)
	if ns == nil {
		return unresolvedNode(ref)
	}
	e, ok := ns.byName[ref.name]
	if !ok {
		return unresolvedNode(ref)
	}
	return e.materialize(r.log, ns.name)
}

// namespace is one loaded typelib.
type namespace struct {
	byName     map[string]*entry
	byTypeName map[string]*entry
	aliases    map[string]*girTyped
	name       string
	version    string
	path       string
	includes   []string
	deps       []*namespace
	entries    []*entry
}

func newNamespace(name, version, path string) *namespace {
	return &namespace{
		name:       name,
		version:    version,
		path:       path,
		byName:     make(map[string]*entry),
		byTypeName: make(map[string]*entry),
	}
}

// add registers e unless the name is taken. Reports whether e was added.
func (ns *namespace) add(e *entry) bool {
	if _, dup := ns.byName[e.name]; dup {
		return false
	}
	ns.byName[e.name] = e
	if e.typeName != "" {
		if _, dup := ns.byTypeName[e.typeName]; !dup {
			ns.byTypeName[e.typeName] = e
		}
	}
	ns.entries = append(ns.entries, e)
	return true
}

// seal orders entries by name, which fixes the index order of Info.
func (ns *namespace) seal() {
	sort.SliceStable(ns.entries, func(i, j int) bool {
		return ns.entries[i].name < ns.entries[j].name
	})
}

func (ns *namespace) materializeAll(log *zap.Logger) error {
	for _, e := range ns.entries {
		e.materialize(log, ns.name)
		if e.err != nil {
			return errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(ns.name, e.name).
				Cause(e.err).
				Detail("record %s", e.name).
				Build()
		}
	}
	return nil
}

// dependency finds a loaded namespace reachable through includes.
func (ns *namespace) dependency(name string) *namespace {
	seen := map[*namespace]bool{}
	queue := []*namespace{ns}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if cur.name == name {
			return cur
		}
		queue = append(queue, cur.deps...)
	}
	return nil
}

// entry is a directory slot whose record is built on first use.
type entry struct {
	build    func() (*node, error)
	node     *node
	err      error
	name     string
	typeName string
	kind     InfoType
	once     sync.Once
}

func (e *entry) materialize(log *zap.Logger, namespace string) *node {
	e.once.Do(func() {
		n, err := e.build()
		if err != nil {
			log.Warn("failed to build record",
				zap.String("namespace", namespace),
				zap.String("name", e.name),
				zap.Error(err))
			e.err = err
			n = invalidNode(namespace, e.name)
		} else {
			log.Debug("record built",
				zap.String("namespace", namespace),
				zap.String("name", e.name),
				zap.Stringer("kind", n.kind))
		}
		e.node = n
	})
	return e.node
}

type typelibFormat struct {
	parse func(path string, data []byte, log *zap.Logger) (*namespace, error)
	ext   string
}

var formats = []typelibFormat{
	{ext: ".gir", parse: parseGIR},
	{ext: ".wit", parse: parseWIT},
}

func parseFile(path string, log *zap.Logger) (*namespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for _, f := range formats {
		if strings.HasSuffix(path, f.ext) {
			ns, err := f.parse(path, data, log)
			if err != nil {
				return nil, err
			}
			ns.seal()
			return ns, nil
		}
	}
	return nil, errors.Unsupported(errors.PhaseLoad, "typelib format "+filepath.Ext(path))
}
