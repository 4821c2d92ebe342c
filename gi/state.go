package gi

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gireflect/errors"
	"github.com/wippyai/gireflect/host"
	"github.com/wippyai/gireflect/typelib"
)

// Host classes of the objects a State registers.
const (
	ClassInfo host.Class = iota + 1
	ClassInfos
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the gi package's default logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the default logger for States created afterwards.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Option configures a State.
type Option func(*State)

// WithLogger overrides the package logger for one State.
func WithLogger(l *zap.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTable registers proxies in an existing host table instead of a
// private one.
func WithTable(t *host.Table) Option {
	return func(s *State) {
		if t != nil {
			s.table = t
		}
	}
}

// State binds a repository to a host object table. All proxies, views and
// namespaces created through a State share its repository; two States over
// different repositories never see each other's namespaces.
type State struct {
	repo  *typelib.Repository
	table *host.Table
	log   *zap.Logger
}

// NewState creates a State over repo.
func NewState(repo *typelib.Repository, opts ...Option) *State {
	s := &State{
		repo: repo,
		log:  Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == nil {
		s.table = host.NewTable(host.WithLogger(s.log))
	}
	return s
}

// Repository returns the underlying repository.
func (s *State) Repository() *typelib.Repository { return s.repo }

// Table returns the host table proxies are registered in.
func (s *State) Table() *host.Table { return s.table }

// Live is the number of proxies and views not yet released.
func (s *State) Live() int { return s.table.Len() }

// Close releases every proxy and view still alive.
func (s *State) Close() error {
	return s.table.Close()
}

// Require loads namespace ns lazily. An empty version picks the newest one
// available; a non-empty dir loads ns from that directory instead of the
// search path.
func (s *State) Require(ns, version, dir string) (*Namespace, error) {
	var err error
	if dir == "" {
		_, err = s.repo.Require(ns, version, typelib.LoadFlagLazy)
	} else {
		_, err = s.repo.RequirePrivate(dir, ns, version, typelib.LoadFlagLazy)
	}
	if err != nil {
		if le, ok := err.(*typelib.LoadError); ok {
			return nil, errors.LoadFailure(le.Message, int(le.Code), le.Err)
		}
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindLoadFailure, err, "require "+ns)
	}
	s.log.Debug("namespace required",
		zap.String("namespace", ns),
		zap.String("version", s.repo.Version(ns)))
	return &Namespace{st: s, name: ns}, nil
}

// Lookup resolves a global key. Numeric keys are GTypes and yield the
// registered type's proxy; string keys yield the namespace if it is loaded.
// Anything else, or a miss, yields nil.
func (s *State) Lookup(key any) any {
	if g, ok := toGType(key); ok {
		return absent(s.Wrap(s.repo.FindByGType(g)))
	}
	if name, ok := key.(string); ok && s.repo.IsRegistered(name, "") {
		return &Namespace{st: s, name: name}
	}
	return nil
}

// Wrap takes ownership of bi and returns a proxy for it. A nil handle
// yields nil; an invalid handle is released and yields nil.
func (s *State) Wrap(bi *typelib.BaseInfo) *Info {
	if bi == nil {
		return nil
	}
	if bi.Type() == typelib.InfoTypeInvalid {
		bi.Unref()
		return nil
	}
	i := &Info{st: s, bi: bi}
	h := s.table.Insert(ClassInfo, i)
	if h == 0 {
		bi.Unref()
		return nil
	}
	i.h.Store(uint64(h))
	return i
}

func toGType(key any) (typelib.GType, bool) {
	switch k := key.(type) {
	case typelib.GType:
		return k, true
	case int:
		return typelib.GType(k), k >= 0
	case int64:
		return typelib.GType(k), k >= 0
	case uint64:
		return typelib.GType(k), true
	case float64:
		if k < 0 || k != float64(uint64(k)) {
			return 0, false
		}
		return typelib.GType(k), true
	}
	return 0, false
}
