package app

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/evaluator"
	"github.com/vk/optbind/internal/remote"
)

// dialFunc connects to a remote source. Replaced in tests.
var dialFunc = func(ctx context.Context, opts remote.Options) (querier, error) {
	return remote.Dial(ctx, opts)
}

type querier interface {
	Function() evaluator.NativeFunc
	Close() error
}

// lazyRemote connects on first use, so remotes an expression never calls are
// never dialed.
type lazyRemote struct {
	def *config.Remote

	once sync.Once
	src  querier
	err  error
}

func (r *lazyRemote) call(ctx context.Context, args ...any) (any, error) {
	r.once.Do(func() {
		ctxlog.FromContext(ctx).Debug("Dialing remote data source.", "name", r.def.Name, "url", r.def.URL)
		r.src, r.err = dialFunc(ctx, remote.Options{
			URL:                r.def.URL,
			Namespace:          r.def.Namespace,
			Event:              r.def.Event,
			Timeout:            r.def.Timeout,
			InsecureSkipVerify: r.def.InsecureSkipVerify,
		})
	})
	if r.err != nil {
		return nil, r.err
	}
	return r.src.Function()(ctx, args...)
}

func (r *lazyRemote) close() error {
	if r.src == nil {
		return nil
	}
	return r.src.Close()
}

// envVariable is the scope variable holding the process environment.
const envVariable = "env"

// environ returns the process environment as an object, e.g. `env.USER`.
func environ() map[string]any {
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// buildScope exposes every data definition as a variable and every remote as
// a function. The environment is available as `env` unless a data block
// takes that name. The returned closer disconnects the remotes that were
// dialed.
func buildScope(model *config.Model) (evaluator.Scope, func() error) {
	scope := evaluator.Scope{
		Variables: make(map[string]any, len(model.Data)+1),
		Functions: make(map[string]evaluator.NativeFunc, len(model.Remotes)),
	}
	scope.Variables[envVariable] = environ()
	for name, d := range model.Data {
		scope.Variables[name] = d.Value
	}

	remotes := make([]*lazyRemote, 0, len(model.Remotes))
	for name, def := range model.Remotes {
		r := &lazyRemote{def: def}
		remotes = append(remotes, r)
		scope.Functions[name] = r.call
	}

	closer := func() error {
		var firstErr error
		for _, r := range remotes {
			if err := r.close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return scope, closer
}
