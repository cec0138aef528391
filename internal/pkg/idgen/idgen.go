// Package idgen hands out ids: opaque websocket session ids and the dense
// unit ids rooms give their occupants.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a fresh id on every call. Implementations must be safe
// for concurrent use since every upgrade handler draws from the same one.
type Generator interface {
	Generate() string
}

// Func adapts a plain function to Generator
type Func func() string

func (f Func) Generate() string { return f() }

// Sequential yields prefix_1, prefix_2 and so on. Tests use it to predict
// session ids.
type Sequential struct {
	prefix string
	n      atomic.Uint64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (g *Sequential) Generate() string {
	return withPrefix(g.prefix, strconv.FormatUint(g.n.Add(1), 10))
}

// NewUUID returns a Generator of random v4 ids, optionally prefixed
func NewUUID(prefix string) Generator {
	return Func(func() string {
		return withPrefix(prefix, uuid.NewString())
	})
}

func withPrefix(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
