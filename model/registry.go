package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitranim/querystr"
)

/*
Set of models addressable by entity name. Implements `querystr.Resolver`.
Safe for concurrent use; models are normally registered once at startup and
then only resolved.
*/
type Registry struct {
	lock   sync.RWMutex
	models map[string]*Model
}

var _ = querystr.Resolver((*Registry)(nil))

// Creates a registry with the given models. Panics on duplicate names.
func NewRegistry(models ...*Model) *Registry {
	out := &Registry{models: make(map[string]*Model, len(models))}
	for _, val := range models {
		if err := out.Register(val); err != nil {
			panic(err)
		}
	}
	return out
}

// Adds a model. Registering two models under one name is an error.
func (self *Registry) Register(val *Model) error {
	if val == nil {
		return fmt.Errorf(`[model] can't register nil model`)
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	if self.models == nil {
		self.models = map[string]*Model{}
	}
	if _, ok := self.models[val.Name]; ok {
		return fmt.Errorf(`[model] duplicate entity name %q`, val.Name)
	}
	self.models[val.Name] = val
	return nil
}

// Returns the model registered under the given name.
func (self *Registry) Lookup(name string) (*Model, bool) {
	self.lock.RLock()
	defer self.lock.RUnlock()
	val, ok := self.models[name]
	return val, ok
}

// Implements `querystr.Resolver`.
func (self *Registry) ResolveEntity(name string) (querystr.Entity, bool) {
	val, ok := self.Lookup(name)
	if !ok {
		return nil, false
	}
	return val, true
}

// Sorted names of registered models.
func (self *Registry) Names() []string {
	self.lock.RLock()
	defer self.lock.RUnlock()

	out := make([]string, 0, len(self.models))
	for name := range self.models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
