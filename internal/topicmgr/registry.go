package topicmgr

import (
	"slices"
	"strings"
	"sync"
)

// catalog stores registered topics by name with a per-module index.
type catalog struct {
	mu       sync.RWMutex
	byName   map[string]Topic
	byModule map[string][]string
}

func newCatalog() *catalog {
	c := &catalog{}
	c.reset()
	return c
}

func (c *catalog) reset() {
	c.byName = make(map[string]Topic)
	c.byModule = make(map[string][]string)
}

// add stores topic unless its name is taken.
func (c *catalog) add(topic Topic) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := topic.Name()
	if _, exists := c.byName[name]; exists {
		return &TopicError{Topic: name, Module: topic.Module(), Kind: ErrDuplicateTopic}
	}
	c.byName[name] = topic
	c.byModule[topic.Module()] = append(c.byModule[topic.Module()], name)
	return nil
}

func (c *catalog) get(name string) (Topic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// all returns topics sorted by name, optionally filtered.
func (c *catalog) all(keep func(Topic) bool) []Topic {
	c.mu.RLock()
	out := make([]Topic, 0, len(c.byName))
	for _, t := range c.byName {
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b Topic) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

func (c *catalog) module(name string) []Topic {
	c.mu.RLock()
	names := slices.Clone(c.byModule[name])
	c.mu.RUnlock()

	slices.Sort(names)
	out := make([]Topic, 0, len(names))
	for _, n := range names {
		if t, ok := c.get(n); ok {
			out = append(out, t)
		}
	}
	return out
}

func (c *catalog) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

func (c *catalog) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}
