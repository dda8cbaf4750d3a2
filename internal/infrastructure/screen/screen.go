// Package screen is the in-memory visual tree the dashboard draws. Nodes are
// indexed by id in a flat map; children keep their insertion order.
package screen

import (
	"errors"
	"fmt"
	"sync"

	"github.com/davarch/ci-dashboard/internal/domain"
)

var (
	ErrExists = errors.New("node already exists")
	ErrNoNode = errors.New("no such node")
)

type node struct {
	id       string
	class    string
	content  domain.Fragment
	children []*node
}

type Screen struct {
	mu    sync.RWMutex
	root  *node
	index map[string]*node
}

func New() *Screen {
	return &Screen{
		root:  &node{},
		index: make(map[string]*node),
	}
}

func (s *Screen) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *Screen) Create(parent, id, class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return fmt.Errorf("create %q: %w", id, ErrExists)
	}

	p := s.root
	if parent != "" {
		var ok bool
		if p, ok = s.index[parent]; !ok {
			return fmt.Errorf("create %q under %q: %w", id, parent, ErrNoNode)
		}
	}

	n := &node{id: id, class: class}
	p.children = append(p.children, n)
	s.index[id] = n
	return nil
}

func (s *Screen) SetClass(id, class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.index[id]
	if !ok {
		return fmt.Errorf("set class on %q: %w", id, ErrNoNode)
	}
	n.class = class
	return nil
}

func (s *Screen) SetContent(id string, f domain.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.index[id]
	if !ok {
		return fmt.Errorf("set content on %q: %w", id, ErrNoNode)
	}
	n.content = f
	return nil
}

// Len is the number of nodes below the root.
func (s *Screen) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Node returns a copy of a single node and its subtree.
func (s *Screen) Node(id string) (domain.NodeView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.index[id]
	if !ok {
		return domain.NodeView{}, false
	}
	return view(n), true
}

// Snapshot copies the whole tree in insertion order.
func (s *Screen) Snapshot() []domain.NodeView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.NodeView, 0, len(s.root.children))
	for _, c := range s.root.children {
		out = append(out, view(c))
	}
	return out
}

func view(n *node) domain.NodeView {
	v := domain.NodeView{ID: n.id, Class: n.class, Content: n.content}
	if len(n.children) > 0 {
		v.Children = make([]domain.NodeView, 0, len(n.children))
		for _, c := range n.children {
			v.Children = append(v.Children, view(c))
		}
	}
	return v
}
