package ir

import "fmt"

// Validate checks the graph under root is acyclic and that every
// referenced node carries an ID.
func Validate(root *Node) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Node]int)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		switch state[n] {
		case visiting:
			return fmt.Errorf("ir: reference cycle through %s", describe(n))
		case done:
			return nil
		}
		state[n] = visiting
		for _, p := range n.Params {
			switch p.Value.Kind {
			case KindRef:
				t := p.Value.Node
				if t == nil {
					return fmt.Errorf("ir: %s.%s references nothing", describe(n), p.Name)
				}
				if t.ID == "" {
					return fmt.Errorf("ir: %s.%s references anonymous %s", describe(n), p.Name, describe(t))
				}
				if err := visit(t); err != nil {
					return err
				}
			case KindChild:
				if p.Value.Node == nil {
					return fmt.Errorf("ir: %s.%s has a nil child", describe(n), p.Name)
				}
				if err := visit(p.Value.Node); err != nil {
					return err
				}
			}
		}
		state[n] = done
		return nil
	}
	return visit(root)
}

// Shared returns the referenced nodes reachable from the given top-level
// nodes in depth-first post-order: every node appears after the nodes it
// references and before its first referrer. Each node appears once.
func Shared(tops []*Node) []*Node {
	seen := make(map[*Node]bool)
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		for _, t := range n.Refs() {
			if seen[t] {
				continue
			}
			seen[t] = true
			visit(t)
			out = append(out, t)
		}
	}
	for _, n := range tops {
		visit(n)
	}
	return out
}

// Walk calls fn for n and every nested child, depth first. References are
// not followed.
func Walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, p := range n.Params {
		if p.Value.Kind == KindChild {
			Walk(p.Value.Node, fn)
		}
	}
}

func describe(n *Node) string {
	if n.ID != "" {
		return fmt.Sprintf("%s %s %q", n.Class, n.Type, n.ID)
	}
	return fmt.Sprintf("%s %s", n.Class, n.Type)
}
