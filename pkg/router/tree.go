package router

import "strings"

// routeNode is a node in the table's lookup tree.
type routeNode struct {
	// segment is the path segment this node matches
	segment string

	// paramName is the parameter name (without : or *)
	paramName string

	// handlers maps a method to its index in Table.regs
	handlers map[string]int

	// children are static segment children
	children []*routeNode

	// paramChild is the dynamic parameter child (:id)
	paramChild *routeNode

	// catchAllChild is the catch-all child (*slug)
	catchAllChild *routeNode
}

func newRouteNode(segment string) *routeNode {
	return &routeNode{segment: segment}
}

// findChild finds a child node with an exact segment match.
func (n *routeNode) findChild(segment string) *routeNode {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *routeNode) addChild(segment string) *routeNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newRouteNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *routeNode) addParamChild(name string) *routeNode {
	if n.paramChild == nil {
		n.paramChild = &routeNode{paramName: name}
	}
	return n.paramChild
}

func (n *routeNode) addCatchAllChild(name string) *routeNode {
	if n.catchAllChild == nil {
		n.catchAllChild = &routeNode{paramName: name}
	}
	return n.catchAllChild
}

// insert adds a pattern to the tree and returns its leaf.
func (n *routeNode) insert(pattern string) *routeNode {
	current := n
	for _, seg := range splitPath(pattern) {
		switch {
		case strings.HasPrefix(seg, "*"):
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			current = current.addParamChild(seg[1:])
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match finds the leaf for segments, filling params on the way. Static
// children win over params, params over catch-all.
func (n *routeNode) match(segments []string, params map[string]string) (*routeNode, bool) {
	if len(segments) == 0 {
		if n.handlers != nil {
			return n, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		if node, ok := child.match(remaining, params); ok {
			return node, true
		}
	}

	if n.paramChild != nil {
		params[n.paramChild.paramName] = segment
		if node, ok := n.paramChild.match(remaining, params); ok {
			return node, true
		}
		delete(params, n.paramChild.paramName)
	}

	if n.catchAllChild != nil && n.catchAllChild.handlers != nil {
		params[n.catchAllChild.paramName] = strings.Join(segments, "/")
		return n.catchAllChild, true
	}

	return nil, false
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
