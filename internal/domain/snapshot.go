package domain

// NodeView is a read-only copy of one visual node and its subtree.
type NodeView struct {
	ID       string     `json:"id"`
	Class    string     `json:"class"`
	Content  Fragment   `json:"content"`
	Children []NodeView `json:"children,omitempty"`
}

type Snapshot struct {
	Nodes     []NodeView `json:"nodes"`
	Retrieved int64      `json:"retrieved"`
}
