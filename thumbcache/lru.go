package thumbcache

// lruNode is a node in a doubly-linked LRU list. It carries its key so
// the oldest entry can be deleted from the shard map in O(1).
type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

// lruList orders a shard's keys by recency, head first.
// It is not thread-safe; the shard lock guards it.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

// Len returns the number of nodes in the list.
func (l *lruList) Len() int {
	return l.len
}

// PushFront adds key as the most recently used node.
func (l *lruList) PushFront(key string) *lruNode {
	node := &lruNode{key: key}
	l.linkFront(node)
	return node
}

// MoveToFront marks node as the most recently used.
func (l *lruList) MoveToFront(node *lruNode) {
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)
	l.linkFront(node)
}

// Remove removes node from the list.
func (l *lruList) Remove(node *lruNode) {
	if node == nil {
		return
	}
	l.unlink(node)
}

// Oldest returns the least recently used node, or nil.
func (l *lruList) Oldest() *lruNode {
	return l.tail
}

// Clear drops every node.
func (l *lruList) Clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *lruList) linkFront(node *lruNode) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

func (l *lruList) unlink(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	l.len--
}
