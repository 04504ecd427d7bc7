package db

type ListNode[T any] struct {
	Prev  *ListNode[T]
	Next  *ListNode[T]
	Value T
}

type ListIter[T any] struct {
	next      *ListNode[T]
	direction int
}

// List is a doubly linked list. Nodes are handed out so callers can keep a
// pointer and unlink or move them in O(1).
type List[T any] struct {
	Head   *ListNode[T]
	Tail   *ListNode[T]
	Length int
}

const (
	DIRECTION_HEAD = iota
	DIRECTION_TAIL
)

func NewList[T any]() *List[T] {
	return &List[T]{}
}

// Empty the list
func (l *List[T]) Empty() {
	for current := l.Head; current != nil; {
		next := current.Next
		current.Prev, current.Next = nil, nil
		current = next
	}
	l.Head, l.Tail = nil, nil
	l.Length = 0
}

func (l *List[T]) AddNodeHead(value T) *ListNode[T] {
	node := &ListNode[T]{Value: value}
	l.linkHead(node)
	return node
}

func (l *List[T]) AddNodeTail(value T) *ListNode[T] {
	node := &ListNode[T]{Value: value}
	if l.Tail == nil {
		l.Head, l.Tail = node, node
	} else {
		node.Prev, l.Tail.Next, l.Tail = l.Tail, node, node
	}
	l.Length++
	return node
}

func (l *List[T]) linkHead(node *ListNode[T]) {
	if l.Head == nil {
		l.Head, l.Tail = node, node
	} else {
		node.Next, l.Head.Prev, l.Head = l.Head, node, node
	}
	l.Length++
}

// RemoveNode a node from the list
func (l *List[T]) RemoveNode(node *ListNode[T]) {
	if node.Prev != nil {
		node.Prev.Next = node.Next
	} else {
		l.Head = node.Next
	}
	if node.Next != nil {
		node.Next.Prev = node.Prev
	} else {
		l.Tail = node.Prev
	}
	node.Next, node.Prev = nil, nil
	l.Length--
}

// MoveToHead relinks node as the first element.
func (l *List[T]) MoveToHead(node *ListNode[T]) {
	if l.Head == node {
		return
	}
	l.RemoveNode(node)
	l.linkHead(node)
}

// Iterator walks from the head with DIRECTION_HEAD, from the tail otherwise.
func (l *List[T]) Iterator(direction int) *ListIter[T] {
	it := &ListIter[T]{direction: direction}
	if direction == DIRECTION_HEAD {
		it.next = l.Head
	} else {
		it.next = l.Tail
	}
	return it
}

// Next returns the current node and advances, or nil at the end. The
// returned node may be removed before the next call.
func (it *ListIter[T]) Next() *ListNode[T] {
	current := it.next
	if current != nil {
		if it.direction == DIRECTION_HEAD {
			it.next = current.Next
		} else {
			it.next = current.Prev
		}
	}
	return current
}

// Len ...
func (l *List[T]) Len() int {
	return l.Length
}
