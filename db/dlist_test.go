package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func values[T any](l *List[T], direction int) []T {
	var out []T
	it := l.Iterator(direction)
	for node := it.Next(); node != nil; node = it.Next() {
		out = append(out, node.Value)
	}
	return out
}

func TestNewList(t *testing.T) {
	list := NewList[int]()
	assert.Nil(t, list.Head)
	assert.Nil(t, list.Tail)
	assert.Equal(t, 0, list.Len())
}

func TestAddNodeHead(t *testing.T) {
	list := NewList[int]()
	list.AddNodeHead(5)
	list.AddNodeHead(4)
	assert.Equal(t, 4, list.Head.Value)
	assert.Equal(t, 5, list.Tail.Value)
	assert.Equal(t, 2, list.Len())
}

func TestAddNodeTail(t *testing.T) {
	list := NewList[int]()
	list.AddNodeTail(5)
	assert.Equal(t, 5, list.Head.Value)
	assert.Equal(t, 5, list.Tail.Value)
	assert.Equal(t, 1, list.Len())

	list.AddNodeTail(10)
	assert.Equal(t, 5, list.Head.Value)
	assert.Equal(t, 10, list.Tail.Value)
	assert.Equal(t, 2, list.Len())
}

func TestEmpty(t *testing.T) {
	list := NewList[int]()
	list.AddNodeTail(5)
	list.AddNodeTail(10)
	list.Empty()
	assert.Nil(t, list.Head)
	assert.Nil(t, list.Tail)
	assert.Equal(t, 0, list.Len())
}

func TestRemoveNode(t *testing.T) {
	list := NewList[int]()
	list.AddNodeTail(5)
	list.AddNodeTail(10)
	list.RemoveNode(list.Head)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, 10, list.Head.Value)
	assert.Equal(t, 10, list.Tail.Value)
}

func TestMoveToHead(t *testing.T) {
	list := NewList[int]()
	list.AddNodeTail(1)
	two := list.AddNodeTail(2)
	three := list.AddNodeTail(3)

	list.MoveToHead(three)
	assert.Equal(t, []int{3, 1, 2}, values(list, DIRECTION_HEAD))
	list.MoveToHead(two)
	assert.Equal(t, []int{2, 3, 1}, values(list, DIRECTION_HEAD))
	list.MoveToHead(two)
	assert.Equal(t, []int{2, 3, 1}, values(list, DIRECTION_HEAD))
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, 1, list.Tail.Value)
}
