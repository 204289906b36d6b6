package tagging

const none = -1

// lruList is a doubly-linked list of line indices backed by arrays. The head
// is the least recently used line and the tail the most recently used one.
type lruList struct {
	prev, next []int
	linked     []bool
	head, tail int
	len        int
}

func newLRUList(numLines int) *lruList {
	l := &lruList{
		prev:   make([]int, numLines),
		next:   make([]int, numLines),
		linked: make([]bool, numLines),
		head:   none,
		tail:   none,
	}

	for i := range numLines {
		l.prev[i] = none
		l.next[i] = none
	}

	return l
}

func (l *lruList) oldest() (int, bool) {
	if l.head == none {
		return 0, false
	}

	return l.head, true
}

func (l *lruList) remove(i int) {
	if !l.linked[i] {
		return
	}

	if l.prev[i] != none {
		l.next[l.prev[i]] = l.next[i]
	} else {
		l.head = l.next[i]
	}

	if l.next[i] != none {
		l.prev[l.next[i]] = l.prev[i]
	} else {
		l.tail = l.prev[i]
	}

	l.prev[i] = none
	l.next[i] = none
	l.linked[i] = false
	l.len--
}

func (l *lruList) moveToNewest(i int) {
	l.remove(i)

	l.prev[i] = l.tail
	l.next[i] = none

	if l.tail != none {
		l.next[l.tail] = i
	} else {
		l.head = i
	}

	l.tail = i
	l.linked[i] = true
	l.len++
}

func (l *lruList) order() []int {
	order := make([]int, 0, l.len)
	for i := l.head; i != none; i = l.next[i] {
		order = append(order, i)
	}

	return order
}
