package collection

// arena holds the document sequence as slots. Removing a document frees its
// slot without shifting the others, so slot indexes held by the primary
// index stay valid. Live slots in slot order are the insertion order.
type arena struct {
	slots []map[string]any // nil marks a free slot
	live  int
}

func newArena(docs []map[string]any) *arena {
	a := &arena{slots: make([]map[string]any, 0, len(docs))}
	for _, doc := range docs {
		a.add(doc)
	}
	return a
}

// add appends a document and returns its slot
func (a *arena) add(node map[string]any) int {
	a.slots = append(a.slots, node)
	a.live++
	return len(a.slots) - 1
}

// get returns the document in slot i
func (a *arena) get(i int) (map[string]any, bool) {
	if i < 0 || i >= len(a.slots) || a.slots[i] == nil {
		return nil, false
	}
	return a.slots[i], true
}

// replace swaps the content of a live slot and returns the previous content
func (a *arena) replace(i int, node map[string]any) map[string]any {
	old := a.slots[i]
	a.slots[i] = node
	return old
}

// release frees slot i, trimming trailing free slots
func (a *arena) release(i int) {
	if i < 0 || i >= len(a.slots) || a.slots[i] == nil {
		return
	}
	a.slots[i] = nil
	a.live--
	for n := len(a.slots); n > 0 && a.slots[n-1] == nil; n-- {
		a.slots = a.slots[:n-1]
	}
}

// restore puts a document back into a free slot, growing the arena if the
// slot was trimmed
func (a *arena) restore(i int, node map[string]any) {
	for len(a.slots) <= i {
		a.slots = append(a.slots, nil)
	}
	if a.slots[i] == nil {
		a.live++
	}
	a.slots[i] = node
}

// len returns the number of live documents
func (a *arena) len() int {
	return a.live
}

// free returns the number of free slots
func (a *arena) free() int {
	return len(a.slots) - a.live
}

// view returns the live documents and, for each, its slot index
func (a *arena) view() ([]any, []int) {
	nodes := make([]any, 0, a.live)
	slots := make([]int, 0, a.live)
	for i, node := range a.slots {
		if node != nil {
			nodes = append(nodes, node)
			slots = append(slots, i)
		}
	}
	return nodes, slots
}

// documents returns the live documents in order
func (a *arena) documents() []map[string]any {
	docs := make([]map[string]any, 0, a.live)
	for _, node := range a.slots {
		if node != nil {
			docs = append(docs, node)
		}
	}
	return docs
}

// compact drops free slots. The returned slice maps each old slot index to
// its new index, or -1 for slots that were free.
func (a *arena) compact() []int {
	remap := make([]int, len(a.slots))
	kept := a.slots[:0]
	for i, node := range a.slots {
		if node == nil {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, node)
	}
	clear(a.slots[len(kept):])
	a.slots = kept
	return remap
}
