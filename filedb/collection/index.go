package collection

// primaryIndex maps primary ids to arena slots. It is a lookup accelerator
// only; the arena is the source of truth.
type primaryIndex struct {
	slots map[int64]int
}

func newPrimaryIndex() *primaryIndex {
	return &primaryIndex{slots: make(map[int64]int, 10)}
}

func (p *primaryIndex) get(id int64) (int, bool) {
	slot, ok := p.slots[id]
	return slot, ok
}

func (p *primaryIndex) put(id int64, slot int) {
	p.slots[id] = slot
}

func (p *primaryIndex) remove(id int64) {
	delete(p.slots, id)
}

func (p *primaryIndex) clear() {
	clear(p.slots)
}

func (p *primaryIndex) len() int {
	return len(p.slots)
}

// remap rewrites slot indexes after the arena was compacted
func (p *primaryIndex) remap(remap []int) {
	for id, slot := range p.slots {
		if slot >= len(remap) || remap[slot] < 0 {
			delete(p.slots, id)
			continue
		}
		p.slots[id] = remap[slot]
	}
}
