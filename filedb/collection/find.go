package collection

import (
	"strings"

	"github.com/arthur-debert/filedb/filedb/query"
)

// locate finds the slot of the document with the given id, consulting the
// primary index first when caching is enabled and backfilling it on a miss.
// Ids are unique, so the first match of the point query is taken.
func (c *Collection[T, PT]) locate(id int64) (int, bool, error) {
	if c.caching {
		if slot, ok := c.index.get(id); ok {
			if _, live := c.docs.get(slot); live {
				return slot, true, nil
			}
			c.index.remove(id)
		}
	}

	q, err := query.Compile(query.ByID(id))
	if err != nil {
		return 0, false, err
	}
	nodes, slots := c.docs.view()
	positions, err := q.Select(nodes)
	if err != nil {
		return 0, false, err
	}
	if len(positions) == 0 {
		return 0, false, nil
	}

	slot := slots[positions[0]]
	if c.caching {
		c.index.put(id, slot)
	}
	return slot, true, nil
}

// Find returns the document with the given id, or nil when there is none
func (c *Collection[T, PT]) Find(id int64) (PT, error) {
	slot, ok, err := c.locate(id)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, id, err)
	}
	if !ok {
		return nil, nil
	}

	node, _ := c.docs.get(slot)
	item, err := decodeRecord[T, PT](node)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, id, err)
	}
	return item, nil
}

// FindMany resolves each id independently. The result has one entry per id,
// nil where no document exists. An empty ids slice returns nil.
func (c *Collection[T, PT]) FindMany(ids []int64) ([]PT, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]PT, 0, len(ids))
	for _, id := range ids {
		item, err := c.Find(id)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// FindPath evaluates a JSONPath expression against the document array and
// returns the single matching document, or nil when nothing matches. More
// than one match fails with ErrQueryFailed wrapping query.ErrMultipleResults.
// A blank path matches nothing.
func (c *Collection[T, PT]) FindPath(path string) (PT, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	q, err := query.Compile(path)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, 0, err)
	}
	nodes, slots := c.docs.view()
	pos, ok, err := q.SelectOne(nodes)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, 0, err)
	}
	if !ok {
		return nil, nil
	}

	slot := slots[pos]
	node, _ := c.docs.get(slot)
	item, err := decodeRecord[T, PT](node)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, 0, err)
	}

	if c.caching {
		if id := item.PrimaryID(); id > 0 {
			if _, cached := c.index.get(id); !cached {
				c.index.put(id, slot)
			}
		}
	}
	return item, nil
}

// FindManyPath returns every document matching a JSONPath expression, in
// document order. It returns nil when nothing matches or path is blank.
func (c *Collection[T, PT]) FindManyPath(path string) ([]PT, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	q, err := query.Compile(path)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, 0, err)
	}
	nodes, _ := c.docs.view()
	positions, err := q.Select(nodes)
	if err != nil {
		return nil, c.opError("find", ErrQueryFailed, 0, err)
	}
	if len(positions) == 0 {
		return nil, nil
	}

	out := make([]PT, 0, len(positions))
	for _, pos := range positions {
		item, err := decodeRecord[T, PT](nodes[pos].(map[string]any))
		if err != nil {
			return nil, c.opError("find", ErrQueryFailed, 0, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// FindWhere returns the single document whose field compares to value with
// op. See FindPath for the handling of multiple matches.
func (c *Collection[T, PT]) FindWhere(field string, value any, op query.Operator) (PT, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}
	return c.FindPath(query.Translate(field, value, op))
}

// FindManyWhere returns every document whose field compares to value with op
func (c *Collection[T, PT]) FindManyWhere(field string, value any, op query.Operator) ([]PT, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}
	return c.FindManyPath(query.Translate(field, value, op))
}

// All returns every inserted document in order
func (c *Collection[T, PT]) All() ([]PT, error) {
	return c.FindManyPath(query.AllDocuments)
}
