package collection

import (
	"errors"
	"fmt"
)

// Insert assigns the next primary id to item and adds it to the collection.
// The item must not have been inserted before (its id must be 0). When mode
// is Persist the file is rewritten afterwards; if only that write fails, the
// inserted item is returned together with an ErrPersistFailed error.
func (c *Collection[T, PT]) Insert(item PT, mode WriteMode) (PT, error) {
	if item == nil {
		return nil, c.opError("insert", ErrInvalidArgument, 0, errors.New("cannot insert a nil item"))
	}
	if id := item.PrimaryID(); id != 0 {
		return nil, c.opError("insert", ErrAlreadyExists, id, nil)
	}

	if err := c.insert(item); err != nil {
		return nil, err
	}

	if mode == Persist {
		if err := c.Persist(); err != nil {
			return item, err
		}
	}
	return item, nil
}

// insert adds item in memory. On failure every effect is undone: the counter,
// the cache entry, the item's id and the arena slot.
func (c *Collection[T, PT]) insert(item PT) (err error) {
	id := c.nextID
	c.nextID++
	item.SetPrimaryID(id)
	slot := -1

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}
		c.nextID--
		c.index.remove(id)
		item.SetPrimaryID(0)
		if slot >= 0 {
			c.docs.release(slot)
		}
		c.logger.Debug("insert rolled back", "generation", c.generation, "id", id, "error", err)
		err = c.opError("insert", ErrInsertFailed, id, err)
	}()

	node, err := c.encode(item, id)
	if err != nil {
		return err
	}
	slot = c.docs.add(node)
	if c.caching {
		c.index.put(id, slot)
	}

	c.logger.Debug("inserted document", "generation", c.generation, "id", id)
	return nil
}

// InsertMany inserts items in order, persisting once at the end when mode is
// Persist. Nothing is inserted if any item already has an id. A failure part
// way through keeps the items inserted before it; the returned slice holds
// those items. Empty input returns nil.
func (c *Collection[T, PT]) InsertMany(items []PT, mode WriteMode) ([]PT, error) {
	if len(items) == 0 {
		return nil, nil
	}
	for _, item := range items {
		if item != nil && item.PrimaryID() != 0 {
			return nil, c.opError("insert", ErrAlreadyExists, item.PrimaryID(), nil)
		}
	}

	out := make([]PT, 0, len(items))
	var err error
	for _, item := range items {
		inserted, insertErr := c.Insert(item, Defer)
		if insertErr != nil {
			err = insertErr
			break
		}
		out = append(out, inserted)
	}

	return out, c.finishBatch(mode, err)
}

// Update replaces the stored document having item's id and returns the
// document as it was before the update, or nil when no such document exists.
func (c *Collection[T, PT]) Update(item PT, mode WriteMode) (PT, error) {
	if item == nil {
		return nil, c.opError("update", ErrInvalidArgument, 0, errors.New("cannot update with a nil item"))
	}
	if item.PrimaryID() == 0 {
		return nil, c.opError("update", ErrNotInserted, 0, nil)
	}

	old, err := c.update(item)
	if err != nil || old == nil {
		return nil, err
	}

	if mode == Persist {
		if err := c.Persist(); err != nil {
			return old, err
		}
	}
	return old, nil
}

// update replaces the document in memory, restoring the original content
// and cache entry on failure
func (c *Collection[T, PT]) update(item PT) (old PT, err error) {
	id := item.PrimaryID()

	slot, ok, err := c.locate(id)
	if err != nil {
		return nil, c.opError("update", ErrUpdateFailed, id, err)
	}
	if !ok {
		return nil, nil
	}

	original, _ := c.docs.get(slot)
	cachedSlot, cached := c.index.get(id)
	replaced := false

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}
		if replaced {
			c.docs.replace(slot, original)
		}
		if cached {
			c.index.put(id, cachedSlot)
		} else {
			c.index.remove(id)
		}
		old = nil
		c.logger.Debug("update rolled back", "generation", c.generation, "id", id, "error", err)
		err = c.opError("update", ErrUpdateFailed, id, err)
	}()

	old, err = decodeRecord[T, PT](original)
	if err != nil {
		return nil, err
	}
	node, err := c.encode(item, id)
	if err != nil {
		return nil, err
	}

	c.docs.replace(slot, node)
	replaced = true
	if c.caching {
		c.index.put(id, slot)
	}

	c.logger.Debug("updated document", "generation", c.generation, "id", id)
	return old, nil
}

// UpdateMany updates items in order and returns the previous version of
// each (nil entries for ids that were not found). Nothing is updated if any
// item is nil or has not been inserted. There is no batch rollback.
func (c *Collection[T, PT]) UpdateMany(items []PT, mode WriteMode) ([]PT, error) {
	if len(items) == 0 {
		return nil, nil
	}
	for _, item := range items {
		if item == nil {
			return nil, c.opError("update", ErrInvalidArgument, 0, errors.New("cannot update with a nil item"))
		}
		if item.PrimaryID() == 0 {
			return nil, c.opError("update", ErrNotInserted, 0, nil)
		}
	}

	out := make([]PT, 0, len(items))
	var err error
	for _, item := range items {
		old, updateErr := c.update(item)
		if updateErr != nil {
			err = updateErr
			break
		}
		out = append(out, old)
	}

	return out, c.finishBatch(mode, err)
}

// Remove deletes the document with the given id and returns it, or nil when
// there is no such document
func (c *Collection[T, PT]) Remove(id int64, mode WriteMode) (PT, error) {
	removed, err := c.remove(id)
	if err != nil || removed == nil {
		return nil, err
	}

	if mode == Persist {
		if err := c.Persist(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// RemoveItem deletes the document having item's id. A nil item removes nothing.
func (c *Collection[T, PT]) RemoveItem(item PT, mode WriteMode) (PT, error) {
	if item == nil {
		return nil, nil
	}
	return c.Remove(item.PrimaryID(), mode)
}

// remove deletes the document in memory, putting it back if it went missing
// before the failure was detected
func (c *Collection[T, PT]) remove(id int64) (removed PT, err error) {
	slot, ok, err := c.locate(id)
	if err != nil {
		return nil, c.opError("remove", ErrRemoveFailed, id, err)
	}
	if !ok {
		return nil, nil
	}

	node, _ := c.docs.get(slot)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}
		if _, live := c.docs.get(slot); !live {
			c.docs.restore(slot, node)
		}
		removed = nil
		c.logger.Debug("remove rolled back", "generation", c.generation, "id", id, "error", err)
		err = c.opError("remove", ErrRemoveFailed, id, err)
	}()

	removed, err = decodeRecord[T, PT](node)
	if err != nil {
		return nil, err
	}
	c.index.remove(id)
	c.docs.release(slot)

	c.logger.Debug("removed document", "generation", c.generation, "id", id)
	return removed, nil
}

// RemoveMany removes each id in order and returns one entry per id, nil
// where nothing was removed. There is no batch rollback. Empty input
// returns nil.
func (c *Collection[T, PT]) RemoveMany(ids []int64, mode WriteMode) ([]PT, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]PT, 0, len(ids))
	var err error
	for _, id := range ids {
		removed, removeErr := c.remove(id)
		if removeErr != nil {
			err = removeErr
			break
		}
		out = append(out, removed)
	}

	return out, c.finishBatch(mode, err)
}

// RemoveManyItems removes the documents having the items' ids
func (c *Collection[T, PT]) RemoveManyItems(items []PT, mode WriteMode) ([]PT, error) {
	if len(items) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		if item != nil {
			ids[i] = item.PrimaryID()
		}
	}
	return c.RemoveMany(ids, mode)
}

// finishBatch persists after a batch when requested, including after a
// partial failure, so the prefix that succeeded reaches the file
func (c *Collection[T, PT]) finishBatch(mode WriteMode, err error) error {
	if mode == Persist {
		if persistErr := c.Persist(); persistErr != nil {
			return errors.Join(err, persistErr)
		}
	}
	return err
}
