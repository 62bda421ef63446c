package tree

// DuplicateTracker records, per identity, every container that rediscovered
// it after its first placement. A None parent means a configured root URL
// resolved to an identity that was already known.
type DuplicateTracker struct {
	parents map[ID][]ID
	order   []ID
}

// NewDuplicateTracker returns an empty tracker.
func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{parents: make(map[ID][]ID)}
}

// Record appends parent to the rediscovery list of id.
func (d *DuplicateTracker) Record(id, parent ID) {
	if _, ok := d.parents[id]; !ok {
		d.order = append(d.order, id)
	}
	d.parents[id] = append(d.parents[id], parent)
}

// Parents returns the rediscovery parents of id in discovery order.
func (d *DuplicateTracker) Parents(id ID) []ID {
	return append([]ID(nil), d.parents[id]...)
}

// Has reports whether id was rediscovered at least once.
func (d *DuplicateTracker) Has(id ID) bool {
	_, ok := d.parents[id]
	return ok
}

// IDs returns duplicated identities in the order of their first rediscovery.
func (d *DuplicateTracker) IDs() []ID {
	return append([]ID(nil), d.order...)
}

// Len returns the number of duplicated identities.
func (d *DuplicateTracker) Len() int {
	return len(d.order)
}
