package tree

// PathMap holds the library-relative path recorded for each materialized
// identity and every container above it.
type PathMap struct {
	paths map[ID]string
}

// NewPathMap returns an empty path map.
func NewPathMap() *PathMap {
	return &PathMap{paths: make(map[ID]string)}
}

// Set records path for id, replacing any earlier value.
func (m *PathMap) Set(id ID, path string) {
	m.paths[id] = path
}

// Lookup returns the recorded path for id.
func (m *PathMap) Lookup(id ID) (string, bool) {
	p, ok := m.paths[id]
	return p, ok
}

// Len returns the number of recorded paths.
func (m *PathMap) Len() int {
	return len(m.paths)
}

// State owns all mutable crawl structures for one run.
type State struct {
	Registry   *Registry
	Duplicates *DuplicateTracker
	Pending    *Queue
	Downloads  *Queue
	Paths      *PathMap
}

// NewState returns an empty run state.
func NewState() *State {
	return &State{
		Registry:   NewRegistry(),
		Duplicates: NewDuplicateTracker(),
		Pending:    &Queue{},
		Downloads:  &Queue{},
		Paths:      NewPathMap(),
	}
}

// NodeRecord is the flattened view of one registered identity.
type NodeRecord struct {
	ID     ID
	Title  string
	Parent ID
	Path   string
}

// DuplicateRecord is the flattened rediscovery list of one identity.
type DuplicateRecord struct {
	ID      ID
	Parents []ID
}

// Snapshot is a point-in-time copy of the registry, duplicates and paths.
type Snapshot struct {
	Nodes      []NodeRecord
	Duplicates []DuplicateRecord
}

// Snapshot copies the current state in registration and discovery order.
func (s *State) Snapshot() Snapshot {
	var snap Snapshot
	for _, id := range s.Registry.IDs() {
		placement, _ := s.Registry.Lookup(id)
		path, _ := s.Paths.Lookup(id)
		snap.Nodes = append(snap.Nodes, NodeRecord{ID: id, Title: placement.Title, Parent: placement.Parent, Path: path})
	}
	for _, id := range s.Duplicates.IDs() {
		snap.Duplicates = append(snap.Duplicates, DuplicateRecord{ID: id, Parents: s.Duplicates.Parents(id)})
	}
	return snap
}
