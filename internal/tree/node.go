package tree

// ID is the extractor-assigned identity of a media item or container. The
// same ID reached through two containers is the same logical item.
type ID string

// None is the parent of a configured root.
const None ID = ""

// Node is the decoded form of one extractor response: either a Leaf or a
// Container.
type Node interface {
	Identity() ID
	DisplayTitle() string
	isNode()
}

// Leaf is a single downloadable media item.
type Leaf struct {
	ID    ID
	Title string
	URL   string
}

func (l Leaf) Identity() ID         { return l.ID }
func (l Leaf) DisplayTitle() string { return l.Title }
func (Leaf) isNode()                {}

// Container groups child references (playlist, channel tab, page).
type Container struct {
	ID      ID
	Title   string
	URL     string
	Entries []Ref
}

func (c Container) Identity() ID         { return c.ID }
func (c Container) DisplayTitle() string { return c.Title }
func (Container) isNode()                {}

// Ref describes a child as listed by its container, before expansion. It is
// also the unit held by the work and download queues.
type Ref struct {
	ID    ID
	Title string
	URL   string
}

// Download reports one item the extractor finished writing to staging.
type Download struct {
	ID       ID
	FilePath string
	Ext      string
}
