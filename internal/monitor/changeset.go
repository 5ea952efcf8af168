package monitor

// ChangeType classifies one detected difference between the current
// listing and the persisted snapshot. The values double as the
// change_type strings in the notification audit log.
type ChangeType string

const (
	ChangeNew      ChangeType = "new"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// ChangeEntry is one classified file. New and modified entries carry the
// current descriptor's attributes; deleted entries carry the last-known
// attributes from the snapshot, since no current descriptor exists.
type ChangeEntry struct {
	Path string
	Size int64
	Name string
}

// ChangeSet is the three-bucket result of one diff. New and Modified
// preserve listing order; Deleted is sorted by path.
type ChangeSet struct {
	New      []ChangeEntry
	Modified []ChangeEntry
	Deleted  []ChangeEntry
}

// Empty reports whether no changes were classified.
func (c ChangeSet) Empty() bool {
	return len(c.New) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// Total counts classified entries across all buckets.
func (c ChangeSet) Total() int {
	return len(c.New) + len(c.Modified) + len(c.Deleted)
}

// Bucket returns the entries classified under the given change type.
func (c ChangeSet) Bucket(t ChangeType) []ChangeEntry {
	switch t {
	case ChangeNew:
		return c.New
	case ChangeModified:
		return c.Modified
	case ChangeDeleted:
		return c.Deleted
	default:
		return nil
	}
}
