package monitor

import (
	"sort"
	"strings"
	"time"

	"github.com/driftwatch/driftwatch/internal/remote"
	"github.com/driftwatch/driftwatch/internal/store"
)

// Diff classifies the current listing against the previous snapshot.
//
// detectionTime is the earliest modification time eligible for alerting:
//   - new: absent from the snapshot and modified at or after
//     detectionTime. An unseen path with an older mod time is absorbed
//     into state without an alert (first run against a pre-existing
//     tree, or a path surfacing after a filter change).
//   - modified: present in the snapshot with a strictly newer mod time
//     that also falls inside the window. The window condition stops a
//     stale mod time carried over from a missed cycle from re-alerting.
//   - deleted: present only in the snapshot and not a directory. A
//     vanished directory is implied by its children's deletions.
//
// failedSubtrees names directories the lister could not descend into
// this cycle; tracked paths under them are exempt from deletion
// classification, so a listing failure is never reported as a removal.
//
// A size change without a mod-time change is invisible here: mod time is
// the sole change signal.
//
// Pure and idempotent. New and Modified preserve listing order;
// Deleted is sorted by path since snapshot iteration order is random.
func Diff(current []remote.FileDescriptor, previous map[string]store.TrackedFile, detectionTime time.Time, failedSubtrees []remote.SubtreeError) ChangeSet {
	// Dedup by path: first occurrence keeps its position, the last
	// descriptor wins. Duplicates within one listing are a supplier
	// defect but must not produce duplicate alerts.
	order := make([]string, 0, len(current))
	currentByPath := make(map[string]remote.FileDescriptor, len(current))
	for _, fd := range current {
		if _, seen := currentByPath[fd.Path]; !seen {
			order = append(order, fd.Path)
		}
		currentByPath[fd.Path] = fd
	}

	var changes ChangeSet

	for _, path := range order {
		cur := currentByPath[path]
		prev, tracked := previous[path]
		if !tracked {
			if !cur.ModTime.Before(detectionTime) {
				changes.New = append(changes.New, ChangeEntry{Path: cur.Path, Size: cur.Size, Name: cur.Name})
			}
			continue
		}
		if cur.ModTime.After(prev.ModTime) && !cur.ModTime.Before(detectionTime) {
			changes.Modified = append(changes.Modified, ChangeEntry{Path: cur.Path, Size: cur.Size, Name: cur.Name})
		}
	}

	for path, prev := range previous {
		if _, present := currentByPath[path]; present {
			continue
		}
		if prev.IsDir {
			continue
		}
		if underFailedSubtree(path, failedSubtrees) {
			continue
		}
		changes.Deleted = append(changes.Deleted, ChangeEntry{Path: prev.Path, Size: prev.Size, Name: prev.Name})
	}
	sort.Slice(changes.Deleted, func(i, j int) bool {
		return changes.Deleted[i].Path < changes.Deleted[j].Path
	})

	return changes
}

func underFailedSubtree(path string, failed []remote.SubtreeError) bool {
	for _, f := range failed {
		if path == f.Path || strings.HasPrefix(path, f.Path+"/") {
			return true
		}
	}
	return false
}
