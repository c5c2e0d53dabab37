// Package memory is the perception store a creature's senses write into and
// its beliefs read from. Records are grouped by category (what the observed
// thing means to this creature) and keyed by entity ID.
package memory

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/goap-creatures/internal/world"
)

const (
	// DefaultRetention is how long an unrefreshed record survives a Flush.
	DefaultRetention = 600 * time.Second
	// RecentlySeenWindow is the age under which a record counts as fresh.
	RecentlySeenWindow = 3 * time.Second
)

// EntityID identifies anything a creature can observe.
type EntityID = uuid.UUID

// Category classifies an observed entity from the observer's point of view.
type Category uint8

const (
	CategoryShelter         Category = iota // A shelter
	CategoryPredator                        // Something hunting the observer
	CategoryDynamicCreature                 // Neither prey nor predator
	CategoryFood                            // Valid food
	CategoryDangerObject                    // Dangerous non-creature
	CategoryDynamicObject                   // Non-creature of unknown safety
	CategoryNothing                         // Unclassified
)

var categoryNames = [...]string{"shelter", "predator", "dynamic_creature", "food", "danger_object", "dynamic_object", "nothing"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Record is what a creature remembers about one entity.
type Record struct {
	ID       EntityID      `json:"id"`
	Kind     Kind          `json:"kind"`
	Position world.Vec3    `json:"position"`
	Seen     time.Duration `json:"seen"` // Sim time of the last sighting
}

// Memory stores sightings for one creature.
type Memory struct {
	Retention time.Duration

	records      map[Category]map[EntityID]*Record
	interactions map[Kind]Category

	// Target is the record found by the last search, if any.
	Target *Record
	// SavedShelter is the shelter this creature has decided to use.
	SavedShelter *Record

	searching bool
	search    Category
}

// New creates an empty memory for an observer of the given kind.
func New(observer Kind) *Memory {
	return &Memory{
		Retention:    DefaultRetention,
		records:      make(map[Category]map[EntityID]*Record),
		interactions: InteractionTemplates[observer],
	}
}

// Classify maps an observed kind to a category for this observer.
func (m *Memory) Classify(kind Kind) Category {
	if c, ok := m.interactions[kind]; ok {
		return c
	}
	return CategoryNothing
}

// Observe adds or refreshes the record for id. If a search for this category
// is active, the record becomes the target and the search ends. The first
// shelter seen while none is saved is adopted.
func (m *Memory) Observe(id EntityID, kind Kind, pos world.Vec3, now time.Duration) {
	category := m.Classify(kind)

	byID, ok := m.records[category]
	if !ok {
		byID = make(map[EntityID]*Record)
		m.records[category] = byID
	}

	rec, ok := byID[id]
	if ok {
		rec.Position = pos
		rec.Seen = now
	} else {
		rec = &Record{ID: id, Kind: kind, Position: pos, Seen: now}
		byID[id] = rec
	}

	if category == CategoryShelter && !m.ShelterValid() {
		m.SavedShelter = rec
	}
	if m.searching && category == m.search {
		m.Target = rec
		m.searching = false
	}
}

// SetSearch clears the current target and starts looking for category.
func (m *Memory) SetSearch(category Category) {
	m.Target = nil
	m.search = category
	m.searching = true
}

// Searching reports whether a search is in progress and for what.
func (m *Memory) Searching() (Category, bool) {
	return m.search, m.searching
}

// Latest returns the most recently seen record in category, or nil.
func (m *Memory) Latest(category Category) *Record {
	var latest *Record
	for _, rec := range m.records[category] {
		// Ties go to the lower ID so map order never leaks into results.
		if latest == nil || rec.Seen > latest.Seen ||
			(rec.Seen == latest.Seen && bytes.Compare(rec.ID[:], latest.ID[:]) < 0) {
			latest = rec
		}
	}
	return latest
}

// LatestTimestamp returns the sighting time of the most recent record in
// category. ok is false when nothing in that category is remembered.
func (m *Memory) LatestTimestamp(category Category) (seen time.Duration, ok bool) {
	rec := m.Latest(category)
	if rec == nil {
		return 0, false
	}
	return rec.Seen, true
}

// All returns every record in category.
func (m *Memory) All(category Category) []*Record {
	byID := m.records[category]
	out := make([]*Record, 0, len(byID))
	for _, rec := range byID {
		out = append(out, rec)
	}
	return out
}

// Count returns the number of remembered records across all categories.
func (m *Memory) Count() int {
	n := 0
	for _, byID := range m.records {
		n += len(byID)
	}
	return n
}

// Flush drops records not refreshed within the retention window, along with
// any target or shelter that pointed at them.
func (m *Memory) Flush(now time.Duration) int {
	retention := m.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	removed := 0
	for _, byID := range m.records {
		for id, rec := range byID {
			if rec.Seen+retention < now {
				delete(byID, id)
				removed++
				if m.Target == rec {
					m.Target = nil
				}
				if m.SavedShelter == rec {
					m.SavedShelter = nil
				}
			}
		}
	}
	return removed
}

// Forget removes id from every category and drops any target or shelter
// that pointed at it.
func (m *Memory) Forget(id EntityID) {
	for _, byID := range m.records {
		delete(byID, id)
	}
	if m.Target != nil && m.Target.ID == id {
		m.Target = nil
	}
	if m.SavedShelter != nil && m.SavedShelter.ID == id {
		m.SavedShelter = nil
	}
}

// TargetValid reports whether a search has produced a usable target.
func (m *Memory) TargetValid() bool {
	return m.Target != nil && m.Target.ID != uuid.Nil
}

// ClearTarget drops the current target.
func (m *Memory) ClearTarget() {
	m.Target = nil
}

// ShelterValid reports whether a shelter has been adopted.
func (m *Memory) ShelterValid() bool {
	return m.SavedShelter != nil && m.SavedShelter.ID != uuid.Nil
}

// RecentlySeen reports whether rec was sighted within RecentlySeenWindow of now.
func RecentlySeen(rec *Record, now time.Duration) bool {
	return rec != nil && now-rec.Seen < RecentlySeenWindow
}
