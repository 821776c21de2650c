// Package catalog holds the immutable definitions of events, levels and badges
// that drive XP accrual and badge awarding.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEvent is returned when an event id does not resolve in the catalog.
var ErrUnknownEvent = errors.New("unknown event")

// ErrInvalidCatalog is returned by New when the definitions break an invariant.
var ErrInvalidCatalog = errors.New("invalid catalog")

// EventID names a recordable user action, e.g. "application.created".
type EventID string

// Category groups events for display. It has no effect on scoring.
type Category string

const (
	CategoryProfile     Category = "profile"
	CategoryCV          Category = "cv"
	CategoryApplication Category = "application"
	CategoryInterview   Category = "interview"
	CategoryContact     Category = "contact"
	CategoryEngagement  Category = "engagement"
)

type Event struct {
	ID       EventID  `json:"id" toml:"id"`
	XPReward int      `json:"xpReward" toml:"xp_reward"`
	Category Category `json:"category" toml:"category"`
}

type Level struct {
	Order      int    `json:"order" toml:"order"`
	RequiredXP int    `json:"requiredXp" toml:"required_xp"`
	Name       string `json:"name" toml:"name"`
	Title      string `json:"title" toml:"title"`
}

// Requirement is one clause of a badge: the user must have recorded EventID at
// least Count times.
type Requirement struct {
	EventID EventID `json:"eventId" toml:"event_id"`
	Count   int     `json:"requiredCount" toml:"count"`
}

type Badge struct {
	ID           string        `json:"id" toml:"id"`
	Name         string        `json:"name" toml:"name"`
	Description  string        `json:"description" toml:"description"`
	Icon         string        `json:"icon" toml:"icon"`
	Requirements []Requirement `json:"requirements" toml:"requirements"`
}

// Catalog is a read-only registry. It is safe for concurrent use once built.
type Catalog struct {
	events     []Event
	eventIndex map[EventID]int
	levels     []Level
	badges     []Badge
	badgeIndex map[string]int
}

// New validates the definitions and builds a Catalog. Levels are sorted by
// order; events and badges keep the order they were given in.
func New(events []Event, levels []Level, badges []Badge) (*Catalog, error) {
	c := &Catalog{
		events:     append([]Event(nil), events...),
		eventIndex: make(map[EventID]int, len(events)),
		levels:     append([]Level(nil), levels...),
		badges:     make([]Badge, 0, len(badges)),
		badgeIndex: make(map[string]int, len(badges)),
	}

	for i, e := range c.events {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: event #%d has an empty id", ErrInvalidCatalog, i)
		}
		if e.XPReward < 0 {
			return nil, fmt.Errorf("%w: event %s has a negative xp reward", ErrInvalidCatalog, e.ID)
		}
		if _, dup := c.eventIndex[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate event %s", ErrInvalidCatalog, e.ID)
		}
		c.eventIndex[e.ID] = i
	}

	if len(c.levels) == 0 {
		return nil, fmt.Errorf("%w: no levels defined", ErrInvalidCatalog)
	}
	sort.Slice(c.levels, func(i, j int) bool { return c.levels[i].Order < c.levels[j].Order })
	if c.levels[0].Order != 1 || c.levels[0].RequiredXP != 0 {
		return nil, fmt.Errorf("%w: level 1 must exist and require 0 xp", ErrInvalidCatalog)
	}
	for i := 1; i < len(c.levels); i++ {
		prev, cur := c.levels[i-1], c.levels[i]
		if cur.Order == prev.Order {
			return nil, fmt.Errorf("%w: duplicate level order %d", ErrInvalidCatalog, cur.Order)
		}
		if cur.RequiredXP <= prev.RequiredXP {
			return nil, fmt.Errorf("%w: level %d must require more xp than level %d", ErrInvalidCatalog, cur.Order, prev.Order)
		}
	}

	for _, b := range badges {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: badge with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.badgeIndex[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate badge %s", ErrInvalidCatalog, b.ID)
		}
		if len(b.Requirements) == 0 {
			return nil, fmt.Errorf("%w: badge %s has no requirements", ErrInvalidCatalog, b.ID)
		}
		for _, r := range b.Requirements {
			if _, ok := c.eventIndex[r.EventID]; !ok {
				return nil, fmt.Errorf("%w: badge %s requires unknown event %s", ErrInvalidCatalog, b.ID, r.EventID)
			}
			if r.Count < 1 {
				return nil, fmt.Errorf("%w: badge %s requires %s less than once", ErrInvalidCatalog, b.ID, r.EventID)
			}
		}
		b.Requirements = append([]Requirement(nil), b.Requirements...)
		c.badgeIndex[b.ID] = len(c.badges)
		c.badges = append(c.badges, b)
	}

	return c, nil
}

// Event returns the definition for id.
func (c *Catalog) Event(id EventID) (Event, bool) {
	i, ok := c.eventIndex[id]
	if !ok {
		return Event{}, false
	}
	return c.events[i], true
}

// ParseEventID converts raw input into an EventID, rejecting ids that are not
// part of the catalog.
func (c *Catalog) ParseEventID(raw string) (EventID, error) {
	id := EventID(raw)
	if _, ok := c.eventIndex[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, raw)
	}
	return id, nil
}

func (c *Catalog) Events() []Event {
	return append([]Event(nil), c.events...)
}

func (c *Catalog) Levels() []Level {
	return append([]Level(nil), c.levels...)
}

func (c *Catalog) LevelByOrder(order int) (Level, bool) {
	for _, l := range c.levels {
		if l.Order == order {
			return l, true
		}
	}
	return Level{}, false
}

// MaxLevel returns the capped level.
func (c *Catalog) MaxLevel() Level {
	return c.levels[len(c.levels)-1]
}

// CurrentLevel returns the highest level whose threshold is <= xp. XP below
// every threshold maps to level 1.
func (c *Catalog) CurrentLevel(xp int) Level {
	current := c.levels[0]
	for _, l := range c.levels[1:] {
		if l.RequiredXP > xp {
			break
		}
		current = l
	}
	return current
}

// NextLevel returns the level following CurrentLevel(xp), or nil at the cap.
func (c *Catalog) NextLevel(xp int) *Level {
	for _, l := range c.levels {
		if l.RequiredXP > xp {
			next := l
			return &next
		}
	}
	return nil
}

// LevelProgressPercent reports how far xp is through its level band, in [0,100].
func (c *Catalog) LevelProgressPercent(xp int) float64 {
	next := c.NextLevel(xp)
	if next == nil {
		return 100
	}
	current := c.CurrentLevel(xp)
	band := next.RequiredXP - current.RequiredXP
	return clampPercent(float64(xp-current.RequiredXP) / float64(band) * 100)
}

func (c *Catalog) Badges() []Badge {
	out := make([]Badge, len(c.badges))
	for i, b := range c.badges {
		b.Requirements = append([]Requirement(nil), b.Requirements...)
		out[i] = b
	}
	return out
}

func (c *Catalog) Badge(id string) (Badge, bool) {
	i, ok := c.badgeIndex[id]
	if !ok {
		return Badge{}, false
	}
	b := c.badges[i]
	b.Requirements = append([]Requirement(nil), b.Requirements...)
	return b, true
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
