package domain

// UnitKind names the variant of a TravelUnit.
type UnitKind string

const (
	KindHub             UnitKind = "hub"
	KindSingleton       UnitKind = "singleton"
	KindMatchedGroup    UnitKind = "matched_group"
	KindChaperonedGroup UnitKind = "chaperoned_group"
)

// TravelUnit is one vehicle stop sequence handed to the solver: the hub, a
// lone escort-eligible person, or a group visited consecutively.
//
// The set of implementations is closed; the unexported marker keeps other
// packages from adding variants.
type TravelUnit interface {
	Kind() UnitKind
	ID() string
	// Members in visitation order.
	Members() []Person
	// Demand is the number of seats the unit consumes.
	Demand() int
	// InternalSeconds is the service and travel time spent inside the unit,
	// excluding travel to or from other units.
	InternalSeconds() float64
	// EntryIndex and ExitIndex are raw-matrix indices of the first and last member.
	EntryIndex() int
	ExitIndex() int

	travelUnit()
}

// Hub is always unit 0.
type Hub struct{}

func (Hub) Kind() UnitKind { return KindHub }
func (Hub) ID() string { return "HUB" }
func (Hub) Members() []Person { return nil }
func (Hub) Demand() int { return 0 }
func (Hub) InternalSeconds() float64 { return 0 }
func (Hub) EntryIndex() int { return 0 }
func (Hub) ExitIndex() int { return 0 }
func (Hub) travelUnit() {}

// Singleton carries one escort-eligible person travelling alone.
type Singleton struct {
	Person Person
}

func (s Singleton) Kind() UnitKind { return KindSingleton }
func (s Singleton) ID() string { return "Single_" + s.Person.ID }
func (s Singleton) Members() []Person { return []Person{s.Person} }
func (s Singleton) Demand() int { return 1 }
func (s Singleton) InternalSeconds() float64 { return 0 }
func (s Singleton) EntryIndex() int { return s.Person.Index }
func (s Singleton) ExitIndex() int { return s.Person.Index }
func (s Singleton) travelUnit() {}

// MatchedGroup holds escort-requiring riders ordered nearest-to-hub first,
// followed by the escort who closes the unit.
type MatchedGroup struct {
	Riders   []Person
	Escort   Person
	Internal float64
}

func (g MatchedGroup) Kind() UnitKind { return KindMatchedGroup }
func (g MatchedGroup) ID() string { return "Group_" + g.Escort.ID }

func (g MatchedGroup) Members() []Person {
	out := make([]Person, 0, len(g.Riders)+1)
	out = append(out, g.Riders...)
	return append(out, g.Escort)
}

func (g MatchedGroup) Demand() int { return len(g.Riders) + 1 }
func (g MatchedGroup) InternalSeconds() float64 { return g.Internal }
func (g MatchedGroup) EntryIndex() int { return g.Riders[0].Index }
func (g MatchedGroup) ExitIndex() int { return g.Escort.Index }
func (g MatchedGroup) travelUnit() {}

// ChaperonedGroup holds escort-requiring riders travelling with a paid
// chaperone. The chaperone is not a roster person but occupies a seat.
type ChaperonedGroup struct {
	Riders   []Person
	Internal float64
}

func (g ChaperonedGroup) Kind() UnitKind { return KindChaperonedGroup }
func (g ChaperonedGroup) ID() string { return "GuardedGroup_" + g.Riders[0].ID }
func (g ChaperonedGroup) Members() []Person { return append([]Person(nil), g.Riders...) }
func (g ChaperonedGroup) Demand() int { return len(g.Riders) + 1 }
func (g ChaperonedGroup) InternalSeconds() float64 { return g.Internal }
func (g ChaperonedGroup) EntryIndex() int { return g.Riders[0].Index }
func (g ChaperonedGroup) ExitIndex() int { return g.Riders[len(g.Riders)-1].Index }
func (g ChaperonedGroup) travelUnit() {}

// IsGroup reports whether a unit holds more than one visit.
func IsGroup(u TravelUnit) bool {
	k := u.Kind()
	return k == KindMatchedGroup || k == KindChaperonedGroup
}
