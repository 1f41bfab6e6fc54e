// Package roster holds the fixed subgroup membership table and lookups over it.
package roster

import (
	"sort"
)

// UnknownSubgroup is the sentinel attached to evaluated names that do not
// appear in the roster. Consolidation treats it as data, not as an error.
const UnknownSubgroup = "—"

// Roster is a fixed mapping from subgroup name to its ordered members.
// Every member name appears in exactly one subgroup.
type Roster struct {
	subgroups []string            // subgroup names, sorted
	members   map[string][]string // subgroup -> ordered member names
	bySubject map[string]string   // member name -> subgroup
}

// New builds a Roster from a subgroup->members mapping. Member order within a
// subgroup is preserved; subgroups are ordered by name.
func New(subgroups map[string][]string) *Roster {
	r := &Roster{
		members:   make(map[string][]string, len(subgroups)),
		bySubject: make(map[string]string),
	}
	for sg, names := range subgroups {
		r.subgroups = append(r.subgroups, sg)
		r.members[sg] = append([]string(nil), names...)
		for _, n := range names {
			r.bySubject[n] = sg
		}
	}
	sort.Strings(r.subgroups)
	return r
}

// Subgroups returns all subgroup names in display order.
func (r *Roster) Subgroups() []string {
	return append([]string(nil), r.subgroups...)
}

// Members returns the ordered members of a subgroup, or nil if unknown.
func (r *Roster) Members(subgroup string) []string {
	return append([]string(nil), r.members[subgroup]...)
}

// AllNames returns every member name, grouped by subgroup in display order.
func (r *Roster) AllNames() []string {
	var names []string
	for _, sg := range r.subgroups {
		names = append(names, r.members[sg]...)
	}
	return names
}

// SubgroupOf returns the subgroup a member belongs to.
// Returns ErrUnmappedName if the name is not in the roster.
func (r *Roster) SubgroupOf(name string) (string, error) {
	sg, ok := r.bySubject[name]
	if !ok {
		return "", ErrUnmappedName
	}
	return sg, nil
}

// SubgroupOrUnknown returns the member's subgroup, or UnknownSubgroup for
// names outside the roster. Used by consolidation, where a stray name in the
// answer file is data to surface rather than a failure.
func (r *Roster) SubgroupOrUnknown(name string) string {
	if sg, ok := r.bySubject[name]; ok {
		return sg
	}
	return UnknownSubgroup
}

// Peers returns the other members of name's subgroup, in roster order.
// Returns ErrUnmappedName if the name is not in the roster.
func (r *Roster) Peers(name string) ([]string, error) {
	sg, ok := r.bySubject[name]
	if !ok {
		return nil, ErrUnmappedName
	}
	var peers []string
	for _, n := range r.members[sg] {
		if n != name {
			peers = append(peers, n)
		}
	}
	return peers, nil
}
