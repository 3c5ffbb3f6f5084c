package models

// Member is a person inside a group.
type Member struct {
	// ID is stable for the member's lifetime in the group.
	ID string

	// Name is the display name (e.g., "Asha").
	Name string
}

// Group owns a set of unique members and the currency all of its expenses
// and settlements are recorded in.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Goa Trip").
	Name string

	// Currency is the ISO 4217 code of the group (e.g., "INR").
	Currency string

	// Members in the order they were added. Order matters: remainders of
	// split rounding and optimizer ties follow it.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether id belongs to the group.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberIDs returns the member IDs in group order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// MemberName returns the display name for id, or id itself when the member
// is unknown.
func MemberName(members []Member, id string) string {
	for _, m := range members {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}
