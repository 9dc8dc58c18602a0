package entity

import "sort"

// Roster owns every character known to the client, keyed by id. Other layers
// refer to characters by id and borrow them through Get for the current frame.
type Roster struct {
	characters map[string]*Character
	localID    string
}

// NewRoster constructs an empty roster.
func NewRoster() *Roster {
	return &Roster{characters: make(map[string]*Character)}
}

// Add inserts or replaces a character.
func (r *Roster) Add(c *Character) {
	if r == nil || c == nil || c.ID() == "" {
		return
	}
	r.characters[c.ID()] = c
}

// Get looks up a character by id.
func (r *Roster) Get(id string) (*Character, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.characters[id]
	return c, ok
}

// Has reports whether id is known.
func (r *Roster) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Remove deletes a character. The local player cannot be removed this way.
func (r *Roster) Remove(id string) (*Character, bool) {
	if r == nil || id == "" || id == r.localID {
		return nil, false
	}
	c, ok := r.characters[id]
	if !ok {
		return nil, false
	}
	delete(r.characters, id)
	return c, true
}

// SetLocal marks id as the player controlled by this client.
func (r *Roster) SetLocal(id string) {
	if r == nil {
		return
	}
	r.localID = id
}

// LocalID returns the id of the local player.
func (r *Roster) LocalID() string {
	if r == nil {
		return ""
	}
	return r.localID
}

// IsLocal reports whether id is the local player.
func (r *Roster) IsLocal(id string) bool {
	return r != nil && id != "" && id == r.localID
}

// Local returns the local player, if spawned.
func (r *Roster) Local() (*Character, bool) {
	if r == nil || r.localID == "" {
		return nil, false
	}
	return r.Get(r.localID)
}

// IDs returns every known id in sorted order.
func (r *Roster) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.characters))
	for id := range r.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of known characters.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.characters)
}

// Each visits characters in id order.
func (r *Roster) Each(fn func(*Character)) {
	if r == nil || fn == nil {
		return
	}
	for _, id := range r.IDs() {
		fn(r.characters[id])
	}
}
