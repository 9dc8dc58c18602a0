package entity

// Kind identifies the concrete actor type behind an id.
type Kind string

const (
	KindPlayer     Kind = "player"
	KindMob        Kind = "mob"
	KindNPC        Kind = "npc"
	KindPet        Kind = "pet"
	KindProjectile Kind = "projectile"
	KindItem       Kind = "item"
	KindChest      Kind = "chest"
)

// ParseKind normalises a wire value. Unknown kinds are treated as npcs, which
// neither fight nor move on their own.
func ParseKind(value string) Kind {
	switch Kind(value) {
	case KindPlayer, KindMob, KindNPC, KindPet, KindProjectile, KindItem, KindChest:
		return Kind(value)
	default:
		return KindNPC
	}
}

// Combatant reports whether the kind plays a death animation before removal.
func (k Kind) Combatant() bool {
	switch k {
	case KindPlayer, KindMob, KindPet:
		return true
	default:
		return false
	}
}

// Mobile reports whether actors of this kind can path.
func (k Kind) Mobile() bool {
	switch k {
	case KindItem, KindChest:
		return false
	default:
		return true
	}
}
