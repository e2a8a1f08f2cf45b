package model

// Kind names an entity in the ownership chain User → Broker → Konto → Position.
type Kind int

const (
	KindUser Kind = iota
	KindBroker
	KindKonto
	KindPosition
)

// Parent returns the kind one step closer to the owning user.
func (k Kind) Parent() Kind {
	if k <= KindUser {
		return KindUser
	}
	return k - 1
}

// Depth is the number of parent links between an entity and its user.
func (k Kind) Depth() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindBroker:
		return "broker"
	case KindKonto:
		return "konto"
	case KindPosition:
		return "position"
	default:
		return "unknown"
	}
}
