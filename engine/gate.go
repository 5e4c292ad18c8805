package engine

// Mode is the access-gated rendering mode.
type Mode int

const (
	// ModeResolving means the caller's address is not known yet;
	// nothing should be rendered.
	ModeResolving Mode = iota
	// ModeLoading means the membership reads have not produced a first
	// value.
	ModeLoading
	// ModeNoAccess shows the request-access surface with the trigger
	// enabled.
	ModeNoAccess
	// ModePending shows the request-access surface with the pending
	// notice and no trigger.
	ModePending
	// ModeMember shows the message stream and composer.
	ModeMember
)

func (m Mode) String() string {
	switch m {
	case ModeResolving:
		return "resolving"
	case ModeLoading:
		return "loading"
	case ModeNoAccess:
		return "no-access"
	case ModePending:
		return "pending"
	case ModeMember:
		return "member"
	}
	return "unknown"
}

// Gate derives the rendering mode from a snapshot. Confirmed membership
// wins over a (transiently) still-true pending flag: the two underlying
// reads poll independently, so both can briefly be true at once.
func Gate(s Snapshot) Mode {
	switch {
	case !s.AddressResolved:
		return ModeResolving
	case s.IsLoading:
		return ModeLoading
	case s.IsMember:
		return ModeMember
	case s.IsPending:
		return ModePending
	default:
		return ModeNoAccess
	}
}

// ShowAdminPanel reports whether the member surface should also expose
// the member/pending management panel.
func ShowAdminPanel(s Snapshot) bool {
	return s.IsOwner || len(s.PendingMembers) > 0
}
