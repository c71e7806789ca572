package alarm

// Actor identifies the operator station that issued a command.
type Actor struct {
	// Hostname is the machine name of the operator station.
	Hostname string
	// Username is the system user logged in at the station.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}
