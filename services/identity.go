package services

import "regexp"

// Identity selects the owner of an attempt: exactly one of PlayerID
// (internal player UUID) or AnonymousID (client-generated token) is set.
type Identity struct {
	PlayerID    string
	AnonymousID string
}

func PlayerIdentity(playerID string) Identity {
	return Identity{PlayerID: playerID}
}

func AnonymousIdentity(anonymousID string) Identity {
	return Identity{AnonymousID: anonymousID}
}

func (i Identity) Valid() bool {
	return (i.PlayerID != "") != (i.AnonymousID != "")
}

var anonymousIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{6,128}$`)

// SanitizeAnonymousID returns the trimmed token when it is well-formed,
// otherwise an empty string
func SanitizeAnonymousID(input string) string {
	if anonymousIDPattern.MatchString(input) {
		return input
	}
	return ""
}
