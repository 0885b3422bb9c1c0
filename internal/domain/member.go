package domain

// DefaultUsername is used when a join carries no username.
const DefaultUsername = "Anonymous"

// Member represents a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	ID       ConnectionID
	Username string
}

// NewMember substitutes DefaultUsername for an empty name.
func NewMember(id ConnectionID, username string) Member {
	if username == "" {
		username = DefaultUsername
	}
	return Member{ID: id, Username: username}
}
