package models

// Identity is supplied by the auth collaborator. The zero value is a guest.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Key is the partition key for cart storage and remote sync: the id when
// present, the email otherwise, empty for guests.
func (i Identity) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Email
}

func (i Identity) IsGuest() bool {
	return i.Key() == ""
}
