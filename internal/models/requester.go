package models

// Requester is the identity a request acts as. The zero value is anonymous.
type Requester struct {
	UserID   uint
	IsAuthor bool
}

// Anonymous returns the unauthenticated requester.
func Anonymous() Requester {
	return Requester{}
}

// IsAnonymous reports whether no user is attached.
func (r Requester) IsAnonymous() bool {
	return r.UserID == 0
}

// Owns reports whether the requester is the given author.
func (r Requester) Owns(authorID uint) bool {
	return !r.IsAnonymous() && r.UserID == authorID
}
