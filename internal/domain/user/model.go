package user

import "fmt"

// Principal is the authenticated caller resolved from a bearer token.
// ExternalID is the opaque identifier issued by the account service;
// ID is the internal numeric id every market operation works with.
type Principal struct {
	ID         int64
	ExternalID string
	Email      string
}

// User is a registered league participant.
type User struct {
	ID         int64
	ExternalID string
	UserName   string
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("user id is required")
	}
	if u.UserName == "" {
		return fmt.Errorf("user name is required")
	}

	return nil
}
