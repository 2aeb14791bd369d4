package domain

import "auction-engine/pkg/utils"

// User participates as auction owner or bidder. Back-references from users
// to their auctions and bids live in storage queries, never here.
type User struct {
	ID          string
	DisplayName string
}

func NewUser(displayName string) *User {
	return &User{
		ID:          utils.GenerateID("user"),
		DisplayName: displayName,
	}
}
