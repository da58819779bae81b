package auth

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	Permissions  []string  `json:"permissions"`
	BranchIDs    []int64   `json:"branchIds"`
	CreatedAt    time.Time `json:"createdAt"`
}
