package auth

import "context"

type StoreAPI interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, user User) (int64, error)
	DeleteUser(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context) (int, error)
	UpdateAccess(ctx context.Context, id int64, permissions []string, branchIDs []int64) error
	HasPermission(ctx context.Context, userID int64, permission string) (bool, error)
}

var _ StoreAPI = (*Store)(nil)
