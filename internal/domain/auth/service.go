package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type NewUser struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	IsAdmin     bool     `json:"isAdmin"`
	Permissions []string `json:"permissions"`
	BranchIDs   []int64  `json:"branchIds"`
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.Store.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, s.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

// ScopeFor reloads the user so permission edits apply without a new token.
func (s *Service) ScopeFor(ctx context.Context, userID int64) (Scope, error) {
	user, err := s.Store.UserByID(ctx, userID)
	if err != nil {
		return Scope{}, err
	}
	return user.Scope(), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (User, error) {
	for _, perm := range in.Permissions {
		if !IsKnownPermission(perm) {
			return User{}, ErrUnknownPermission
		}
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	user := User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		Permissions:  in.Permissions,
		BranchIDs:    in.BranchIDs,
	}
	id, err := s.Store.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.ID = id
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.Store.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		admins, err := s.Store.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	return s.Store.DeleteUser(ctx, id)
}

func (s *Service) SetAccess(ctx context.Context, actor Scope, id int64, permissions []string, branchIDs []int64) error {
	if !actor.IsAdmin {
		return ErrAdminRequired
	}
	for _, perm := range permissions {
		if !IsKnownPermission(perm) {
			return ErrUnknownPermission
		}
	}
	return s.Store.UpdateAccess(ctx, id, permissions, branchIDs)
}

func (s *Service) HasPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	return s.Store.HasPermission(ctx, userID, permission)
}
