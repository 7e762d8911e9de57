package service

import (
	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	httperrors "equiprent/internal/errors"
	"equiprent/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Signup(req entities.SignupRequest) (*db.User, error)
	Login(email, password string) (string, error)
}

type authService struct {
	users     *repository.UserRepository
	jwtSecret string
}

func NewAuthService(users *repository.UserRepository, jwtSecret string) AuthService {
	return &authService{users: users, jwtSecret: jwtSecret}
}

func (s *authService) Signup(req entities.SignupRequest) (*db.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, httperrors.ErrValidation("email, password and name are required")
	}
	// Admins are provisioned out of band, never through signup.
	if req.Role != db.RoleRenter && req.Role != db.RoleVendor {
		return nil, httperrors.ErrValidation("role must be renter or vendor")
	}

	existing, err := s.users.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, httperrors.ErrValidation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", httperrors.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", httperrors.ErrUnauthorized("invalid credentials")
	}

	return auth.IssueToken(s.jwtSecret, user.ID, user.Email, user.Role)
}
