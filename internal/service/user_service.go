package service

import (
	"strings"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(userID uuid.UUID, actorID string) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers(q repository.UserQuery) ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	GetRoles() ([]model.Role, error)
	GetPrivileges() ([]model.Privilege, error)
	EnsureOwner(username, password string) (bool, error)
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required"`
	RoleID   uint    `json:"role_id" validate:"required"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	username := strings.ToLower(req.Username)
	if existing, _ := s.userRepo.FindByUsername(username); existing != nil {
		return nil, apperror.Conflict("username %s already exists", username)
	}

	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, lookupErr(err, "role")
	}

	user := &model.User{
		Username: username,
		FullName: req.FullName,
		RoleID:   &req.RoleID,
		IsActive: true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	// Privileges follow the role at creation time.
	user.Privileges = role.Privileges

	if err := s.userRepo.Create(user); err != nil {
		return nil, storeErr(err, "failed to create user %s", username)
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, lookupErr(err, "role")
	}

	roleChanged := user.RoleID == nil || *user.RoleID != req.RoleID
	user.FullName = req.FullName
	user.RoleID = &req.RoleID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, apperror.Internal(err, "failed to hash password")
		}
		// Force a fresh login everywhere.
		user.TokenVersion = uuid.New().String()
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, storeErr(err, "failed to update user %s", user.Username)
	}
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(userID, role.Privileges); err != nil {
			return nil, apperror.Internal(err, "failed to update privileges")
		}
	}

	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID, actorID string) error {
	if userID.String() == actorID {
		return apperror.InvalidState("you cannot delete your own account")
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return lookupErr(err, "user")
	}
	if err := s.userRepo.Delete(userID, actorID); err != nil {
		return apperror.Internal(err, "failed to delete user")
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}

	codes := uniqueCodes(privilegeCodes)
	privileges, err := s.privilegeRepo.FindByCodes(codes)
	if err != nil {
		return nil, apperror.Internal(err, "failed to find privileges")
	}
	if len(privileges) != len(codes) {
		return nil, apperror.NotFound("unknown privilege in %v", codes)
	}

	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, apperror.Internal(err, "failed to update privileges")
	}

	user.UpdatedBy = updaterID
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperror.Internal(err, "failed to update user")
	}

	return s.userRepo.FindByID(userID)
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func (s *userService) GetAllUsers(q repository.UserQuery) ([]model.UserResponse, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.RoleCode = strings.ToUpper(strings.TrimSpace(q.RoleCode))
	users, err := s.userRepo.FindAll(q)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list users")
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetRoles() ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll()
	if err != nil {
		return nil, apperror.Internal(err, "failed to list roles")
	}
	return roles, nil
}

func (s *userService) GetPrivileges() ([]model.Privilege, error) {
	privileges, err := s.privilegeRepo.FindAll()
	if err != nil {
		return nil, apperror.Internal(err, "failed to list privileges")
	}
	return privileges, nil
}

// EnsureOwner seeds privileges and roles, and creates an OWNER account when
// the shop has no users yet. It reports whether an account was created.
func (s *userService) EnsureOwner(username, password string) (bool, error) {
	if err := s.privilegeRepo.SeedDefaults(); err != nil {
		return false, apperror.Internal(err, "failed to seed privileges")
	}
	if err := s.roleRepo.SeedDefaults(); err != nil {
		return false, apperror.Internal(err, "failed to seed roles")
	}

	count, err := s.userRepo.Count()
	if err != nil {
		return false, apperror.Internal(err, "failed to count users")
	}
	if count > 0 {
		return false, nil
	}

	owner, err := s.roleRepo.FindByCode(model.RoleOwner)
	if err != nil {
		return false, lookupErr(err, "owner role")
	}
	_, err = s.CreateUser(&CreateUserRequest{
		Username: username,
		Password: password,
		FullName: "Pemilik Toko",
		RoleID:   owner.ID,
	}, SystemActor.ID)
	if err != nil {
		return false, err
	}
	return true, nil
}
