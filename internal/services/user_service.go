package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"pilotos_api/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// CreateUserInput is the body of POST /usuarios.
type CreateUserInput struct {
	Nome               string  `json:"nome" form:"nome" binding:"required,max=255"`
	Email              string  `json:"email" form:"email" binding:"required,email,max=255"`
	Senha              *string `json:"senha" form:"senha"`
	Tipo               *string `json:"tipo" form:"tipo"`
	MustChangePassword *bool   `json:"must_change_password" form:"must_change_password"`
}

// UpdateUserInput is the body of PUT/PATCH /usuarios/{id}; nil fields are kept.
type UpdateUserInput struct {
	Nome               *string `json:"nome" form:"nome" binding:"omitempty,max=255"`
	Email              *string `json:"email" form:"email" binding:"omitempty,email,max=255"`
	Senha              *string `json:"senha" form:"senha"`
	Tipo               *string `json:"tipo" form:"tipo"`
	MustChangePassword *bool   `json:"must_change_password" form:"must_change_password"`
	IsActive           *bool   `json:"is_active" form:"is_active"`
}

type UserListParams struct {
	Search  string
	Page    int
	PerPage int
}

// UserPage is one page of the user listing.
type UserPage struct {
	Data        []models.User `json:"data"`
	CurrentPage int           `json:"current_page"`
	PerPage     int           `json:"per_page"`
	Total       int64         `json:"total"`
	LastPage    int           `json:"last_page"`
}

// UserService administers accounts. Callers are expected to have checked
// the ADMIN role already.
type UserService struct {
	db              *gorm.DB
	defaultPassword string
}

func NewUserService(db *gorm.DB, defaultPassword string) *UserService {
	return &UserService{db: db, defaultPassword: defaultPassword}
}

// List pages through users ordered by name, optionally filtered by a
// case-insensitive substring of name or email.
func (s *UserService) List(ctx context.Context, p UserListParams) (*UserPage, error) {
	perPage := p.PerPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	perPage = max(1, min(perPage, maxPerPage))
	page := max(1, p.Page)

	q := s.db.WithContext(ctx).Model(&models.User{})
	if term := strings.ToLower(strings.TrimSpace(p.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(nome) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	// shared by the count and the page query
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	users := []models.User{}
	err := q.Order("nome ASC").Order("id ASC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	return &UserPage{
		Data:        users,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    max(1, lastPage),
	}, nil
}

// Create registers an account. When no password is given one is
// provisioned, the forced-change flag is set and the plain password is
// returned so it can be handed to the user.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, string, error) {
	email := normalizeEmail(in.Email)
	verr := &ValidationError{}

	role := models.RoleUser
	if in.Tipo != nil && strings.TrimSpace(*in.Tipo) != "" {
		r, ok := NormalizeRole(*in.Tipo)
		if !ok {
			verr.Add("tipo", "must be one of ADMIN, FISCAL, USER")
		}
		role = r
	}

	taken, err := s.emailTaken(ctx, email, 0)
	if err != nil {
		return nil, "", err
	}
	if taken {
		verr.Add("email", "email is already in use")
	}

	var plain, tempPassword string
	mustChange := false
	if in.Senha != nil && *in.Senha != "" {
		plain = *in.Senha
		for _, msg := range PasswordProblems(plain) {
			verr.Add("senha", msg)
		}
	} else {
		plain, err = provisionPassword(s.defaultPassword)
		if err != nil {
			return nil, "", err
		}
		tempPassword = plain
		mustChange = true
	}
	if in.MustChangePassword != nil {
		mustChange = *in.MustChangePassword
	}

	if err := verr.Err(); err != nil {
		return nil, "", err
	}

	hash, err := hashPassword(plain)
	if err != nil {
		return nil, "", err
	}
	user := models.User{
		Nome:               strings.TrimSpace(in.Nome),
		Email:              email,
		SenhaHash:          hash,
		Tipo:               role,
		IsActive:           true,
		MustChangePassword: mustChange,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, "", fieldError("email", "email is already in use")
		}
		return nil, "", err
	}
	return &user, tempPassword, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

// Update applies the non-nil fields of in. A new password clears the
// forced-change flag unless the flag is also set explicitly.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if in.Nome != nil {
		user.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		taken, err := s.emailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("email", "email is already in use")
		}
		user.Email = email
	}
	if in.Tipo != nil {
		role, ok := NormalizeRole(*in.Tipo)
		if !ok {
			verr.Add("tipo", "must be one of ADMIN, FISCAL, USER")
		}
		user.Tipo = role
	}
	if in.Senha != nil {
		for _, msg := range PasswordProblems(*in.Senha) {
			verr.Add("senha", msg)
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if in.Senha != nil {
		hash, err := hashPassword(*in.Senha)
		if err != nil {
			return nil, err
		}
		user.SenhaHash = hash
		user.MustChangePassword = false
	}
	if in.MustChangePassword != nil {
		user.MustChangePassword = *in.MustChangePassword
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fieldError("email", "email is already in use")
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the account and unlinks any driver pointing at it.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Piloto{}).Where("usuario_id = ?", user.ID).
			Update("usuario_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
