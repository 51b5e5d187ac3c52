package admin

import (
	"context"
	"errors"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
)

type EmployeeDTO struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	Role        string           `json:"role"`
	Login       string           `json:"login"`
	Permissions auth.Permissions `json:"permissions"`
	CreatedAt   string           `json:"createdAt"`
}

func employeeDTO(e *models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		Phone:       e.Phone,
		Role:        e.Role,
		Login:       e.Login,
		Permissions: auth.EmployeePermissions(e),
		CreatedAt:   e.CreatedAt,
	}
}

// PermissionsInput carries only the flags present in the request.
type PermissionsInput struct {
	CanEditRestaurants        *bool `json:"canEditRestaurants"`
	CanChangeRestaurantStatus *bool `json:"canChangeRestaurantStatus"`
	CanManageEmployees        *bool `json:"canManageEmployees"`
	CanAddRestaurants         *bool `json:"canAddRestaurants"`
}

type EmployeeInput struct {
	Name        *string           `json:"name"`
	Phone       *string           `json:"phone"`
	Role        *string           `json:"role"`
	Login       *string           `json:"login"`
	Password    *string           `json:"password"`
	Permissions *PermissionsInput `json:"permissions"`
}

func flag(value *bool) bool {
	return value != nil && *value
}

func (s *Service) ListEmployees(ctx context.Context) ([]EmployeeDTO, error) {
	rows, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]EmployeeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, employeeDTO(&rows[i]))
	}
	return out, nil
}

// CreateEmployee answers 409 for the super-admin login and for a phone or login
// already in use.
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (EmployeeDTO, error) {
	name, phone, login, password := trimmed(in.Name), trimmed(in.Phone), trimmed(in.Login), trimmed(in.Password)
	if name == "" || phone == "" || login == "" || password == "" {
		return EmployeeDTO{}, apperr.BadRequest("")
	}
	if s.Accounts.IsSuperAdmin(login) {
		return EmployeeDTO{}, apperr.Conflict("")
	}
	taken, err := s.Store.EmployeeTaken(ctx, phone, login, 0)
	if err != nil {
		return EmployeeDTO{}, apperr.Internal(err)
	}
	if taken {
		return EmployeeDTO{}, apperr.Conflict("")
	}

	salt, hash, err := auth.HashPassword(password)
	if err != nil {
		return EmployeeDTO{}, apperr.Internal(err)
	}
	perms := in.Permissions
	if perms == nil {
		perms = &PermissionsInput{}
	}
	employee := &models.Employee{
		Name:                      name,
		Phone:                     phone,
		Role:                      trimmed(in.Role),
		Login:                     login,
		PasswordHash:              hash,
		PasswordSalt:              salt,
		CanEditRestaurants:        flag(perms.CanEditRestaurants),
		CanChangeRestaurantStatus: flag(perms.CanChangeRestaurantStatus),
		CanManageEmployees:        flag(perms.CanManageEmployees),
		CanAddRestaurants:         flag(perms.CanAddRestaurants),
		CreatedAt:                 s.timestamp(),
	}
	if err := s.Store.CreateEmployee(ctx, employee); err != nil {
		if db.IsUniqueViolation(err) {
			return EmployeeDTO{}, apperr.Conflict("")
		}
		return EmployeeDTO{}, apperr.Internal(err)
	}
	s.Logger.LogSecurity("EMPLOYEE_CREATED", fmt.Sprintf("Employee %q created", login))
	return employeeDTO(employee), nil
}

// UpdateEmployee applies the fields present in the request. An empty login
// clears it; an empty password is ignored.
func (s *Service) UpdateEmployee(ctx context.Context, id int64, in EmployeeInput) error {
	fields := db.Fields{}
	if in.Name != nil {
		fields["name"] = trimmed(in.Name)
	}
	if in.Phone != nil {
		phone := trimmed(in.Phone)
		if err := s.checkTaken(ctx, phone, "", id); err != nil {
			return err
		}
		fields["phone"] = phone
	}
	if in.Role != nil {
		fields["role"] = trimmed(in.Role)
	}
	if in.Login != nil {
		login := trimmed(in.Login)
		if login != "" && s.Accounts.IsSuperAdmin(login) {
			return apperr.Conflict("")
		}
		if err := s.checkTaken(ctx, "", login, id); err != nil {
			return err
		}
		if login == "" {
			fields["login"] = nil
		} else {
			fields["login"] = login
		}
	}
	if p := in.Permissions; p != nil {
		for column, value := range map[string]*bool{
			"can_edit_restaurants":         p.CanEditRestaurants,
			"can_change_restaurant_status": p.CanChangeRestaurantStatus,
			"can_manage_employees":         p.CanManageEmployees,
			"can_add_restaurants":          p.CanAddRestaurants,
		} {
			if value != nil {
				fields[column] = *value
			}
		}
	}
	if password := trimmed(in.Password); password != "" {
		salt, hash, err := auth.HashPassword(password)
		if err != nil {
			return apperr.Internal(err)
		}
		fields["password_salt"] = salt
		fields["password_hash"] = hash
	}
	if len(fields) == 0 {
		return apperr.BadRequest("")
	}

	found, err := s.Store.UpdateEmployee(ctx, id, fields)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}

func (s *Service) checkTaken(ctx context.Context, phone, login string, id int64) error {
	taken, err := s.Store.EmployeeTaken(ctx, phone, login, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if taken {
		return apperr.Conflict("")
	}
	return nil
}

func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	employee, err := s.Store.GetEmployee(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if _, err := s.Store.DeleteEmployee(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	s.Logger.LogSecurity("EMPLOYEE_DELETED", fmt.Sprintf("Employee %q deleted", employee.Login))
	return nil
}
