package auth

import "ms-restaurant/internal/models"

type Permission string

const (
	PermEditRestaurants        Permission = "edit_restaurants"
	PermChangeRestaurantStatus Permission = "change_restaurant_status"
	PermAddRestaurants         Permission = "add_restaurants"
	PermManageEmployees        Permission = "manage_employees"
)

// Permissions is the capability set of an admin login.
type Permissions struct {
	CanEditRestaurants        bool `json:"canEditRestaurants"`
	CanChangeRestaurantStatus bool `json:"canChangeRestaurantStatus"`
	CanAddRestaurants         bool `json:"canAddRestaurants"`
	CanManageEmployees        bool `json:"canManageEmployees"`
}

func AllPermissions() Permissions {
	return Permissions{true, true, true, true}
}

func EmployeePermissions(e *models.Employee) Permissions {
	return Permissions{
		CanEditRestaurants:        e.CanEditRestaurants,
		CanChangeRestaurantStatus: e.CanChangeRestaurantStatus,
		CanAddRestaurants:         e.CanAddRestaurants,
		CanManageEmployees:        e.CanManageEmployees,
	}
}

func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermEditRestaurants:
		return p.CanEditRestaurants
	case PermChangeRestaurantStatus:
		return p.CanChangeRestaurantStatus
	case PermAddRestaurants:
		return p.CanAddRestaurants
	case PermManageEmployees:
		return p.CanManageEmployees
	}
	return false
}
