package db

import (
	"context"

	"ms-restaurant/internal/models"

	"github.com/uptrace/bun"
)

// ---------------- EMPLOYEES ----------------

func (d *DB) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}
	err := d.Bun.NewSelect().Model(&employees).OrderExpr("id DESC").Scan(ctx)
	return employees, err
}

func (d *DB) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	err := d.Bun.NewSelect().Model(&employee).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &employee, nil
}

func (d *DB) GetEmployeeByLogin(ctx context.Context, login string) (*models.Employee, error) {
	var employee models.Employee
	err := d.Bun.NewSelect().Model(&employee).Where("login = ?", login).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &employee, nil
}

// EmployeeTaken reports whether another employee (not exceptID) uses the phone or login.
func (d *DB) EmployeeTaken(ctx context.Context, phone, login string, exceptID int64) (bool, error) {
	q := d.Bun.NewSelect().Model((*models.Employee)(nil)).Where("id != ?", exceptID)
	switch {
	case phone != "" && login != "":
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("phone = ?", phone).WhereOr("login = ?", login)
		})
	case phone != "":
		q = q.Where("phone = ?", phone)
	case login != "":
		q = q.Where("login = ?", login)
	default:
		return false, nil
	}
	return q.Exists(ctx)
}

func (d *DB) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	_, err := d.Bun.NewInsert().Model(employee).Exec(ctx)
	return err
}

// UpdateEmployee applies a partial update and reports whether the row exists.
func (d *DB) UpdateEmployee(ctx context.Context, id int64, fields Fields) (bool, error) {
	n, err := d.updateFields(ctx, "employees", id, fields)
	return n > 0, err
}

func (d *DB) DeleteEmployee(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().Model((*models.Employee)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
