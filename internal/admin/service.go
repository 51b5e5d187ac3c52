package admin

import (
	"context"
	"strings"
	"time"

	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"
)

// Store is the persistence the directory needs. *db.DB implements it.
type Store interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*models.Employee, error)
	EmployeeTaken(ctx context.Context, phone, login string, exceptID int64) (bool, error)
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	UpdateEmployee(ctx context.Context, id int64, fields db.Fields) (bool, error)
	DeleteEmployee(ctx context.Context, id int64) (bool, error)

	GetClient(ctx context.Context, id int64) (*models.Client, error)
	GetClientByPhone(ctx context.Context, phone string) (*models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) error
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClientName(ctx context.Context, id int64, name string) error
	UpdateClientPassword(ctx context.Context, id int64, salt, hash string) (bool, error)
	ListClientAddresses(ctx context.Context, clientID int64) ([]models.ClientAddress, error)
	CreateClientAddress(ctx context.Context, clientID int64, title, address string) (*models.ClientAddress, error)
	DeleteClientAddress(ctx context.Context, id, clientID int64) (bool, error)

	ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	CreateBanner(ctx context.Context, banner *models.Banner) error
	DeleteBanner(ctx context.Context, id int64) (bool, error)
	ReorderBanners(ctx context.Context, ids []int64) error

	CreateNewsletter(ctx context.Context, newsletter *models.Newsletter) error
	ListNewsletters(ctx context.Context, channel, status string) ([]models.Newsletter, error)
	MarkNewslettersDelivered(ctx context.Context, ids []int64, at string) error
	SoftDeleteNewsletter(ctx context.Context, id int64) (bool, error)

	GetSettings(ctx context.Context, keys ...string) (map[string]string, error)
	UpsertSettings(ctx context.Context, values map[string]string) error
}

// Accounts is the identity side of auth. *auth.Service implements it.
type Accounts interface {
	IsSuperAdmin(login string) bool
	IssueClientToken(client *models.Client) (string, error)
}

// ProfileSync pushes client profile changes to a restaurant POS. *order.Service implements it.
type ProfileSync interface {
	SyncClientProfile(ctx context.Context, clientID, restaurantID int64) bool
}

type Service struct {
	Store    Store
	Accounts Accounts
	Profiles ProfileSync
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewService(store Store, accounts Accounts, profiles ProfileSync, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{Store: store, Accounts: accounts, Profiles: profiles, Logger: log, Now: time.Now}
}

func (s *Service) timestamp() string {
	return utils.FormatTime(s.Now())
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
