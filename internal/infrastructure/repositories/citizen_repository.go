package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"gorm.io/gorm"
)

// CitizenRepositoryImpl implements domain.CitizenRepository using GORM
type CitizenRepositoryImpl struct {
	db *gorm.DB
}

// DBCitizen represents the database model for Citizen (with GORM tags)
type DBCitizen struct {
	ID          string         `gorm:"primaryKey;size:36"`
	PhoneNumber string         `gorm:"uniqueIndex;size:32"`
	DisplayName string         `gorm:"size:128"`
	Role        string         `gorm:"index;size:64"`
	CreatedAt   time.Time      `gorm:"index"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBCitizen) TableName() string {
	return "citizens"
}

// NewCitizenRepository creates a new citizen repository
func NewCitizenRepository(db *gorm.DB) domain.CitizenRepository {
	return &CitizenRepositoryImpl{db: db}
}

// Create implements domain.CitizenRepository
func (r *CitizenRepositoryImpl) Create(ctx context.Context, citizen *domain.Citizen) error {
	dbCitizen := r.domainToDB(citizen)
	if err := r.db.WithContext(ctx).Create(dbCitizen).Error; err != nil {
		return err
	}
	citizen.CreatedAt = dbCitizen.CreatedAt
	citizen.UpdatedAt = dbCitizen.UpdatedAt
	return nil
}

// FindByPhone implements domain.CitizenRepository
func (r *CitizenRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.Citizen, error) {
	return r.findOne(ctx, "phone_number = ?", phone)
}

// FindByID implements domain.CitizenRepository
func (r *CitizenRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Citizen, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *CitizenRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.Citizen, error) {
	var dbCitizen DBCitizen
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbCitizen).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCitizenNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbCitizen), nil
}

// domainToDB converts domain citizen to database citizen
func (r *CitizenRepositoryImpl) domainToDB(c *domain.Citizen) *DBCitizen {
	return &DBCitizen{
		ID:          c.ID,
		PhoneNumber: c.PhoneNumber,
		DisplayName: c.DisplayName,
		Role:        c.Role,
	}
}

// dbToDomain converts database citizen to domain citizen
func (r *CitizenRepositoryImpl) dbToDomain(c *DBCitizen) *domain.Citizen {
	return &domain.Citizen{
		ID:          c.ID,
		PhoneNumber: c.PhoneNumber,
		DisplayName: c.DisplayName,
		Role:        c.Role,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
