package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/murdhanno/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements shipping.ShipmentRepository
type GormShipmentRepository struct {
	db *gorm.DB
}

func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func (r *GormShipmentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	if err := saveVersioned(r.db.WithContext(ctx), models.ShipmentModelFromDomain(s), s); err != nil {
		return err
	}
	s.MarkStored()
	return nil
}

// GormLocationRepository implements shipping.LocationRepository
type GormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func upsertByID(columns ...string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}

func (r *GormLocationRepository) Cities(ctx context.Context) ([]shipping.City, error) {
	var rows []models.CourierCityModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]shipping.City, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormLocationRepository) SaveCities(ctx context.Context, cities []shipping.City) error {
	if len(cities) == 0 {
		return nil
	}
	rows := make([]models.CourierCityModel, len(cities))
	for i, c := range cities {
		rows[i] = models.CourierCityModelFromDomain(c)
	}
	return r.db.WithContext(ctx).
		Clauses(upsertByID("name", "updated_at")).
		Create(&rows).Error
}

func (r *GormLocationRepository) Zones(ctx context.Context, cityID int) ([]shipping.Zone, error) {
	var rows []models.CourierZoneModel
	if err := r.db.WithContext(ctx).Where("city_id = ?", cityID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]shipping.Zone, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormLocationRepository) SaveZones(ctx context.Context, zones []shipping.Zone) error {
	if len(zones) == 0 {
		return nil
	}
	rows := make([]models.CourierZoneModel, len(zones))
	for i, z := range zones {
		rows[i] = models.CourierZoneModelFromDomain(z)
	}
	return r.db.WithContext(ctx).
		Clauses(upsertByID("city_id", "name", "updated_at")).
		Create(&rows).Error
}

func (r *GormLocationRepository) CityName(ctx context.Context, cityID int) (string, error) {
	return r.name(ctx, &models.CourierCityModel{}, cityID)
}

func (r *GormLocationRepository) ZoneName(ctx context.Context, zoneID int) (string, error) {
	return r.name(ctx, &models.CourierZoneModel{}, zoneID)
}

func (r *GormLocationRepository) name(ctx context.Context, model any, id int) (string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Pluck("name", &names).Error; err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

var (
	_ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)
	_ shipping.LocationRepository = (*GormLocationRepository)(nil)
)
