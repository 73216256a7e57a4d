package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/utils"
)

// ReferenceService maintains the master data that scheduling and invoicing
// point at. Every record gets its code from the generator inside the insert
// transaction.
type ReferenceService struct {
	db          *gorm.DB
	driverRepo  *repository.DriverRepository
	vehicleRepo *repository.VehicleRepository
	trailerRepo *repository.TrailerRepository
	clientRepo  *repository.ClientRepository
	productRepo *repository.ProductRepository
	codes       *CodeService
	log         zerolog.Logger
}

func NewReferenceService(
	db *gorm.DB,
	driverRepo *repository.DriverRepository,
	vehicleRepo *repository.VehicleRepository,
	trailerRepo *repository.TrailerRepository,
	clientRepo *repository.ClientRepository,
	productRepo *repository.ProductRepository,
	codes *CodeService,
	log zerolog.Logger,
) *ReferenceService {
	return &ReferenceService{
		db:          db,
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		trailerRepo: trailerRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		codes:       codes,
		log:         log,
	}
}

type CreateDriverInput struct {
	FullName      string
	Phone         string
	LicenseNumber string
}

func (s *ReferenceService) CreateDriver(ctx context.Context, input CreateDriverInput) (*model.Driver, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, validationf("full_name is required")
	}
	driver := &model.Driver{
		FullName:      name,
		Phone:         strings.TrimSpace(input.Phone),
		LicenseNumber: strings.TrimSpace(input.LicenseNumber),
		IsActive:      true,
	}
	err := s.withCode(ctx, model.CodeTypeDriver, func(tx *gorm.DB, code string) error {
		driver.Code = code
		return translateStoreError(s.driverRepo.WithTx(tx).Create(ctx, driver), "driver", driver.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("driver_id", driver.ID.String()).Str("code", driver.Code).Msg("driver created")
	return driver, nil
}

type CreateVehicleInput struct {
	PlateNumber  string
	Make         string
	Model        string
	CapacityTons *float64
}

func (s *ReferenceService) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*model.Vehicle, error) {
	plate := utils.NormalizePlate(input.PlateNumber)
	if plate == "" {
		return nil, validationf("plate_number is required")
	}
	if input.CapacityTons != nil && *input.CapacityTons <= 0 {
		return nil, validationf("capacity_tons must be positive")
	}
	vehicle := &model.Vehicle{
		PlateNumber:  plate,
		Make:         strings.TrimSpace(input.Make),
		Model:        strings.TrimSpace(input.Model),
		CapacityTons: input.CapacityTons,
		IsActive:     true,
	}
	err := s.withCode(ctx, model.CodeTypeVehicle, func(tx *gorm.DB, code string) error {
		vehicles := s.vehicleRepo.WithTx(tx)
		existing, err := vehicles.GetByPlate(ctx, plate)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictf("vehicle with plate %s already exists as %s", plate, existing.Code)
		}
		vehicle.Code = code
		return translateStoreError(vehicles.Create(ctx, vehicle), "vehicle", vehicle.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("vehicle_id", vehicle.ID.String()).Str("code", vehicle.Code).Str("plate", plate).Msg("vehicle created")
	return vehicle, nil
}

type CreateTrailerInput struct {
	PlateNumber string
}

func (s *ReferenceService) CreateTrailer(ctx context.Context, input CreateTrailerInput) (*model.Trailer, error) {
	plate := utils.NormalizePlate(input.PlateNumber)
	if plate == "" {
		return nil, validationf("plate_number is required")
	}
	trailer := &model.Trailer{PlateNumber: plate, IsActive: true}
	err := s.withCode(ctx, model.CodeTypeTrailer, func(tx *gorm.DB, code string) error {
		trailers := s.trailerRepo.WithTx(tx)
		existing, err := trailers.GetByPlate(ctx, plate)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictf("trailer with plate %s already exists as %s", plate, existing.Code)
		}
		trailer.Code = code
		return translateStoreError(trailers.Create(ctx, trailer), "trailer", trailer.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("trailer_id", trailer.ID.String()).Str("code", trailer.Code).Msg("trailer created")
	return trailer, nil
}

type CreateClientInput struct {
	Name  string
	Email string
}

func (s *ReferenceService) CreateClient(ctx context.Context, input CreateClientInput) (*model.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	client := &model.Client{Name: name, Email: strings.TrimSpace(input.Email)}
	err := s.withCode(ctx, model.CodeTypeClient, func(tx *gorm.DB, code string) error {
		client.Code = code
		return translateStoreError(s.clientRepo.WithTx(tx).Create(ctx, client), "client", client.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("client_id", client.ID.String()).Str("code", client.Code).Msg("client created")
	return client, nil
}

type CreateProductInput struct {
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
}

func (s *ReferenceService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, validationf("unit_price must not be negative")
	}
	product := &model.Product{
		Name:      name,
		Unit:      strings.TrimSpace(input.Unit),
		UnitPrice: input.UnitPrice.Round(2),
	}
	err := s.withCode(ctx, model.CodeTypeProduct, func(tx *gorm.DB, code string) error {
		product.Code = code
		return translateStoreError(s.productRepo.WithTx(tx).Create(ctx, product), "product", product.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", product.ID.String()).Str("code", product.Code).Msg("product created")
	return product, nil
}

// UpdateProductPrice changes the live price. Existing invoice items keep
// the price they were created with.
func (s *ReferenceService) UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*model.Product, error) {
	if price.IsNegative() {
		return nil, validationf("unit_price must not be negative")
	}
	if err := s.productRepo.UpdatePrice(ctx, id, price.Round(2)); err != nil {
		return nil, translateStoreError(err, "product", id)
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "product", id)
	}
	s.log.Info().Str("product_id", id.String()).Str("unit_price", product.UnitPrice.StringFixed(2)).Msg("product price updated")
	return product, nil
}

func (s *ReferenceService) GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "driver", id)
	}
	return driver, nil
}

func (s *ReferenceService) GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "vehicle", id)
	}
	return vehicle, nil
}

func (s *ReferenceService) ListDrivers(ctx context.Context, page repository.Page) ([]model.Driver, error) {
	return s.driverRepo.List(ctx, page)
}

func (s *ReferenceService) ListVehicles(ctx context.Context, page repository.Page) ([]model.Vehicle, error) {
	return s.vehicleRepo.List(ctx, page)
}

func (s *ReferenceService) ListTrailers(ctx context.Context, page repository.Page) ([]model.Trailer, error) {
	return s.trailerRepo.List(ctx, page)
}

func (s *ReferenceService) ListClients(ctx context.Context, page repository.Page) ([]model.Client, error) {
	return s.clientRepo.List(ctx, page)
}

func (s *ReferenceService) ListProducts(ctx context.Context, page repository.Page) ([]model.Product, error) {
	return s.productRepo.List(ctx, page)
}

func (s *ReferenceService) withCode(ctx context.Context, codeType model.CodeType, insert func(tx *gorm.DB, code string) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.codes.NextCodeTx(ctx, tx, codeType)
		if err != nil {
			return err
		}
		return insert(tx, code)
	})
	if err != nil {
		return err
	}
	s.codes.forget(ctx, codeType)
	return nil
}
