package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Store *repos.Store
}

func NewCatalogService(cats *repos.CategoryRepo, store *repos.Store) *CatalogService {
	return &CatalogService{Cats: cats, Store: store}
}

func (s *CatalogService) Categories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) Suppliers() ([]domain.Supplier, error) {
	return s.Cats.Suppliers()
}

func (s *CatalogService) Products(f domain.ProductFilter, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Store.Products().Search(f, pageSize, offset)
}

type ProductDetail struct {
	Product     domain.Product
	AvgRating   decimal.Decimal // one decimal place
	ReviewCount int
	TotalSold   int
	Reviews     []domain.Review
}

func (s *CatalogService) Detail(id string) (ProductDetail, error) {
	p, err := s.Store.Products().Get(id)
	if err != nil {
		return ProductDetail{}, err
	}
	avg, n, err := s.Store.Reviews().AvgRating(id)
	if err != nil {
		return ProductDetail{}, err
	}
	sold, err := s.Store.Products().SoldQuantity(id)
	if err != nil {
		return ProductDetail{}, err
	}
	reviews, err := s.Store.Reviews().ListByProduct(id, 5)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{
		Product:     p,
		AvgRating:   decimal.NewFromFloat(avg).Round(1),
		ReviewCount: n,
		TotalSold:   sold,
		Reviews:     reviews,
	}, nil
}

type ProductInput struct {
	Name        string
	CategoryID  string
	SupplierID  string
	Price       decimal.Decimal
	Quantity    int
	ImagePath   string
	Description string
}

func (s *CatalogService) check(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || utf8.RuneCountInString(in.Name) > 255 {
		return domain.Invalid("name", "must be 1 to 255 characters")
	}
	if in.Price.IsNegative() {
		return domain.Invalid("price", "must not be negative")
	}
	if in.Quantity < 0 {
		return domain.Invalid("quantity", "must not be negative")
	}
	ok, err := s.Store.Products().CategoryExists(in.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Invalid("category_id", "unknown category")
	}
	if in.SupplierID != "" {
		ok, err := s.Store.Products().SupplierExists(in.SupplierID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Invalid("supplier_id", "unknown supplier")
		}
	}
	return nil
}

// NewSKU returns "PROD-" followed by eight upper-case random characters.
func NewSKU() string {
	id := ulid.Make().String()
	return "PROD-" + id[len(id)-8:]
}

// CreateProduct stores a new product. Any opening quantity is booked as an
// inbound movement so the ledger and the counter agree from the start.
func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, in ProductInput) (domain.Product, error) {
	if err := s.check(&in); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID: uuid.NewString(), Name: in.Name, SKU: NewSKU(), CategoryID: in.CategoryID, SupplierID: in.SupplierID,
		Price: in.Price, Quantity: in.Quantity, ImagePath: in.ImagePath, Description: in.Description,
	}
	err := s.Store.InTx(ctx, func(tx *repos.Tx) error {
		if err := tx.Products.Create(p); err != nil {
			return err
		}
		if p.Quantity == 0 {
			return nil
		}
		m := domain.StockMovement{ProductID: p.ID, Type: domain.MovementIn, Quantity: p.Quantity, Note: "Initial stock"}
		if actor != nil {
			m.PerformedBy = actor.ID
		}
		_, err := tx.Stock.Append(m)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return s.Store.Products().Get(p.ID)
}

// UpdateProduct edits descriptive fields and price. Quantity only changes
// through restock and sales, so in.Quantity is ignored.
func (s *CatalogService) UpdateProduct(id string, in ProductInput) (domain.Product, error) {
	cur, err := s.Store.Products().Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	in.Quantity = cur.Quantity
	if err := s.check(&in); err != nil {
		return domain.Product{}, err
	}
	cur.Name, cur.CategoryID, cur.SupplierID = in.Name, in.CategoryID, in.SupplierID
	cur.Price, cur.Description = in.Price, in.Description
	if in.ImagePath != "" {
		cur.ImagePath = in.ImagePath
	}
	if err := s.Store.Products().Update(cur); err != nil {
		return domain.Product{}, err
	}
	return s.Store.Products().Get(id)
}

func (s *CatalogService) DeleteProduct(id string) error {
	return s.Store.Products().SoftDelete(id)
}
