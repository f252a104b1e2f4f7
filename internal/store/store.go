package store

import (
	"context"
	"errors"

	"henheaven/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrLedgerNotFound    = errors.New("financial summary not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInsufficientFunds = errors.New("insufficient revenue")
)

// Repository is the persistence contract shared by the Postgres and
// in-memory implementations. Settlement and every write that touches
// the financial summary are atomic within a single transaction.
type Repository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	GetProductByID(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	GetCart(ctx context.Context, buyerID string) ([]domain.CartItem, error)
	UpsertCartItem(ctx context.Context, buyerID string, item domain.CartItem) error
	RemoveCartItem(ctx context.Context, buyerID string, productID string) error
	ClearCart(ctx context.Context, buyerID string) error
	CreatePendingOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	SettleOrder(ctx context.Context, orderID string, paymentID string, signature string) (*domain.Order, error)
	MarkOrderFailed(ctx context.Context, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)
	AdvanceOrderStatus(ctx context.Context, orderID string, status string) (*domain.Order, error)
	ListOrders(ctx context.Context, limit int) ([]domain.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Order, error)
	GetFinancialSummary(ctx context.Context) (*domain.FinancialSummary, error)
	CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, itemID string) error
	ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error)
	CreateMedicineRecord(ctx context.Context, record domain.MedicineRecord) (*domain.MedicineRecord, error)
	ListMedicineRecords(ctx context.Context, limit int) ([]domain.MedicineRecord, error)
	CreateEggCollection(ctx context.Context, collection domain.EggCollection) (*domain.EggCollection, error)
	UpdateEggCollection(ctx context.Context, collection domain.EggCollection) (*domain.EggCollection, error)
	DeleteEggCollection(ctx context.Context, collectionID string) error
	ListEggCollections(ctx context.Context, limit int) ([]domain.EggCollection, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	GetUserByID(ctx context.Context, userID string) (*domain.UserAccount, error)
	UpdateUserAddress(ctx context.Context, userID string, address domain.Address) (*domain.UserAccount, error)
	CreateRefundRequest(ctx context.Context, refund domain.RefundRequest) (*domain.RefundRequest, error)
	ListRefundRequests(ctx context.Context, limit int) ([]domain.RefundRequest, error)
}
