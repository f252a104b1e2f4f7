package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"henheaven/backend/internal/domain"
	"henheaven/backend/internal/ledger"
	"henheaven/backend/internal/pricing"
	"henheaven/backend/internal/store"
	"henheaven/backend/internal/xid"
)

type Store struct {
	mu            sync.RWMutex
	products      map[string]domain.Product
	carts         map[string][]domain.CartItem
	ordersByID    map[string]*domain.Order
	summary       *domain.FinancialSummary
	inventory     map[string]domain.InventoryItem
	medicines     []domain.MedicineRecord
	eggsByID      map[string]domain.EggCollection
	usersByID     map[string]domain.UserAccount
	userIDByEmail map[string]string
	refunds       []domain.RefundRequest
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_BUYER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with
// a warning printed to stdout. These credentials are never used in
// production (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() (map[string]domain.UserAccount, map[string]string) {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	buyerPwd := envOr("SEED_BUYER_PASSWORD", "buyer123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_BUYER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_BUYER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	byID := map[string]domain.UserAccount{}
	byEmail := map[string]string{}
	for _, u := range []struct {
		id       string
		name     string
		email    string
		password string
		role     string
		address  domain.Address
	}{
		{"user-admin", "Farm Admin", "admin@henheaven.test", adminPwd, domain.RoleAdmin, domain.Address{}},
		{"user-buyer", "Asha Buyer", "buyer@henheaven.test", buyerPwd, domain.RoleBuyer, domain.Address{
			Street:  "12 Coop Lane",
			City:    "Namakkal",
			State:   "Tamil Nadu",
			ZipCode: "637001",
			Country: "India",
		}},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.email, err)
		}
		byID[u.id] = domain.UserAccount{
			ID:            u.id,
			Name:          u.name,
			Email:         u.email,
			PasswordHash:  string(hash),
			Role:          u.role,
			EmailVerified: true,
			Status:        domain.UserStatusActive,
			Address:       u.address,
			CreatedAt:     now,
		}
		byEmail[u.email] = u.id
	}
	return byID, byEmail
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	products := []domain.Product{
		{ID: "prod-eggs-01", Name: "Farm Eggs (6 pack)", ProductType: "eggs", SubType: "white", Stock: 120, ActualPrice: 90, Discount: domain.Discount{Type: domain.DiscountPercentage, Value: 10}},
		{ID: "prod-eggs-02", Name: "Country Eggs (12 pack)", ProductType: "eggs", SubType: "brown", Stock: 80, ActualPrice: 180},
		{ID: "prod-eggs-03", Name: "Kadaknath Eggs (6 pack)", ProductType: "eggs", SubType: "kadaknath", Stock: 30, ActualPrice: 240, Discount: domain.Discount{Type: domain.DiscountAmount, Value: 20}},
		{ID: "prod-chicken-01", Name: "Broiler Chicken 1kg", ProductType: "chicken", SubType: "broiler", Stock: 45, ActualPrice: 220},
		{ID: "prod-chicken-02", Name: "Country Chicken 1kg", ProductType: "chicken", SubType: "country", Stock: 25, ActualPrice: 340, Discount: domain.Discount{Type: domain.DiscountPercentage, Value: 5}},
		{ID: "prod-chick-01", Name: "Day-old Chicks (pair)", ProductType: "livestock", SubType: "chick", Stock: 60, ActualPrice: 150},
		{ID: "prod-feed-01", Name: "Layer Feed 25kg", ProductType: "feed", SubType: "layer", Stock: 40, ActualPrice: 1250, Discount: domain.Discount{Type: domain.DiscountAmount, Value: 50}},
		{ID: "prod-feed-02", Name: "Starter Feed 10kg", ProductType: "feed", SubType: "starter", Stock: 55, ActualPrice: 620},
		{ID: "prod-manure-01", Name: "Poultry Manure 20kg", ProductType: "manure", Stock: 35, ActualPrice: 180},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.FinalPrice = pricing.FinalPrice(p.ActualPrice, p.Discount)
		p.Status = statusForStock(p.Stock)
		p.CreatedAt = now
		p.UpdatedAt = now
		productMap[p.ID] = p
	}

	users, emails := seedUsers()

	return &Store{
		products:   productMap,
		carts:      make(map[string][]domain.CartItem),
		ordersByID: make(map[string]*domain.Order),
		summary: &domain.FinancialSummary{
			Capital:            250000,
			Expense:            42000,
			NetProfit:          68000,
			TotalInventoryCost: 35000,
			TotalRevenue:       145000,
			UpdatedAt:          now,
		},
		inventory:     make(map[string]domain.InventoryItem),
		medicines:     make([]domain.MedicineRecord, 0, 32),
		eggsByID:      make(map[string]domain.EggCollection),
		usersByID:     users,
		userIDByEmail: emails,
		refunds:       make([]domain.RefundRequest, 0, 16),
	}
}

func (s *Store) ListProducts(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if activeOnly && p.Status != domain.ProductStatusActive {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.ProductType == b.ProductType {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.ProductType, b.ProductType)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[productID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.ProductType == "" || product.ActualPrice < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidRequest
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrInvalidRequest
	}
	now := time.Now().UTC()
	product.FinalPrice = pricing.FinalPrice(product.ActualPrice, product.Discount)
	product.Status = statusForStock(product.Stock)
	product.CreatedAt = now
	product.UpdatedAt = now

	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.ProductType == "" || product.ActualPrice < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidRequest
	}
	current, exists := s.products[product.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	product.FinalPrice = pricing.FinalPrice(product.ActualPrice, product.Discount)
	product.Status = statusForStock(product.Stock)
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[productID]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, productID)
	return nil
}

func (s *Store) GetCart(_ context.Context, buyerID string) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneCartItems(s.carts[buyerID]), nil
}

func (s *Store) UpsertCartItem(_ context.Context, buyerID string, item domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if buyerID == "" || item.ProductID == "" || item.Qty < 1 {
		return store.ErrInvalidRequest
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	items := s.carts[buyerID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			item.AddedAt = items[i].AddedAt
			items[i] = item
			s.carts[buyerID] = items
			return nil
		}
	}
	s.carts[buyerID] = append(items, item)
	return nil
}

func (s *Store) RemoveCartItem(_ context.Context, buyerID string, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[buyerID]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[buyerID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ClearCart(_ context.Context, buyerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, buyerID)
	return nil
}

func (s *Store) CreatePendingOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.BuyerID == "" || len(order.Items) == 0 || order.GatewayOrderID == "" {
		return nil, store.ErrInvalidRequest
	}
	if !order.ShippingAddress.Complete() {
		return nil, store.ErrInvalidRequest
	}
	if order.ID == "" {
		order.ID = xid.New("hho")
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrInvalidRequest
	}
	now := time.Now().UTC()
	order.Status = domain.OrderStatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	s.ordersByID[order.ID] = cloneOrder(&order)
	return cloneOrder(&order), nil
}

func (s *Store) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneOrder(order), nil
}

// SettleOrder is the single path where stock decrements, the order
// flips to placed, the financial summary absorbs the sale, and the
// source cart empties. All checks run before any mutation so a failed
// settlement leaves nothing behind.
func (s *Store) SettleOrder(_ context.Context, orderID string, paymentID string, signature string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if order.Status == domain.OrderStatusPlaced && order.PaymentID == paymentID {
		return cloneOrder(order), nil
	}
	if order.Status != domain.OrderStatusPending {
		return nil, store.ErrInvalidRequest
	}
	if s.summary == nil {
		return nil, store.ErrLedgerNotFound
	}

	for _, line := range order.Items {
		product, ok := s.products[line.ProductID]
		if !ok || product.Status != domain.ProductStatusActive {
			return nil, fmt.Errorf("%s: %w", line.Name, store.ErrOutOfStock)
		}
		if product.Stock < line.Qty {
			return nil, fmt.Errorf("%s: %w", line.Name, store.ErrOutOfStock)
		}
	}

	now := time.Now().UTC()
	for _, line := range order.Items {
		product := s.products[line.ProductID]
		product.Stock -= line.Qty
		product.Status = statusForStock(product.Stock)
		product.UpdatedAt = now
		s.products[line.ProductID] = product
	}

	order.Status = domain.OrderStatusPlaced
	order.PaymentID = paymentID
	order.Signature = signature
	order.UpdatedAt = now

	ledger.ApplySale(s.summary, pricing.Quote{
		TotalProducts:  order.TotalProducts,
		ProductPrice:   order.ProductPrice,
		GST:            order.GST,
		ConvenienceFee: order.ConvenienceFee,
		TotalAmount:    order.TotalAmount,
	})
	s.summary.UpdatedAt = now

	if order.Source == domain.OrderSourceCart {
		delete(s.carts, order.BuyerID)
	}

	return cloneOrder(order), nil
}

func (s *Store) MarkOrderFailed(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return nil, store.ErrInvalidRequest
	}
	order.Status = domain.OrderStatusFailed
	order.UpdatedAt = time.Now().UTC()
	return cloneOrder(order), nil
}

func (s *Store) CancelOrder(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return nil, store.ErrInvalidRequest
	}
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now().UTC()
	return cloneOrder(order), nil
}

func (s *Store) AdvanceOrderStatus(_ context.Context, orderID string, status string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if !validStatusAdvance(order.Status, status) {
		return nil, store.ErrInvalidRequest
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return cloneOrder(order), nil
}

func (s *Store) ListOrders(_ context.Context, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectOrders(limit, func(domain.Order) bool { return true }), nil
}

func (s *Store) ListOrdersByBuyer(_ context.Context, buyerID string, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectOrders(limit, func(o domain.Order) bool { return o.BuyerID == buyerID }), nil
}

func (s *Store) collectOrders(limit int, keep func(domain.Order) bool) []domain.Order {
	if limit < 1 {
		limit = 100
	}
	orders := make([]domain.Order, 0, limit)
	for _, order := range s.ordersByID {
		if keep(*order) {
			orders = append(orders, *cloneOrder(order))
		}
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.ID, b.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders
}

func (s *Store) GetFinancialSummary(_ context.Context) (*domain.FinancialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.summary == nil {
		return nil, store.ErrLedgerNotFound
	}
	copySummary := *s.summary
	return &copySummary, nil
}

func (s *Store) CreateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Name == "" || item.Category == "" || item.Quantity < 1 || item.UnitCost <= 0 {
		return nil, store.ErrInvalidRequest
	}
	if s.summary == nil {
		return nil, store.ErrLedgerNotFound
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}
	item.TotalCost = item.UnitCost * float64(item.Quantity)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	if err := ledger.ApplyInventoryChange(s.summary, item.TotalCost); err != nil {
		return nil, err
	}
	s.summary.UpdatedAt = time.Now().UTC()
	s.inventory[item.ID] = item
	created := item
	return &created, nil
}

func (s *Store) UpdateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Name == "" || item.Category == "" || item.Quantity < 1 || item.UnitCost <= 0 {
		return nil, store.ErrInvalidRequest
	}
	current, exists := s.inventory[item.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if s.summary == nil {
		return nil, store.ErrLedgerNotFound
	}
	item.TotalCost = item.UnitCost * float64(item.Quantity)
	item.CreatedAt = current.CreatedAt

	if err := ledger.ApplyInventoryChange(s.summary, item.TotalCost-current.TotalCost); err != nil {
		return nil, err
	}
	s.summary.UpdatedAt = time.Now().UTC()
	s.inventory[item.ID] = item
	updated := item
	return &updated, nil
}

func (s *Store) DeleteInventoryItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.inventory[itemID]
	if !exists {
		return store.ErrNotFound
	}
	if s.summary == nil {
		return store.ErrLedgerNotFound
	}
	if err := ledger.ApplyInventoryChange(s.summary, -current.TotalCost); err != nil {
		return err
	}
	s.summary.UpdatedAt = time.Now().UTC()
	delete(s.inventory, itemID)
	return nil
}

func (s *Store) ListInventoryItems(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.inventory))
	for _, item := range s.inventory {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})
	return items, nil
}

func (s *Store) CreateMedicineRecord(_ context.Context, record domain.MedicineRecord) (*domain.MedicineRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.PoultryType == "" || record.MedicineName == "" || record.Cost <= 0 {
		return nil, store.ErrInvalidRequest
	}
	if s.summary == nil {
		return nil, store.ErrLedgerNotFound
	}
	if record.ID == "" {
		record.ID = xid.New("med")
	}
	if record.AdministeredAt.IsZero() {
		record.AdministeredAt = time.Now().UTC()
	}

	ledger.ApplyExpense(s.summary, record.Cost)
	s.summary.UpdatedAt = time.Now().UTC()
	s.medicines = append(s.medicines, record)
	created := record
	return &created, nil
}

func (s *Store) ListMedicineRecords(_ context.Context, limit int) ([]domain.MedicineRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	records := make([]domain.MedicineRecord, len(s.medicines))
	copy(records, s.medicines)
	slices.SortFunc(records, func(a, b domain.MedicineRecord) int {
		if a.AdministeredAt.Equal(b.AdministeredAt) {
			return cmpString(a.ID, b.ID)
		}
		if a.AdministeredAt.After(b.AdministeredAt) {
			return -1
		}
		return 1
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Store) CreateEggCollection(_ context.Context, collection domain.EggCollection) (*domain.EggCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if collection.Small < 0 || collection.Medium < 0 || collection.Large < 0 || collection.ExtraLarge < 0 || collection.Damaged < 0 {
		return nil, store.ErrInvalidRequest
	}
	if collection.ID == "" {
		collection.ID = xid.New("egg")
	}
	if collection.Date.IsZero() {
		collection.Date = nowDateUTC(time.Now().UTC())
	}
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = time.Now().UTC()
	}
	collection.Total = collection.Small + collection.Medium + collection.Large + collection.ExtraLarge

	s.eggsByID[collection.ID] = collection
	created := collection
	return &created, nil
}

func (s *Store) UpdateEggCollection(_ context.Context, collection domain.EggCollection) (*domain.EggCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.eggsByID[collection.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if collection.Small < 0 || collection.Medium < 0 || collection.Large < 0 || collection.ExtraLarge < 0 || collection.Damaged < 0 {
		return nil, store.ErrInvalidRequest
	}
	if collection.Date.IsZero() {
		collection.Date = current.Date
	}
	collection.CreatedAt = current.CreatedAt
	collection.Total = collection.Small + collection.Medium + collection.Large + collection.ExtraLarge

	s.eggsByID[collection.ID] = collection
	updated := collection
	return &updated, nil
}

func (s *Store) DeleteEggCollection(_ context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.eggsByID[collectionID]; !exists {
		return store.ErrNotFound
	}
	delete(s.eggsByID, collectionID)
	return nil
}

func (s *Store) ListEggCollections(_ context.Context, limit int) ([]domain.EggCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	collections := make([]domain.EggCollection, 0, len(s.eggsByID))
	for _, c := range s.eggsByID {
		collections = append(collections, c)
	}
	slices.SortFunc(collections, func(a, b domain.EggCollection) int {
		if a.Date.Equal(b.Date) {
			return cmpString(a.ID, b.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if len(collections) > limit {
		collections = collections[:limit]
	}
	return collections, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Name == "" || user.PasswordHash == "" {
		return store.ErrInvalidRequest
	}
	if _, exists := s.userIDByEmail[user.Email]; exists {
		return store.ErrInvalidRequest
	}
	if user.ID == "" {
		user.ID = xid.New("user")
	}
	if user.Role == "" {
		user.Role = domain.RoleBuyer
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	s.usersByID[user.ID] = user
	s.userIDByEmail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, exists := s.userIDByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return nil, store.ErrNotFound
	}
	user := s.usersByID[userID]
	copyUser := user
	return &copyUser, nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByID[userID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyUser := user
	return &copyUser, nil
}

func (s *Store) UpdateUserAddress(_ context.Context, userID string, address domain.Address) (*domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByID[userID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if !address.Complete() {
		return nil, store.ErrInvalidRequest
	}
	user.Address = address
	s.usersByID[userID] = user
	copyUser := user
	return &copyUser, nil
}

func (s *Store) CreateRefundRequest(_ context.Context, refund domain.RefundRequest) (*domain.RefundRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if refund.OrderID == "" || refund.PaymentID == "" || refund.Amount <= 0 {
		return nil, store.ErrInvalidRequest
	}
	if refund.ID == "" {
		refund.ID = xid.New("refund")
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}

	s.refunds = append(s.refunds, refund)
	created := refund
	return &created, nil
}

func (s *Store) ListRefundRequests(_ context.Context, limit int) ([]domain.RefundRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	refunds := make([]domain.RefundRequest, len(s.refunds))
	copy(refunds, s.refunds)
	slices.SortFunc(refunds, func(a, b domain.RefundRequest) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.ID, b.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(refunds) > limit {
		refunds = refunds[:limit]
	}
	return refunds, nil
}

func statusForStock(stock int) string {
	if stock < 1 {
		return domain.ProductStatusInactive
	}
	return domain.ProductStatusActive
}

func validStatusAdvance(from string, to string) bool {
	switch {
	case from == domain.OrderStatusPlaced && to == domain.OrderStatusShipped:
		return true
	case from == domain.OrderStatusShipped && to == domain.OrderStatusDelivered:
		return true
	}
	return false
}

func cloneOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	copyOrder := *order
	copyOrder.Items = make([]domain.OrderLine, len(order.Items))
	copy(copyOrder.Items, order.Items)
	return &copyOrder
}

func cloneCartItems(items []domain.CartItem) []domain.CartItem {
	cloned := make([]domain.CartItem, len(items))
	copy(cloned, items)
	return cloned
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func nowDateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}
