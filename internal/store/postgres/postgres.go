package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"henheaven/backend/internal/domain"
	"henheaven/backend/internal/ledger"
	"henheaven/backend/internal/pricing"
	"henheaven/backend/internal/store"
	"henheaven/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string, migrationsDir string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if migrationsDir != "" {
		if err := applyMigrations(databaseURL, migrationsDir); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{db: db}, nil
}

func applyMigrations(databaseURL string, migrationsDir string) error {
	m, err := migrate.New("file://"+migrationsDir, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const productColumns = `id, name, image_url, description, product_type, sub_type, stock,
	actual_price, discount_type, discount_value, final_price, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.ImageURL, &p.Description, &p.ProductType, &p.SubType,
		&p.Stock, &p.ActualPrice, &p.Discount.Type, &p.Discount.Value, &p.FinalPrice,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE $1 = false OR status = 'active'
		ORDER BY product_type, name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, productID)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.ProductType == "" || product.ActualPrice < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidRequest
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	now := time.Now().UTC()
	product.FinalPrice = pricing.FinalPrice(product.ActualPrice, product.Discount)
	product.Status = statusForStock(product.Stock)
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, image_url, description, product_type, sub_type, stock,
			actual_price, discount_type, discount_value, final_price, status, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, product.ID, product.Name, product.ImageURL, product.Description, product.ProductType, product.SubType,
		product.Stock, product.ActualPrice, product.Discount.Type, product.Discount.Value, product.FinalPrice,
		product.Status, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.ProductType == "" || product.ActualPrice < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidRequest
	}
	product.FinalPrice = pricing.FinalPrice(product.ActualPrice, product.Discount)
	product.Status = statusForStock(product.Stock)
	product.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, image_url = $3, description = $4, product_type = $5, sub_type = $6,
			stock = $7, actual_price = $8, discount_type = $9, discount_value = $10,
			final_price = $11, status = $12, updated_at = $13
		WHERE id = $1
	`, product.ID, product.Name, product.ImageURL, product.Description, product.ProductType, product.SubType,
		product.Stock, product.ActualPrice, product.Discount.Type, product.Discount.Value,
		product.FinalPrice, product.Status, product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCart(ctx context.Context, buyerID string) ([]domain.CartItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, image_url, unit_price, qty, added_at
		FROM cart_items
		WHERE buyer_id = $1
		ORDER BY added_at ASC
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0, 16)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.ImageURL, &item.UnitPrice, &item.Qty, &item.AddedAt); err != nil {
			return nil, err
		}
		item.AddedAt = item.AddedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertCartItem(ctx context.Context, buyerID string, item domain.CartItem) error {
	if buyerID == "" || item.ProductID == "" || item.Qty < 1 {
		return store.ErrInvalidRequest
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (buyer_id, product_id, name, image_url, unit_price, qty, added_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (buyer_id, product_id)
		DO UPDATE SET name = EXCLUDED.name, image_url = EXCLUDED.image_url,
			unit_price = EXCLUDED.unit_price, qty = EXCLUDED.qty
	`, buyerID, item.ProductID, item.Name, item.ImageURL, item.UnitPrice, item.Qty, item.AddedAt)
	return err
}

func (s *Store) RemoveCartItem(ctx context.Context, buyerID string, productID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE buyer_id = $1 AND product_id = $2
	`, buyerID, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, buyerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, buyerID)
	return err
}

const orderColumns = `id, buyer_id, buyer_name, source, total_products, product_price, gst,
	convenience_fee, total_amount, gateway_order_id, payment_id, signature, status,
	ship_street, ship_city, ship_state, ship_zip_code, ship_country, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.BuyerName, &o.Source, &o.TotalProducts, &o.ProductPrice,
		&o.GST, &o.ConvenienceFee, &o.TotalAmount, &o.GatewayOrderID, &o.PaymentID, &o.Signature,
		&o.Status, &o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode, &o.ShippingAddress.Country, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

func (s *Store) CreatePendingOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.BuyerID == "" || len(order.Items) == 0 || order.GatewayOrderID == "" {
		return nil, store.ErrInvalidRequest
	}
	if !order.ShippingAddress.Complete() {
		return nil, store.ErrInvalidRequest
	}
	if order.ID == "" {
		order.ID = xid.New("hho")
	}
	now := time.Now().UTC()
	order.Status = domain.OrderStatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO orders (
			id, buyer_id, buyer_name, source, total_products, product_price, gst,
			convenience_fee, total_amount, gateway_order_id, payment_id, signature, status,
			ship_street, ship_city, ship_state, ship_zip_code, ship_country, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`, order.ID, order.BuyerID, order.BuyerName, order.Source, order.TotalProducts, order.ProductPrice,
		order.GST, order.ConvenienceFee, order.TotalAmount, order.GatewayOrderID, order.PaymentID,
		order.Signature, order.Status, order.ShippingAddress.Street, order.ShippingAddress.City,
		order.ShippingAddress.State, order.ShippingAddress.ZipCode, order.ShippingAddress.Country,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}

	for _, item := range order.Items {
		if item.ProductID == "" || item.Qty < 1 {
			return nil, store.ErrInvalidRequest
		}
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, image_url, unit_price, qty)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, order.ID, item.ProductID, item.Name, item.ImageURL, item.UnitPrice, item.Qty)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	saved := order
	return &saved, nil
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	items, err := s.loadOrderItems(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) loadOrderItems(ctx context.Context, q queryer, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, name, image_url, unit_price, qty
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderLine, 0, 8)
	for rows.Next() {
		var item domain.OrderLine
		if err := rows.Scan(&item.ProductID, &item.Name, &item.ImageURL, &item.UnitPrice, &item.Qty); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SettleOrder runs the whole settlement as one serializable
// transaction: fresh stock reads under row locks, per-line shortfall
// aborts, decrements with status flips, the order moving to placed,
// the financial summary absorbing the sale, and the buyer's cart
// clearing when the order came from it. A concurrent settlement of the
// same units either serializes behind the locks or aborts, so each
// unit of stock is decremented at most once.
func (s *Store) SettleOrder(ctx context.Context, orderID string, paymentID string, signature string) (*domain.Order, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	row := pgTx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	items, err := s.loadOrderItems(ctx, pgTx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	if order.Status == domain.OrderStatusPlaced && order.PaymentID == paymentID {
		return &order, nil
	}
	if order.Status != domain.OrderStatusPending {
		return nil, store.ErrInvalidRequest
	}

	productIDs := uniqueProductIDs(items)
	stockRows, err := pgTx.QueryContext(ctx, `
		SELECT id, stock, status
		FROM products
		WHERE id = ANY($1)
		FOR UPDATE
	`, productIDs)
	if err != nil {
		return nil, err
	}
	type productState struct {
		stock  int
		status string
	}
	stockMap := make(map[string]productState, len(productIDs))
	for stockRows.Next() {
		var id string
		var state productState
		if err := stockRows.Scan(&id, &state.stock, &state.status); err != nil {
			_ = stockRows.Close()
			return nil, err
		}
		stockMap[id] = state
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, err
	}
	_ = stockRows.Close()

	need := make(map[string]int, len(items))
	nameByID := make(map[string]string, len(items))
	for _, item := range items {
		need[item.ProductID] += item.Qty
		nameByID[item.ProductID] = item.Name
	}
	for productID, qty := range need {
		state, ok := stockMap[productID]
		if !ok || state.status != domain.ProductStatusActive || state.stock < qty {
			return nil, fmt.Errorf("%s: %w", nameByID[productID], store.ErrOutOfStock)
		}
	}

	now := time.Now().UTC()
	for productID, qty := range need {
		remaining := stockMap[productID].stock - qty
		_, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = $2, status = $3, updated_at = $4
			WHERE id = $1
		`, productID, remaining, statusForStock(remaining), now)
		if err != nil {
			return nil, err
		}
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, payment_id = $3, signature = $4, updated_at = $5
		WHERE id = $1
	`, order.ID, domain.OrderStatusPlaced, paymentID, signature, now)
	if err != nil {
		return nil, err
	}

	summary, err := lockFinancialSummary(ctx, pgTx)
	if err != nil {
		return nil, err
	}
	ledger.ApplySale(summary, pricing.Quote{
		TotalProducts:  order.TotalProducts,
		ProductPrice:   order.ProductPrice,
		GST:            order.GST,
		ConvenienceFee: order.ConvenienceFee,
		TotalAmount:    order.TotalAmount,
	})
	if err := saveFinancialSummary(ctx, pgTx, summary, now); err != nil {
		return nil, err
	}

	if order.Source == domain.OrderSourceCart {
		_, err := pgTx.ExecContext(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, order.BuyerID)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusPlaced
	order.PaymentID = paymentID
	order.Signature = signature
	order.UpdatedAt = now
	return &order, nil
}

func (s *Store) MarkOrderFailed(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transitionPendingOrder(ctx, orderID, domain.OrderStatusFailed)
}

func (s *Store) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transitionPendingOrder(ctx, orderID, domain.OrderStatusCancelled)
}

func (s *Store) transitionPendingOrder(ctx context.Context, orderID string, status string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+orderColumns+`
	`, orderID, status)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyOrderMiss(ctx, orderID)
		}
		return nil, err
	}

	items, err := s.loadOrderItems(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (s *Store) AdvanceOrderStatus(ctx context.Context, orderID string, status string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
			AND ((status = 'placed' AND $2 = 'shipped') OR (status = 'shipped' AND $2 = 'delivered'))
		RETURNING `+orderColumns+`
	`, orderID, status)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyOrderMiss(ctx, orderID)
		}
		return nil, err
	}

	items, err := s.loadOrderItems(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// classifyOrderMiss tells a missing order apart from one in the wrong
// state after a guarded UPDATE matched no rows.
func (s *Store) classifyOrderMiss(ctx context.Context, orderID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)
	`, orderID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrInvalidRequest
	}
	return store.ErrNotFound
}

func (s *Store) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return s.collectOrders(ctx, rows)
}

func (s *Store) ListOrdersByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, buyerID, limit)
	if err != nil {
		return nil, err
	}
	return s.collectOrders(ctx, rows)
}

func (s *Store) collectOrders(ctx context.Context, rows *sql.Rows) ([]domain.Order, error) {
	defer rows.Close()

	orders := make([]domain.Order, 0, 32)
	ids := make([]string, 0, 32)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, image_url, unit_price, qty
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	itemMap := make(map[string][]domain.OrderLine, len(ids))
	for itemRows.Next() {
		var orderID string
		var item domain.OrderLine
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.ImageURL, &item.UnitPrice, &item.Qty); err != nil {
			return nil, err
		}
		itemMap[orderID] = append(itemMap[orderID], item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemMap[orders[i].ID]
	}
	return orders, nil
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func lockFinancialSummary(ctx context.Context, q rowQueryer) (*domain.FinancialSummary, error) {
	var summary domain.FinancialSummary
	err := q.QueryRowContext(ctx, `
		SELECT capital, expense, net_profit, total_inventory_cost, total_revenue, updated_at
		FROM financial_summary
		WHERE id = 1
		FOR UPDATE
	`).Scan(&summary.Capital, &summary.Expense, &summary.NetProfit, &summary.TotalInventoryCost,
		&summary.TotalRevenue, &summary.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLedgerNotFound
		}
		return nil, err
	}
	return &summary, nil
}

func saveFinancialSummary(ctx context.Context, q execer, summary *domain.FinancialSummary, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE financial_summary
		SET capital = $1, expense = $2, net_profit = $3, total_inventory_cost = $4,
			total_revenue = $5, updated_at = $6
		WHERE id = 1
	`, summary.Capital, summary.Expense, summary.NetProfit, summary.TotalInventoryCost,
		summary.TotalRevenue, at)
	return err
}

func (s *Store) GetFinancialSummary(ctx context.Context) (*domain.FinancialSummary, error) {
	var summary domain.FinancialSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT capital, expense, net_profit, total_inventory_cost, total_revenue, updated_at
		FROM financial_summary
		WHERE id = 1
	`).Scan(&summary.Capital, &summary.Expense, &summary.NetProfit, &summary.TotalInventoryCost,
		&summary.TotalRevenue, &summary.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLedgerNotFound
		}
		return nil, err
	}
	summary.UpdatedAt = summary.UpdatedAt.UTC()
	return &summary, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.Name == "" || item.Category == "" || item.Quantity < 1 || item.UnitCost <= 0 {
		return nil, store.ErrInvalidRequest
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}
	item.TotalCost = item.UnitCost * float64(item.Quantity)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	summary, err := lockFinancialSummary(ctx, pgTx)
	if err != nil {
		return nil, err
	}
	if err := ledger.ApplyInventoryChange(summary, item.TotalCost); err != nil {
		return nil, err
	}
	if err := saveFinancialSummary(ctx, pgTx, summary, time.Now().UTC()); err != nil {
		return nil, err
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO inventory_items (id, name, category, quantity, unit_cost, total_cost, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, item.Name, item.Category, item.Quantity, item.UnitCost, item.TotalCost, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	created := item
	return &created, nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.Name == "" || item.Category == "" || item.Quantity < 1 || item.UnitCost <= 0 {
		return nil, store.ErrInvalidRequest
	}
	item.TotalCost = item.UnitCost * float64(item.Quantity)

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var currentTotal float64
	var createdAt time.Time
	err = pgTx.QueryRowContext(ctx, `
		SELECT total_cost, created_at
		FROM inventory_items
		WHERE id = $1
		FOR UPDATE
	`, item.ID).Scan(&currentTotal, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	item.CreatedAt = createdAt.UTC()

	summary, err := lockFinancialSummary(ctx, pgTx)
	if err != nil {
		return nil, err
	}
	if err := ledger.ApplyInventoryChange(summary, item.TotalCost-currentTotal); err != nil {
		return nil, err
	}
	if err := saveFinancialSummary(ctx, pgTx, summary, time.Now().UTC()); err != nil {
		return nil, err
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = $2, category = $3, quantity = $4, unit_cost = $5, total_cost = $6
		WHERE id = $1
	`, item.ID, item.Name, item.Category, item.Quantity, item.UnitCost, item.TotalCost)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	updated := item
	return &updated, nil
}

func (s *Store) DeleteInventoryItem(ctx context.Context, itemID string) error {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback() }()

	var currentTotal float64
	err = pgTx.QueryRowContext(ctx, `
		SELECT total_cost
		FROM inventory_items
		WHERE id = $1
		FOR UPDATE
	`, itemID).Scan(&currentTotal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}

	summary, err := lockFinancialSummary(ctx, pgTx)
	if err != nil {
		return err
	}
	if err := ledger.ApplyInventoryChange(summary, -currentTotal); err != nil {
		return err
	}
	if err := saveFinancialSummary(ctx, pgTx, summary, time.Now().UTC()); err != nil {
		return err
	}

	_, err = pgTx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}

	return pgTx.Commit()
}

func (s *Store) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, quantity, unit_cost, total_cost, created_at
		FROM inventory_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 64)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.UnitCost, &item.TotalCost, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateMedicineRecord(ctx context.Context, record domain.MedicineRecord) (*domain.MedicineRecord, error) {
	if record.PoultryType == "" || record.MedicineName == "" || record.Cost <= 0 {
		return nil, store.ErrInvalidRequest
	}
	if record.ID == "" {
		record.ID = xid.New("med")
	}
	if record.AdministeredAt.IsZero() {
		record.AdministeredAt = time.Now().UTC()
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	summary, err := lockFinancialSummary(ctx, pgTx)
	if err != nil {
		return nil, err
	}
	ledger.ApplyExpense(summary, record.Cost)
	if err := saveFinancialSummary(ctx, pgTx, summary, time.Now().UTC()); err != nil {
		return nil, err
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO medicine_records (id, poultry_type, medicine_name, dosage, cost, administered_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, record.ID, record.PoultryType, record.MedicineName, record.Dosage, record.Cost, record.AdministeredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	created := record
	return &created, nil
}

func (s *Store) ListMedicineRecords(ctx context.Context, limit int) ([]domain.MedicineRecord, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poultry_type, medicine_name, dosage, cost, administered_at
		FROM medicine_records
		ORDER BY administered_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.MedicineRecord, 0, limit)
	for rows.Next() {
		var record domain.MedicineRecord
		if err := rows.Scan(&record.ID, &record.PoultryType, &record.MedicineName, &record.Dosage, &record.Cost, &record.AdministeredAt); err != nil {
			return nil, err
		}
		record.AdministeredAt = record.AdministeredAt.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateEggCollection(ctx context.Context, collection domain.EggCollection) (*domain.EggCollection, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO egg_collections (id, date, small, medium, large, extra_large, damaged, total, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, collection.ID, collection.Date, collection.Small, collection.Medium, collection.Large,
		collection.ExtraLarge, collection.Damaged, collection.Total, collection.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}
	created := collection
	return &created, nil
}

func (s *Store) UpdateEggCollection(ctx context.Context, collection domain.EggCollection) (*domain.EggCollection, error) {
	if collection.Small < 0 || collection.Medium < 0 || collection.Large < 0 || collection.ExtraLarge < 0 || collection.Damaged < 0 {
		return nil, store.ErrInvalidRequest
	}
	collection.Total = collection.Small + collection.Medium + collection.Large + collection.ExtraLarge

	row := s.db.QueryRowContext(ctx, `
		UPDATE egg_collections
		SET date = COALESCE($2::date, date), small = $3, medium = $4, large = $5,
			extra_large = $6, damaged = $7, total = $8
		WHERE id = $1
		RETURNING id, date, small, medium, large, extra_large, damaged, total, created_at
	`, collection.ID, nullDate(&collection.Date), collection.Small, collection.Medium, collection.Large,
		collection.ExtraLarge, collection.Damaged, collection.Total)

	var updated domain.EggCollection
	err := row.Scan(&updated.ID, &updated.Date, &updated.Small, &updated.Medium, &updated.Large,
		&updated.ExtraLarge, &updated.Damaged, &updated.Total, &updated.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	updated.Date = updated.Date.UTC()
	updated.CreatedAt = updated.CreatedAt.UTC()
	return &updated, nil
}

func (s *Store) DeleteEggCollection(ctx context.Context, collectionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM egg_collections WHERE id = $1`, collectionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListEggCollections(ctx context.Context, limit int) ([]domain.EggCollection, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, small, medium, large, extra_large, damaged, total, created_at
		FROM egg_collections
		ORDER BY date DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := make([]domain.EggCollection, 0, limit)
	for rows.Next() {
		var c domain.EggCollection
		if err := rows.Scan(&c.ID, &c.Date, &c.Small, &c.Medium, &c.Large, &c.ExtraLarge, &c.Damaged, &c.Total, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Date = c.Date.UTC()
		c.CreatedAt = c.CreatedAt.UTC()
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Name == "" || user.PasswordHash == "" {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (
			id, name, email, password_hash, role, email_verified, status,
			street, city, state, zip_code, country, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.EmailVerified, user.Status,
		user.Address.Street, user.Address.City, user.Address.State, user.Address.ZipCode,
		user.Address.Country, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidRequest
		}
		return err
	}
	return nil
}

const userColumns = `id, name, email, password_hash, role, email_verified, status,
	street, city, state, zip_code, country, created_at`

func scanUser(row interface{ Scan(...any) error }) (domain.UserAccount, error) {
	var u domain.UserAccount
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.EmailVerified, &u.Status,
		&u.Address.Street, &u.Address.City, &u.Address.State, &u.Address.ZipCode, &u.Address.Country,
		&u.CreatedAt)
	if err != nil {
		return domain.UserAccount{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM app_users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*domain.UserAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM app_users
		WHERE id = $1
	`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUserAddress(ctx context.Context, userID string, address domain.Address) (*domain.UserAccount, error) {
	if !address.Complete() {
		return nil, store.ErrInvalidRequest
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE app_users
		SET street = $2, city = $3, state = $4, zip_code = $5, country = $6
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, address.Street, address.City, address.State, address.ZipCode, address.Country)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateRefundRequest(ctx context.Context, refund domain.RefundRequest) (*domain.RefundRequest, error) {
	if refund.OrderID == "" || refund.PaymentID == "" || refund.Amount <= 0 {
		return nil, store.ErrInvalidRequest
	}
	if refund.ID == "" {
		refund.ID = xid.New("refund")
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refund_requests (id, order_id, payment_id, amount, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, refund.ID, refund.OrderID, refund.PaymentID, refund.Amount, refund.Reason, refund.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}
	created := refund
	return &created, nil
}

func (s *Store) ListRefundRequests(ctx context.Context, limit int) ([]domain.RefundRequest, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, payment_id, amount, reason, created_at
		FROM refund_requests
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refunds := make([]domain.RefundRequest, 0, limit)
	for rows.Next() {
		var refund domain.RefundRequest
		if err := rows.Scan(&refund.ID, &refund.OrderID, &refund.PaymentID, &refund.Amount, &refund.Reason, &refund.CreatedAt); err != nil {
			return nil, err
		}
		refund.CreatedAt = refund.CreatedAt.UTC()
		refunds = append(refunds, refund)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refunds, nil
}

func statusForStock(stock int) string {
	if stock < 1 {
		return domain.ProductStatusInactive
	}
	return domain.ProductStatusActive
}

func uniqueProductIDs(items []domain.OrderLine) []string {
	if len(items) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		set[item.ProductID] = struct{}{}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nowDateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

func nullDate(val *time.Time) any {
	if val == nil || val.IsZero() {
		return nil
	}
	return nowDateUTC(*val)
}
