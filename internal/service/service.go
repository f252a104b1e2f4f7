package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"henheaven/backend/internal/cache"
	"henheaven/backend/internal/domain"
	"henheaven/backend/internal/gateway"
	"henheaven/backend/internal/pricing"
	"henheaven/backend/internal/store"
)

var (
	ErrAddressRequired   = errors.New("shipping address required")
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrForbidden         = errors.New("admin role required")
)

const (
	catalogCacheKey = "catalog:active"
	catalogCacheTTL = 30 * time.Second
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo    store.Repository
	catalog cache.CatalogCache
	gateway gateway.Client
	logger  zerolog.Logger
}

func New(repo store.Repository, catalog cache.CatalogCache, gw gateway.Client, logger zerolog.Logger) *Service {
	if catalog == nil {
		catalog = cache.NoopCatalogCache{}
	}

	return &Service{
		repo:    repo,
		catalog: catalog,
		gateway: gw,
		logger:  logger,
	}
}

func (s *Service) requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *Service) requireActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.UserID == "" {
		return domain.Actor{}, ErrForbidden
	}
	return actor, nil
}

// ListProducts serves the public storefront catalog. The cache is a
// read accelerator only; stock decisions always hit the repository.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if cached, hit, err := s.catalog.Get(ctx, catalogCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache get failed")
	} else if hit {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Set(ctx, catalogCacheKey, products, catalogCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache set failed")
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.catalog.Invalidate(ctx, catalogCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidate failed")
	}
}

func validateDiscount(discount domain.Discount, actualPrice float64) error {
	switch discount.Type {
	case "":
		if discount.Value != 0 {
			return store.ErrInvalidRequest
		}
	case domain.DiscountPercentage:
		if discount.Value < 0 || discount.Value > 100 {
			return store.ErrInvalidRequest
		}
	case domain.DiscountAmount:
		if discount.Value < 0 || discount.Value > actualPrice {
			return store.ErrInvalidRequest
		}
	default:
		return store.ErrInvalidRequest
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.ProductType = strings.ToLower(strings.TrimSpace(req.ProductType))
	if req.Name == "" || req.ProductType == "" {
		return domain.Product{}, store.ErrInvalidRequest
	}
	if req.ActualPrice < 0 || req.Stock < 0 {
		return domain.Product{}, store.ErrInvalidRequest
	}
	if err := validateDiscount(req.Discount, req.ActualPrice); err != nil {
		return domain.Product{}, err
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:        req.Name,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Description: strings.TrimSpace(req.Description),
		ProductType: req.ProductType,
		SubType:     strings.ToLower(strings.TrimSpace(req.SubType)),
		Stock:       req.Stock,
		ActualPrice: req.ActualPrice,
		Discount:    req.Discount,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.ImageURL != nil {
		existing.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Description != nil {
		existing.Description = strings.TrimSpace(*req.Description)
	}
	if req.ProductType != nil {
		existing.ProductType = strings.ToLower(strings.TrimSpace(*req.ProductType))
	}
	if req.SubType != nil {
		existing.SubType = strings.ToLower(strings.TrimSpace(*req.SubType))
	}
	if req.Stock != nil {
		existing.Stock = *req.Stock
	}
	if req.ActualPrice != nil {
		existing.ActualPrice = *req.ActualPrice
	}
	if req.Discount != nil {
		existing.Discount = *req.Discount
	}

	if existing.Name == "" || existing.ProductType == "" || existing.ActualPrice < 0 || existing.Stock < 0 {
		return domain.Product{}, store.ErrInvalidRequest
	}
	if err := validateDiscount(existing.Discount, existing.ActualPrice); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.repo.UpdateProduct(ctx, *existing)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// Cart returns the actor's cart after refreshing every line against
// live product state. Inactive or deleted products drop out and
// quantities above stock clamp down; each correction surfaces as a
// warning rather than an error. With no stock changes in between the
// refresh is a no-op, so repeated calls converge.
func (s *Service) Cart(ctx context.Context) (domain.Cart, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	items, err := s.repo.GetCart(ctx, actor.UserID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{BuyerID: actor.UserID, Items: make([]domain.CartItem, 0, len(items))}
	for _, item := range items {
		product, err := s.repo.GetProductByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			if rerr := s.repo.RemoveCartItem(ctx, actor.UserID, item.ProductID); rerr != nil && !errors.Is(rerr, store.ErrNotFound) {
				return domain.Cart{}, rerr
			}
			cart.Warnings = append(cart.Warnings, fmt.Sprintf("%s is no longer available and was removed", item.Name))
			continue
		}
		if err != nil {
			return domain.Cart{}, err
		}
		if product.Status != domain.ProductStatusActive {
			if rerr := s.repo.RemoveCartItem(ctx, actor.UserID, item.ProductID); rerr != nil && !errors.Is(rerr, store.ErrNotFound) {
				return domain.Cart{}, rerr
			}
			cart.Warnings = append(cart.Warnings, fmt.Sprintf("%s is out of stock and was removed", product.Name))
			continue
		}

		changed := false
		if item.Qty > product.Stock {
			cart.Warnings = append(cart.Warnings, fmt.Sprintf("%s quantity reduced to %d", product.Name, product.Stock))
			item.Qty = product.Stock
			changed = true
		}
		if item.UnitPrice != product.FinalPrice || item.Name != product.Name || item.ImageURL != product.ImageURL {
			item.UnitPrice = product.FinalPrice
			item.Name = product.Name
			item.ImageURL = product.ImageURL
			changed = true
		}
		if changed {
			if err := s.repo.UpsertCartItem(ctx, actor.UserID, item); err != nil {
				return domain.Cart{}, err
			}
		}
		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

func (s *Service) AddToCart(ctx context.Context, req domain.CartAddRequest) (domain.Cart, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if req.ProductID == "" || req.Qty < 1 {
		return domain.Cart{}, store.ErrInvalidRequest
	}

	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return domain.Cart{}, err
	}
	if product.Status != domain.ProductStatusActive || product.Stock < 1 {
		return domain.Cart{}, store.ErrOutOfStock
	}

	qty := req.Qty
	items, err := s.repo.GetCart(ctx, actor.UserID)
	if err != nil {
		return domain.Cart{}, err
	}
	for _, existing := range items {
		if existing.ProductID == req.ProductID {
			qty += existing.Qty
			break
		}
	}
	if qty > product.Stock {
		qty = product.Stock
	}

	err = s.repo.UpsertCartItem(ctx, actor.UserID, domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		UnitPrice: product.FinalPrice,
		Qty:       qty,
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return s.Cart(ctx)
}

func (s *Service) UpdateCartItem(ctx context.Context, productID string, qty int) (domain.Cart, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if productID == "" || qty < 1 {
		return domain.Cart{}, store.ErrInvalidRequest
	}

	items, err := s.repo.GetCart(ctx, actor.UserID)
	if err != nil {
		return domain.Cart{}, err
	}
	var line *domain.CartItem
	for i := range items {
		if items[i].ProductID == productID {
			line = &items[i]
			break
		}
	}
	if line == nil {
		return domain.Cart{}, store.ErrNotFound
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if qty > product.Stock {
		qty = product.Stock
	}
	if qty < 1 {
		return domain.Cart{}, store.ErrOutOfStock
	}

	line.Qty = qty
	line.UnitPrice = product.FinalPrice
	if err := s.repo.UpsertCartItem(ctx, actor.UserID, *line); err != nil {
		return domain.Cart{}, err
	}
	return s.Cart(ctx)
}

func (s *Service) RemoveCartItem(ctx context.Context, productID string) (domain.Cart, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.RemoveCartItem(ctx, actor.UserID, productID); err != nil {
		return domain.Cart{}, err
	}
	return s.Cart(ctx)
}

func (s *Service) ClearCart(ctx context.Context) error {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return err
	}
	return s.repo.ClearCart(ctx, actor.UserID)
}

func (s *Service) UpdateAddress(ctx context.Context, req domain.AddressUpdateRequest) (domain.Address, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Address{}, err
	}

	address := domain.Address{
		Street:  strings.TrimSpace(req.Street),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		ZipCode: strings.TrimSpace(req.ZipCode),
		Country: strings.TrimSpace(req.Country),
	}
	if !address.Complete() {
		return domain.Address{}, store.ErrInvalidRequest
	}

	user, err := s.repo.UpdateUserAddress(ctx, actor.UserID, address)
	if err != nil {
		return domain.Address{}, err
	}
	return user.Address, nil
}

// BeginCheckout opens a gateway order for the actor's cart or a single
// buy-now product. Nothing is decremented here: the pending order only
// freezes lines, the quote, and the address snapshot. A buyer without
// a saved address is refused before the gateway is contacted.
func (s *Service) BeginCheckout(ctx context.Context, req domain.BeginCheckoutRequest) (domain.BeginCheckoutResponse, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.BeginCheckoutResponse{}, err
	}

	user, err := s.repo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return domain.BeginCheckoutResponse{}, err
	}
	if !user.Address.Complete() {
		return domain.BeginCheckoutResponse{}, ErrAddressRequired
	}

	var lines []domain.OrderLine
	source := req.Source
	switch source {
	case "", domain.OrderSourceCart:
		source = domain.OrderSourceCart
		cart, err := s.Cart(ctx)
		if err != nil {
			return domain.BeginCheckoutResponse{}, err
		}
		if len(cart.Items) == 0 {
			return domain.BeginCheckoutResponse{}, store.ErrInvalidRequest
		}
		for _, item := range cart.Items {
			lines = append(lines, domain.OrderLine{
				ProductID: item.ProductID,
				Name:      item.Name,
				ImageURL:  item.ImageURL,
				UnitPrice: item.UnitPrice,
				Qty:       item.Qty,
			})
		}
	case domain.OrderSourceBuyNow:
		if req.ProductID == "" || req.Qty < 1 {
			return domain.BeginCheckoutResponse{}, store.ErrInvalidRequest
		}
		product, err := s.repo.GetProductByID(ctx, req.ProductID)
		if err != nil {
			return domain.BeginCheckoutResponse{}, err
		}
		if product.Status != domain.ProductStatusActive || product.Stock < req.Qty {
			return domain.BeginCheckoutResponse{}, store.ErrOutOfStock
		}
		lines = []domain.OrderLine{{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: product.FinalPrice,
			Qty:       req.Qty,
		}}
	default:
		return domain.BeginCheckoutResponse{}, store.ErrInvalidRequest
	}

	quote, err := pricing.Compute(lines)
	if err != nil {
		return domain.BeginCheckoutResponse{}, store.ErrInvalidRequest
	}
	if quote.AmountPaise() < 1 {
		return domain.BeginCheckoutResponse{}, store.ErrInvalidRequest
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, quote.AmountPaise(), "INR", actor.UserID)
	if err != nil {
		return domain.BeginCheckoutResponse{}, err
	}

	order, err := s.repo.CreatePendingOrder(ctx, domain.Order{
		BuyerID:         actor.UserID,
		BuyerName:       user.Name,
		Source:          source,
		Items:           lines,
		TotalProducts:   quote.TotalProducts,
		ProductPrice:    quote.ProductPrice,
		GST:             quote.GST,
		ConvenienceFee:  quote.ConvenienceFee,
		TotalAmount:     quote.TotalAmount,
		GatewayOrderID:  gwOrder.ID,
		ShippingAddress: user.Address,
	})
	if err != nil {
		return domain.BeginCheckoutResponse{}, err
	}

	return domain.BeginCheckoutResponse{
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.ID,
		GatewayKeyID:   s.gateway.KeyID(),
		AmountPaise:    gwOrder.AmountPaise,
		Currency:       gwOrder.Currency,
		TotalAmount:    pricing.Round2(quote.TotalAmount),
	}, nil
}

// ConfirmCheckout settles a pending order after the gateway reports
// payment. The signature must verify before any write happens. When
// settlement itself fails after a verified payment, the order is
// marked failed and a refund request is recorded for reconciliation.
func (s *Service) ConfirmCheckout(ctx context.Context, req domain.ConfirmCheckoutRequest) (domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return domain.Order{}, store.ErrInvalidRequest
	}

	order, err := s.repo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.BuyerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return domain.Order{}, ErrForbidden
	}
	if req.GatewayOrderID != "" && req.GatewayOrderID != order.GatewayOrderID {
		return domain.Order{}, ErrSignatureMismatch
	}
	if !s.gateway.VerifySignature(order.GatewayOrderID, req.PaymentID, req.Signature) {
		return domain.Order{}, ErrSignatureMismatch
	}

	settled, err := s.repo.SettleOrder(ctx, order.ID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidRequest) {
			return domain.Order{}, err
		}
		s.compensateFailedSettlement(ctx, *order, req.PaymentID, err)
		return domain.Order{}, err
	}

	return *settled, nil
}

// compensateFailedSettlement runs after a verified payment could not
// settle. The money has left the buyer, so the order flips to failed
// and a refund request is queued; neither step may block the caller.
func (s *Service) compensateFailedSettlement(ctx context.Context, order domain.Order, paymentID string, cause error) {
	if _, err := s.repo.MarkOrderFailed(ctx, order.ID); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to mark order failed")
	}
	_, err := s.repo.CreateRefundRequest(ctx, domain.RefundRequest{
		OrderID:   order.ID,
		PaymentID: paymentID,
		Amount:    order.TotalAmount,
		Reason:    cause.Error(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to record refund request")
		return
	}
	s.logger.Warn().Str("order_id", order.ID).Str("payment_id", paymentID).Err(cause).Msg("settlement failed after payment, refund queued")
}

func (s *Service) CancelCheckout(ctx context.Context, orderID string) (domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.BuyerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return domain.Order{}, ErrForbidden
	}

	cancelled, err := s.repo.CancelOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return *cancelled, nil
}

func (s *Service) MyOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOrdersByBuyer(ctx, actor.UserID, limit)
}

func (s *Service) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, limit)
}

func (s *Service) AdvanceOrderStatus(ctx context.Context, orderID string, status string) (domain.Order, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Order{}, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != domain.OrderStatusShipped && status != domain.OrderStatusDelivered {
		return domain.Order{}, store.ErrInvalidRequest
	}

	order, err := s.repo.AdvanceOrderStatus(ctx, orderID, status)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) FinancialSummary(ctx context.Context) (domain.FinancialSummary, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.FinancialSummary{}, err
	}
	summary, err := s.repo.GetFinancialSummary(ctx)
	if err != nil {
		return domain.FinancialSummary{}, err
	}
	return *summary, nil
}

func (s *Service) AddInventoryItem(ctx context.Context, req domain.InventoryItemRequest) (domain.InventoryItem, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.InventoryItem{}, err
	}

	item, err := s.repo.CreateInventoryItem(ctx, domain.InventoryItem{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return *item, nil
}

func (s *Service) UpdateInventoryItem(ctx context.Context, itemID string, req domain.InventoryItemRequest) (domain.InventoryItem, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.InventoryItem{}, err
	}

	item, err := s.repo.UpdateInventoryItem(ctx, domain.InventoryItem{
		ID:       itemID,
		Name:     strings.TrimSpace(req.Name),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return *item, nil
}

func (s *Service) RemoveInventoryItem(ctx context.Context, itemID string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteInventoryItem(ctx, itemID)
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListInventoryItems(ctx)
}

func (s *Service) RecordMedicine(ctx context.Context, req domain.MedicineRecordRequest) (domain.MedicineRecord, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.MedicineRecord{}, err
	}

	record, err := s.repo.CreateMedicineRecord(ctx, domain.MedicineRecord{
		PoultryType:  strings.ToLower(strings.TrimSpace(req.PoultryType)),
		MedicineName: strings.TrimSpace(req.MedicineName),
		Dosage:       strings.TrimSpace(req.Dosage),
		Cost:         req.Cost,
	})
	if err != nil {
		return domain.MedicineRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListMedicineRecords(ctx context.Context, limit int) ([]domain.MedicineRecord, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListMedicineRecords(ctx, limit)
}

func (s *Service) CreateEggCollection(ctx context.Context, req domain.EggCollectionRequest) (domain.EggCollection, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.EggCollection{}, err
	}
	date, err := parseCollectionDate(req.Date)
	if err != nil {
		return domain.EggCollection{}, err
	}

	collection, err := s.repo.CreateEggCollection(ctx, domain.EggCollection{
		Date:       date,
		Small:      req.Small,
		Medium:     req.Medium,
		Large:      req.Large,
		ExtraLarge: req.ExtraLarge,
		Damaged:    req.Damaged,
	})
	if err != nil {
		return domain.EggCollection{}, err
	}
	return *collection, nil
}

func (s *Service) UpdateEggCollection(ctx context.Context, collectionID string, req domain.EggCollectionRequest) (domain.EggCollection, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.EggCollection{}, err
	}
	date, err := parseCollectionDate(req.Date)
	if err != nil {
		return domain.EggCollection{}, err
	}

	collection, err := s.repo.UpdateEggCollection(ctx, domain.EggCollection{
		ID:         collectionID,
		Date:       date,
		Small:      req.Small,
		Medium:     req.Medium,
		Large:      req.Large,
		ExtraLarge: req.ExtraLarge,
		Damaged:    req.Damaged,
	})
	if err != nil {
		return domain.EggCollection{}, err
	}
	return *collection, nil
}

func (s *Service) DeleteEggCollection(ctx context.Context, collectionID string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteEggCollection(ctx, collectionID)
}

func (s *Service) ListEggCollections(ctx context.Context, limit int) ([]domain.EggCollection, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListEggCollections(ctx, limit)
}

func (s *Service) ListRefundRequests(ctx context.Context, limit int) ([]domain.RefundRequest, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListRefundRequests(ctx, limit)
}

func parseCollectionDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, store.ErrInvalidRequest
	}
	return date, nil
}
