package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"henheaven/backend/internal/domain"
	"henheaven/backend/internal/gateway"
	"henheaven/backend/internal/store"
	"henheaven/backend/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *gateway.Mock) {
	t.Helper()
	repo := memory.NewSeeded()
	gw := gateway.NewMock("test-gateway-secret")
	svc := New(repo, nil, gw, zerolog.Nop())
	return svc, repo, gw
}

func buyerCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		UserID: "user-buyer",
		Name:   "Asha Buyer",
		Role:   domain.RoleBuyer,
	})
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		UserID: "user-admin",
		Name:   "Farm Admin",
		Role:   domain.RoleAdmin,
	})
}

func createProduct(t *testing.T, svc *Service, name string, price float64, stock int) domain.Product {
	t.Helper()
	product, err := svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		Name:        name,
		ProductType: "eggs",
		SubType:     "white",
		Stock:       stock,
		ActualPrice: price,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestCheckoutFromCartSettlesOrderAndLedger(t *testing.T) {
	svc, repo, gw := newTestService(t)
	product := createProduct(t, svc, "Test Eggs 6pk", 150, 10)

	ctx := buyerCtx()
	if _, err := svc.AddToCart(ctx, domain.CartAddRequest{ProductID: product.ID, Qty: 2}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	before, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary before: %v", err)
	}

	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}
	if begin.TotalAmount != 360 {
		t.Fatalf("expected total 360, got %v", begin.TotalAmount)
	}
	if begin.AmountPaise != 36000 {
		t.Fatalf("expected 36000 paise, got %d", begin.AmountPaise)
	}
	if begin.Currency != "INR" {
		t.Fatalf("expected INR, got %q", begin.Currency)
	}

	// Nothing is decremented until the payment settles.
	fresh, err := svc.Product(ctx, product.ID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if fresh.Stock != 10 {
		t.Fatalf("expected stock untouched at begin, got %d", fresh.Stock)
	}

	order, err := svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_test_1",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_test_1"),
	})
	if err != nil {
		t.Fatalf("confirm checkout: %v", err)
	}
	if order.Status != domain.OrderStatusPlaced {
		t.Fatalf("expected placed, got %s", order.Status)
	}
	if order.GST != 54 || order.ConvenienceFee != 6 || order.TotalAmount != 360 {
		t.Fatalf("unexpected quote on order: gst=%v fee=%v total=%v", order.GST, order.ConvenienceFee, order.TotalAmount)
	}

	fresh, err = svc.Product(ctx, product.ID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if fresh.Stock != 8 {
		t.Fatalf("expected stock 8 after settlement, got %d", fresh.Stock)
	}

	cart, err := svc.Cart(ctx)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cart cleared after settlement, got %d items", len(cart.Items))
	}

	after, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary after: %v", err)
	}
	if after.TotalRevenue-before.TotalRevenue != 360 {
		t.Fatalf("expected revenue to grow by 360, grew by %v", after.TotalRevenue-before.TotalRevenue)
	}
	if after.NetProfit-before.NetProfit != 300 {
		t.Fatalf("expected net profit to grow by 300, grew by %v", after.NetProfit-before.NetProfit)
	}
}

func TestConfirmCheckoutRejectsTamperedSignature(t *testing.T) {
	svc, repo, gw := newTestService(t)
	product := createProduct(t, svc, "Sig Eggs", 100, 5)

	ctx := buyerCtx()
	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       1,
	})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}

	_, err = svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_test_2",
		Signature:      gw.Sign(begin.GatewayOrderID, "some-other-payment"),
	})
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}

	fresh, err := svc.Product(ctx, product.ID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if fresh.Stock != 5 {
		t.Fatalf("expected stock untouched after rejected signature, got %d", fresh.Stock)
	}

	pending, err := repo.GetOrderByID(context.Background(), begin.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if pending.Status != domain.OrderStatusPending {
		t.Fatalf("expected order still pending, got %s", pending.Status)
	}
}

func TestConfirmCheckoutIsIdempotent(t *testing.T) {
	svc, _, gw := newTestService(t)
	product := createProduct(t, svc, "Replay Eggs", 100, 5)

	ctx := buyerCtx()
	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       2,
	})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}

	req := domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_replay",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_replay"),
	}
	if _, err := svc.ConfirmCheckout(ctx, req); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	order, err := svc.ConfirmCheckout(ctx, req)
	if err != nil {
		t.Fatalf("replayed confirm: %v", err)
	}
	if order.Status != domain.OrderStatusPlaced {
		t.Fatalf("expected placed on replay, got %s", order.Status)
	}

	fresh, err := svc.Product(ctx, product.ID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if fresh.Stock != 3 {
		t.Fatalf("expected stock decremented once, got %d", fresh.Stock)
	}
}

func TestBeginCheckoutRequiresShippingAddress(t *testing.T) {
	svc, _, _ := newTestService(t)

	// The seeded admin account has no saved address.
	_, err := svc.BeginCheckout(adminCtx(), domain.BeginCheckoutRequest{})
	if !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected address gate, got %v", err)
	}
}

func TestBeginCheckoutRejectsEmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.BeginCheckout(buyerCtx(), domain.BeginCheckoutRequest{})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for empty cart, got %v", err)
	}
}

func TestBeginCheckoutSurfacesGatewayOutage(t *testing.T) {
	svc, _, gw := newTestService(t)
	product := createProduct(t, svc, "Outage Eggs", 100, 5)
	gw.Fail = true

	_, err := svc.BeginCheckout(buyerCtx(), domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       1,
	})
	if !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("expected gateway unavailable, got %v", err)
	}
}

func TestConcurrentConfirmationsNeverOversell(t *testing.T) {
	svc, _, gw := newTestService(t)
	product := createProduct(t, svc, "Scarce Eggs", 100, 5)

	ctx := buyerCtx()
	attempts := 8
	begins := make([]domain.BeginCheckoutResponse, 0, attempts)
	for i := 0; i < attempts; i++ {
		begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
			Source:    domain.OrderSourceBuyNow,
			ProductID: product.ID,
			Qty:       1,
		})
		if err != nil {
			t.Fatalf("begin checkout %d: %v", i, err)
		}
		begins = append(begins, begin)
	}

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i, begin := range begins {
		wg.Add(1)
		go func(i int, begin domain.BeginCheckoutResponse) {
			defer wg.Done()
			paymentID := "pay_race"
			_, err := svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
				OrderID:        begin.OrderID,
				GatewayOrderID: begin.GatewayOrderID,
				PaymentID:      paymentID,
				Signature:      gw.Sign(begin.GatewayOrderID, paymentID),
			})
			results[i] = err
		}(i, begin)
	}
	wg.Wait()

	settled, rejected := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			settled++
		case errors.Is(err, store.ErrOutOfStock):
			rejected++
		default:
			t.Fatalf("unexpected confirm error: %v", err)
		}
	}
	if settled != 5 || rejected != 3 {
		t.Fatalf("expected 5 settled and 3 rejected, got %d/%d", settled, rejected)
	}

	fresh, err := svc.Product(ctx, product.ID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if fresh.Stock != 0 {
		t.Fatalf("expected stock 0 after race, got %d", fresh.Stock)
	}
	if fresh.Status != domain.ProductStatusInactive {
		t.Fatalf("expected inactive at zero stock, got %s", fresh.Status)
	}
}

func TestFailedSettlementQueuesRefund(t *testing.T) {
	svc, repo, gw := newTestService(t)
	product := createProduct(t, svc, "Vanishing Eggs", 100, 2)

	ctx := buyerCtx()
	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       2,
	})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}

	// Stock drains between payment and settlement.
	zero := 0
	if _, err := svc.UpdateProduct(adminCtx(), product.ID, domain.ProductUpdateRequest{Stock: &zero}); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	_, err = svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_refund",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_refund"),
	})
	if !errors.Is(err, store.ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}

	order, err := repo.GetOrderByID(context.Background(), begin.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != domain.OrderStatusFailed {
		t.Fatalf("expected failed order, got %s", order.Status)
	}

	refunds, err := svc.ListRefundRequests(adminCtx(), 10)
	if err != nil {
		t.Fatalf("list refunds: %v", err)
	}
	if len(refunds) != 1 {
		t.Fatalf("expected one refund request, got %d", len(refunds))
	}
	if refunds[0].OrderID != begin.OrderID || refunds[0].PaymentID != "pay_refund" {
		t.Fatalf("unexpected refund request %+v", refunds[0])
	}
	if refunds[0].Amount != order.TotalAmount {
		t.Fatalf("expected refund of %v, got %v", order.TotalAmount, refunds[0].Amount)
	}
}

func TestOutOfStockNamesTheProduct(t *testing.T) {
	svc, _, gw := newTestService(t)
	plenty := createProduct(t, svc, "Plentiful Eggs", 100, 50)
	scarce := createProduct(t, svc, "Scarce Eggs", 120, 2)

	ctx := buyerCtx()
	if _, err := svc.AddToCart(ctx, domain.CartAddRequest{ProductID: plenty.ID, Qty: 1}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if _, err := svc.AddToCart(ctx, domain.CartAddRequest{ProductID: scarce.ID, Qty: 2}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}

	// Only the second line drains between payment and settlement.
	zero := 0
	if _, err := svc.UpdateProduct(adminCtx(), scarce.ID, domain.ProductUpdateRequest{Stock: &zero}); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	_, err = svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_named",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_named"),
	})
	if !errors.Is(err, store.ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if !strings.Contains(err.Error(), "Scarce Eggs") {
		t.Fatalf("error must name the unavailable product, got %q", err.Error())
	}
	if strings.Contains(err.Error(), "Plentiful Eggs") {
		t.Fatalf("error must not blame the in-stock line, got %q", err.Error())
	}
}

func TestCancelCheckoutBlocksLateSettlement(t *testing.T) {
	svc, _, gw := newTestService(t)
	product := createProduct(t, svc, "Cancel Eggs", 100, 5)

	ctx := buyerCtx()
	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       1,
	})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}

	cancelled, err := svc.CancelCheckout(ctx, begin.OrderID)
	if err != nil {
		t.Fatalf("cancel checkout: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	_, err = svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_late",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_late"),
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for cancelled order, got %v", err)
	}

	refunds, err := svc.ListRefundRequests(adminCtx(), 10)
	if err != nil {
		t.Fatalf("list refunds: %v", err)
	}
	if len(refunds) != 0 {
		t.Fatalf("expected no refund for pre-settlement rejection, got %d", len(refunds))
	}
}

func TestCartRefreshClampsAndDrops(t *testing.T) {
	svc, _, _ := newTestService(t)
	product := createProduct(t, svc, "Shrinking Eggs", 100, 10)

	ctx := buyerCtx()
	if _, err := svc.AddToCart(ctx, domain.CartAddRequest{ProductID: product.ID, Qty: 3}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	one := 1
	if _, err := svc.UpdateProduct(adminCtx(), product.ID, domain.ProductUpdateRequest{Stock: &one}); err != nil {
		t.Fatalf("shrink stock: %v", err)
	}

	cart, err := svc.Cart(ctx)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Qty != 1 {
		t.Fatalf("expected single clamped line, got %+v", cart.Items)
	}
	if len(cart.Warnings) != 1 {
		t.Fatalf("expected clamp warning, got %v", cart.Warnings)
	}

	// A second read is already consistent, so no new warnings.
	cart, err = svc.Cart(ctx)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(cart.Warnings) != 0 {
		t.Fatalf("expected converged cart, got warnings %v", cart.Warnings)
	}

	zero := 0
	if _, err := svc.UpdateProduct(adminCtx(), product.ID, domain.ProductUpdateRequest{Stock: &zero}); err != nil {
		t.Fatalf("zero stock: %v", err)
	}

	cart, err = svc.Cart(ctx)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected inactive product dropped, got %+v", cart.Items)
	}
	if len(cart.Warnings) != 1 {
		t.Fatalf("expected drop warning, got %v", cart.Warnings)
	}
}

func TestAddToCartMergesAndClamps(t *testing.T) {
	svc, _, _ := newTestService(t)
	product := createProduct(t, svc, "Merge Eggs", 100, 4)

	ctx := buyerCtx()
	if _, err := svc.AddToCart(ctx, domain.CartAddRequest{ProductID: product.ID, Qty: 3}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddToCart(ctx, domain.CartAddRequest{ProductID: product.ID, Qty: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Qty != 4 {
		t.Fatalf("expected merged line clamped to 4, got %+v", cart.Items)
	}
}

func TestAddToCartRejectsInactiveProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	product := createProduct(t, svc, "Gone Eggs", 100, 0)

	_, err := svc.AddToCart(buyerCtx(), domain.CartAddRequest{ProductID: product.ID, Qty: 1})
	if !errors.Is(err, store.ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
}

func TestCreateProductRejectsClampingDiscount(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		Name:        "Overdiscounted",
		ProductType: "eggs",
		Stock:       5,
		ActualPrice: 100,
		Discount:    domain.Discount{Type: domain.DiscountAmount, Value: 150},
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected invalid discount, got %v", err)
	}

	_, err = svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		Name:        "Overdiscounted",
		ProductType: "eggs",
		Stock:       5,
		ActualPrice: 100,
		Discount:    domain.Discount{Type: domain.DiscountPercentage, Value: 120},
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected invalid percentage, got %v", err)
	}
}

func TestAdminGates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := buyerCtx()

	if _, err := svc.FinancialSummary(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden summary, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "x", ProductType: "eggs", ActualPrice: 1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden create, got %v", err)
	}
	if _, err := svc.ListOrders(ctx, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden order list, got %v", err)
	}
	if _, err := svc.AdvanceOrderStatus(ctx, "hho-x", domain.OrderStatusShipped); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden advance, got %v", err)
	}
}

func TestAdvanceOrderStatusFollowsLifecycle(t *testing.T) {
	svc, _, gw := newTestService(t)
	product := createProduct(t, svc, "Ship Eggs", 100, 5)

	ctx := buyerCtx()
	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       1,
	})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}
	if _, err := svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_ship",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_ship"),
	}); err != nil {
		t.Fatalf("confirm checkout: %v", err)
	}

	if _, err := svc.AdvanceOrderStatus(adminCtx(), begin.OrderID, domain.OrderStatusDelivered); !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected placed->delivered to be rejected, got %v", err)
	}

	order, err := svc.AdvanceOrderStatus(adminCtx(), begin.OrderID, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("advance to shipped: %v", err)
	}
	if order.Status != domain.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", order.Status)
	}

	order, err = svc.AdvanceOrderStatus(adminCtx(), begin.OrderID, domain.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("advance to delivered: %v", err)
	}
	if order.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}

	if _, err := svc.AdvanceOrderStatus(adminCtx(), begin.OrderID, "returned"); !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected unknown status to be rejected, got %v", err)
	}
}

func TestInventoryPurchaseGuardedByRevenue(t *testing.T) {
	svc, repo, _ := newTestService(t)

	// Seeded revenue is 145000; a 200000 purchase must be refused.
	_, err := svc.AddInventoryItem(adminCtx(), domain.InventoryItemRequest{
		Name:     "Layer Feed Bulk",
		Category: "feed",
		Quantity: 10,
		UnitCost: 20000,
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient revenue, got %v", err)
	}

	before, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	item, err := svc.AddInventoryItem(adminCtx(), domain.InventoryItemRequest{
		Name:     "Layer Feed",
		Category: "feed",
		Quantity: 4,
		UnitCost: 500,
	})
	if err != nil {
		t.Fatalf("add inventory: %v", err)
	}
	if item.TotalCost != 2000 {
		t.Fatalf("expected total cost 2000, got %v", item.TotalCost)
	}

	after, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if before.TotalRevenue-after.TotalRevenue != 2000 {
		t.Fatalf("expected revenue down by 2000, got %v", before.TotalRevenue-after.TotalRevenue)
	}
	if after.TotalInventoryCost-before.TotalInventoryCost != 2000 {
		t.Fatalf("expected inventory cost up by 2000, got %v", after.TotalInventoryCost-before.TotalInventoryCost)
	}

	// Deleting the item reverses the charge.
	if err := svc.RemoveInventoryItem(adminCtx(), item.ID); err != nil {
		t.Fatalf("remove inventory: %v", err)
	}
	reverted, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if reverted.TotalRevenue != before.TotalRevenue || reverted.TotalInventoryCost != before.TotalInventoryCost {
		t.Fatalf("expected ledger restored, got %+v", reverted)
	}
}

func TestRecordMedicineChargesExpense(t *testing.T) {
	svc, repo, _ := newTestService(t)

	before, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	record, err := svc.RecordMedicine(adminCtx(), domain.MedicineRecordRequest{
		PoultryType:  "Broiler",
		MedicineName: "Coccidiostat",
		Dosage:       "5ml per 10L",
		Cost:         750,
	})
	if err != nil {
		t.Fatalf("record medicine: %v", err)
	}
	if record.PoultryType != "broiler" {
		t.Fatalf("expected normalized poultry type, got %q", record.PoultryType)
	}

	after, err := repo.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if after.Expense-before.Expense != 750 {
		t.Fatalf("expected expense up by 750, got %v", after.Expense-before.Expense)
	}
	wantNet := after.TotalRevenue - after.Expense - after.TotalInventoryCost
	if after.NetProfit != wantNet {
		t.Fatalf("expected net profit recomputed to %v, got %v", wantNet, after.NetProfit)
	}
}

func TestEggCollectionTotalsExcludeDamaged(t *testing.T) {
	svc, _, _ := newTestService(t)

	collection, err := svc.CreateEggCollection(adminCtx(), domain.EggCollectionRequest{
		Date:       "2026-08-30",
		Small:      10,
		Medium:     20,
		Large:      15,
		ExtraLarge: 5,
		Damaged:    3,
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if collection.Total != 50 {
		t.Fatalf("expected total 50 excluding damaged, got %d", collection.Total)
	}

	_, err = svc.CreateEggCollection(adminCtx(), domain.EggCollectionRequest{Date: "30-08-2026"})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected bad date to be rejected, got %v", err)
	}
}

func TestUpdateAddressRequiresAllFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateAddress(buyerCtx(), domain.AddressUpdateRequest{
		Street: "1 Lane", City: "Town", State: "State", Country: "India",
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected incomplete address to be rejected, got %v", err)
	}

	address, err := svc.UpdateAddress(buyerCtx(), domain.AddressUpdateRequest{
		Street: " 5 Roost Road ", City: "Erode", State: "Tamil Nadu", ZipCode: "638001", Country: "India",
	})
	if err != nil {
		t.Fatalf("update address: %v", err)
	}
	if address.Street != "5 Roost Road" {
		t.Fatalf("expected trimmed street, got %q", address.Street)
	}
}

func TestMyOrdersScopedToBuyer(t *testing.T) {
	svc, _, gw := newTestService(t)
	product := createProduct(t, svc, "Scoped Eggs", 100, 5)

	ctx := buyerCtx()
	begin, err := svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		Source:    domain.OrderSourceBuyNow,
		ProductID: product.ID,
		Qty:       1,
	})
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}
	if _, err := svc.ConfirmCheckout(ctx, domain.ConfirmCheckoutRequest{
		OrderID:        begin.OrderID,
		GatewayOrderID: begin.GatewayOrderID,
		PaymentID:      "pay_scope",
		Signature:      gw.Sign(begin.GatewayOrderID, "pay_scope"),
	}); err != nil {
		t.Fatalf("confirm checkout: %v", err)
	}

	mine, err := svc.MyOrders(ctx, 10)
	if err != nil {
		t.Fatalf("my orders: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != begin.OrderID {
		t.Fatalf("expected the buyer's order, got %+v", mine)
	}

	otherCtx := WithActor(context.Background(), domain.Actor{UserID: "user-other", Role: domain.RoleBuyer})
	other, err := svc.MyOrders(otherCtx, 10)
	if err != nil {
		t.Fatalf("other orders: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no orders for another buyer, got %d", len(other))
	}

	// Another buyer cannot confirm or cancel someone else's order.
	if _, err := svc.CancelCheckout(otherCtx, begin.OrderID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden cancel, got %v", err)
	}
}
