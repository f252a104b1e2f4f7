package domain

import "time"

const (
	DiscountPercentage = "percentage"
	DiscountAmount     = "amount"

	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"

	OrderStatusPending   = "pending"
	OrderStatusPlaced    = "placed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"

	OrderSourceCart   = "cart"
	OrderSourceBuyNow = "buy_now"

	RoleBuyer = "buyer"
	RoleAdmin = "admin"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type Discount struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
	ProductType string    `json:"product_type"`
	SubType     string    `json:"sub_type,omitempty"`
	Stock       int       `json:"stock"`
	ActualPrice float64   `json:"actual_price"`
	Discount    Discount  `json:"discount"`
	FinalPrice  float64   `json:"final_price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	ProductType string   `json:"product_type"`
	SubType     string   `json:"sub_type,omitempty"`
	Stock       int      `json:"stock"`
	ActualPrice float64  `json:"actual_price"`
	Discount    Discount `json:"discount"`
}

type ProductUpdateRequest struct {
	Name        *string   `json:"name,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	ProductType *string   `json:"product_type,omitempty"`
	SubType     *string   `json:"sub_type,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	ActualPrice *float64  `json:"actual_price,omitempty"`
	Discount    *Discount `json:"discount,omitempty"`
}

type CartItem struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	UnitPrice float64   `json:"unit_price"`
	Qty       int       `json:"qty"`
	AddedAt   time.Time `json:"added_at"`
}

type Cart struct {
	BuyerID  string     `json:"buyer_id"`
	Items    []CartItem `json:"items"`
	Warnings []string   `json:"warnings,omitempty"`
}

type CartAddRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CartUpdateRequest struct {
	Qty int `json:"qty"`
}

type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url"`
	UnitPrice float64 `json:"unit_price"`
	Qty       int     `json:"qty"`
}

type Order struct {
	ID              string      `json:"id"`
	BuyerID         string      `json:"buyer_id"`
	BuyerName       string      `json:"buyer_name"`
	Source          string      `json:"source"`
	Items           []OrderLine `json:"items"`
	TotalProducts   int         `json:"total_products"`
	ProductPrice    float64     `json:"product_price"`
	GST             float64     `json:"gst"`
	ConvenienceFee  float64     `json:"convenience_fee"`
	TotalAmount     float64     `json:"total_amount"`
	GatewayOrderID  string      `json:"gateway_order_id"`
	PaymentID       string      `json:"payment_id,omitempty"`
	Signature       string      `json:"signature,omitempty"`
	Status          string      `json:"status"`
	ShippingAddress Address     `json:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.ZipCode != "" && a.Country != ""
}

type FinancialSummary struct {
	Capital            float64   `json:"capital"`
	Expense            float64   `json:"expense"`
	NetProfit          float64   `json:"net_profit"`
	TotalInventoryCost float64   `json:"total_inventory_cost"`
	TotalRevenue       float64   `json:"total_revenue"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type InventoryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	UnitCost  float64   `json:"unit_cost"`
	TotalCost float64   `json:"total_cost"`
	CreatedAt time.Time `json:"created_at"`
}

type InventoryItemRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

type MedicineRecord struct {
	ID             string    `json:"id"`
	PoultryType    string    `json:"poultry_type"`
	MedicineName   string    `json:"medicine_name"`
	Dosage         string    `json:"dosage"`
	Cost           float64   `json:"cost"`
	AdministeredAt time.Time `json:"administered_at"`
}

type MedicineRecordRequest struct {
	PoultryType  string  `json:"poultry_type"`
	MedicineName string  `json:"medicine_name"`
	Dosage       string  `json:"dosage"`
	Cost         float64 `json:"cost"`
}

type EggCollection struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Small      int       `json:"small"`
	Medium     int       `json:"medium"`
	Large      int       `json:"large"`
	ExtraLarge int       `json:"extra_large"`
	Damaged    int       `json:"damaged"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

type EggCollectionRequest struct {
	Date       string `json:"date"`
	Small      int    `json:"small"`
	Medium     int    `json:"medium"`
	Large      int    `json:"large"`
	ExtraLarge int    `json:"extra_large"`
	Damaged    int    `json:"damaged"`
}

type UserAccount struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	Status        string    `json:"status"`
	Address       Address   `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
}

type Actor struct {
	UserID string
	Name   string
	Role   string
}

type RefundRequest struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type BeginCheckoutRequest struct {
	Source    string `json:"source"`
	ProductID string `json:"product_id,omitempty"`
	Qty       int    `json:"qty,omitempty"`
}

type BeginCheckoutResponse struct {
	OrderID        string  `json:"order_id"`
	GatewayOrderID string  `json:"gateway_order_id"`
	GatewayKeyID   string  `json:"gateway_key_id"`
	AmountPaise    int64   `json:"amount_paise"`
	Currency       string  `json:"currency"`
	TotalAmount    float64 `json:"total_amount"`
}

type ConfirmCheckoutRequest struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
}

type CancelCheckoutRequest struct {
	OrderID string `json:"order_id"`
}

type AdvanceOrderStatusRequest struct {
	Status string `json:"status"`
}

type AddressUpdateRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}
