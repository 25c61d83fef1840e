package services

import (
	"time"

	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/shopspring/decimal"
)

// -------- Requests --------

type PlaceOrderRequest struct {
	Street             string `json:"street" binding:"required"`
	City               string `json:"city" binding:"required"`
	State              string `json:"state"`
	PostalCode         string `json:"postal_code" binding:"required"`
	Country            string `json:"country" binding:"required"`
	PaymentMethod      string `json:"payment_method" binding:"required"` // CREDIT_CARD, PAYPAL
	PaymentMethodToken string `json:"payment_method_token"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type ProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CategoryID    string          `json:"category_id"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProductFilter mirrors the product list query parameters.
type ProductFilter struct {
	Search     string
	CategoryID string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	LowStock   *int
}

// -------- Responses --------

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CategoryID    string          `json:"category_id,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CartItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImageURL string          `json:"product_image_url"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
	ItemTotal       decimal.Decimal `json:"item_total"`
	AddedAt         time.Time       `json:"added_at"`
}

type CartResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Items       []CartItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type OrderItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImageURL string          `json:"product_image_url"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	ItemTotal       decimal.Decimal `json:"item_total"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type PaymentResponse struct {
	Method        string               `json:"method"`
	TransactionID string               `json:"transaction_id"`
	Status        models.PaymentStatus `json:"status"`
	Amount        decimal.Decimal      `json:"amount"`
	ActionURL     string               `json:"action_url,omitempty"`
	PaymentDate   time.Time            `json:"payment_date"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Username        string              `json:"username"`
	OrderDate       time.Time           `json:"order_date"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          models.OrderStatus  `json:"status"`
	ShippingAddress *AddressResponse    `json:"shipping_address,omitempty"`
	Payment         *PaymentResponse    `json:"payment,omitempty"`
	Items           []OrderItemResponse `json:"items"`
}

type OrderSummary struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	OrderDate    time.Time       `json:"order_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	ItemCount    int             `json:"item_count"`
}

type DashboardStats struct {
	TotalOrders      int64           `json:"total_orders"`
	TotalUsers       int64           `json:"total_users"`
	TotalProducts    int64           `json:"total_products"`
	TotalCategories  int64           `json:"total_categories"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	PendingOrders    int64           `json:"pending_orders"`
	LowStockProducts int64           `json:"low_stock_products"`
	RecentOrders     []OrderSummary  `json:"recent_orders"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
}

// -------- Mapping --------

func toProductResponse(p models.Product) ProductResponse {
	res := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.CategoryID != nil {
		res.CategoryID = *p.CategoryID
	}
	if p.Category != nil {
		res.CategoryName = p.Category.Name
	}
	return res
}

func toProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// toCartResponse expects Items.Product to be loaded.
func toCartResponse(cart models.Cart) CartResponse {
	res := CartResponse{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       make([]CartItemResponse, 0, len(cart.Items)),
		TotalAmount: decimal.Zero,
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
	for _, it := range cart.Items {
		total := it.Subtotal()
		res.Items = append(res.Items, CartItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.Product.Name,
			ProductImageURL: it.Product.ImageURL,
			Quantity:        it.Quantity,
			PriceAtAddition: it.PriceAtAddition,
			ItemTotal:       total,
			AddedAt:         it.AddedAt,
		})
		res.TotalAmount = res.TotalAmount.Add(total)
	}
	return res
}

// toOrderResponse expects User, Items.Product, ShippingAddress and Payment to be loaded.
func toOrderResponse(o models.Order) OrderResponse {
	res := OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Username:    o.User.Username,
		OrderDate:   o.OrderDate,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		Items:       make([]OrderItemResponse, 0, len(o.Items)),
	}
	if a := o.ShippingAddress; a != nil {
		res.ShippingAddress = &AddressResponse{
			Street: a.Street, City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		}
	}
	if p := o.Payment; p != nil {
		res.Payment = &PaymentResponse{
			Method:        p.PaymentMethod,
			TransactionID: p.TransactionID,
			Status:        p.Status,
			Amount:        p.Amount,
			ActionURL:     p.ActionURL,
			PaymentDate:   p.PaymentDate,
		}
	}
	for _, it := range o.Items {
		res.Items = append(res.Items, OrderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.Product.Name,
			ProductImageURL: it.Product.ImageURL,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			ItemTotal:       it.Subtotal(),
		})
	}
	return res
}

func toOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Roles:       u.RoleNames(),
		CreatedAt:   u.CreatedAt,
	}
}

// toConfirmation builds the queue message from a fully loaded order.
func toConfirmation(o models.Order) notify.OrderConfirmation {
	conf := notify.OrderConfirmation{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Username:    o.User.Username,
		Email:       o.User.Email,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Items:       make([]notify.ConfirmationItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		conf.Items = append(conf.Items, notify.ConfirmationItem{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.PriceAtPurchase,
			Subtotal:    it.Subtotal(),
		})
	}
	return conf
}
