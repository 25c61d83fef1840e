package services

import (
	"context"
	"errors"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// getOrCreateCart returns the user's cart, creating it on first access.
// Concurrent first accesses converge on the same row through the unique user_id.
func getOrCreateCart(db *gorm.DB, userID string) (models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return models.Cart{}, apperror.Internal(err, "create cart for user %s", userID)
	}

	var stored models.Cart
	if err := db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return models.Cart{}, apperror.Internal(err, "load cart for user %s", userID)
	}
	return stored, nil
}

func loadCartWithItems(db *gorm.DB, cartID string) (models.Cart, error) {
	var cart models.Cart
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at ASC") }).
		Preload("Items.Product").
		First(&cart, "id = ?", cartID).Error
	if err != nil {
		return cart, apperror.Internal(err, "load cart %s", cartID)
	}
	return cart, nil
}

func ensureUser(db *gorm.DB, userID string) (models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, apperror.NotFound("user not found with id: %s", userID)
		}
		return user, apperror.Internal(err, "load user %s", userID)
	}
	return user, nil
}

// userCart is getOrCreateCart for a user that must exist.
func userCart(tx *gorm.DB, userID string) (models.Cart, error) {
	if _, err := ensureUser(tx, userID); err != nil {
		return models.Cart{}, err
	}
	return getOrCreateCart(tx, userID)
}

func (s *CartService) GetCart(ctx context.Context, id auth.Identity) (CartResponse, error) {
	db := s.db.WithContext(ctx)
	cart, err := userCart(db, id.UserID)
	if err != nil {
		return CartResponse{}, err
	}
	cart, err = loadCartWithItems(db, cart.ID)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(cart), nil
}

// AddToCart snapshots the product's current price on new lines. Adding a
// product that is already in the cart only increases the quantity.
func (s *CartService) AddToCart(ctx context.Context, id auth.Identity, req AddToCartRequest) (CartResponse, error) {
	if req.Quantity <= 0 {
		return CartResponse{}, apperror.BadRequest("quantity must be greater than zero")
	}

	var cartID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUser(tx, id.UserID); err != nil {
			return err
		}
		product, err := loadProduct(tx, req.ProductID)
		if err != nil {
			return err
		}
		cart, err := getOrCreateCart(tx, id.UserID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if req.Quantity > product.StockQuantity {
				return apperror.BadRequest("insufficient stock for product: %s. Available: %d", product.Name, product.StockQuantity)
			}
			item = models.CartItem{
				CartID:          cart.ID,
				ProductID:       product.ID,
				Quantity:        req.Quantity,
				PriceAtAddition: product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return apperror.Internal(err, "add cart item")
			}
		case err != nil:
			return apperror.Internal(err, "load cart item")
		default:
			newQty := item.Quantity + req.Quantity
			if newQty > product.StockQuantity {
				return apperror.BadRequest("insufficient stock for product: %s. Available: %d", product.Name, product.StockQuantity)
			}
			if err := tx.Model(&item).Update("quantity", newQty).Error; err != nil {
				return apperror.Internal(err, "update cart item")
			}
		}
		return touchCart(tx, cart.ID)
	})
	if err != nil {
		return CartResponse{}, err
	}
	return s.reload(ctx, cartID)
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, id auth.Identity, productID string, qty int) (CartResponse, error) {
	var cartID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := userCart(tx, id.UserID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		var item models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product %s is not in the cart", productID)
			}
			return apperror.Internal(err, "load cart item")
		}

		if qty <= 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return apperror.Internal(err, "remove cart item")
			}
			return touchCart(tx, cart.ID)
		}
		if qty > item.Product.StockQuantity {
			return apperror.BadRequest("insufficient stock for product: %s. Available: %d", item.Product.Name, item.Product.StockQuantity)
		}
		if err := tx.Model(&item).Update("quantity", qty).Error; err != nil {
			return apperror.Internal(err, "update cart item")
		}
		return touchCart(tx, cart.ID)
	})
	if err != nil {
		return CartResponse{}, err
	}
	return s.reload(ctx, cartID)
}

func (s *CartService) RemoveFromCart(ctx context.Context, id auth.Identity, productID string) (CartResponse, error) {
	var cartID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := userCart(tx, id.UserID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		res := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Delete(&models.CartItem{})
		if res.Error != nil {
			return apperror.Internal(res.Error, "remove cart item")
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("product %s is not in the cart", productID)
		}
		return touchCart(tx, cart.ID)
	})
	if err != nil {
		return CartResponse{}, err
	}
	return s.reload(ctx, cartID)
}

func (s *CartService) ClearCart(ctx context.Context, id auth.Identity) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := userCart(tx, id.UserID)
		if err != nil {
			return err
		}
		return clearCart(tx, cart.ID)
	})
}

func (s *CartService) reload(ctx context.Context, cartID string) (CartResponse, error) {
	cart, err := loadCartWithItems(s.db.WithContext(ctx), cartID)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(cart), nil
}

// clearCart empties the cart but keeps the row.
func clearCart(tx *gorm.DB, cartID string) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return apperror.Internal(err, "clear cart %s", cartID)
	}
	return touchCart(tx, cartID)
}

func touchCart(tx *gorm.DB, cartID string) error {
	if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now()).Error; err != nil {
		return apperror.Internal(err, "touch cart %s", cartID)
	}
	return nil
}
