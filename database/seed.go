package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/Adarsh0311/shopsphere-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminSeed struct {
	Username string
	Password string
	Email    string
}

// Seed makes sure both roles exist and that an admin account is present.
// It is safe to call on every start.
func Seed(db *gorm.DB, admin AdminSeed) error {
	for _, name := range []string{models.RoleUser, models.RoleAdmin} {
		role := models.Role{Name: name}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	if admin.Username == "" {
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", admin.Username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var roles []models.Role
	if err := db.Where("name IN ?", []string{models.RoleUser, models.RoleAdmin}).Find(&roles).Error; err != nil {
		return fmt.Errorf("load roles: %w", err)
	}

	user := models.User{
		Username:     admin.Username,
		PasswordHash: string(hash),
		Email:        admin.Email,
		FirstName:    "Admin",
		LastName:     "User",
		Roles:        roles,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("👤 Seeded admin user %q", admin.Username)
	return nil
}
