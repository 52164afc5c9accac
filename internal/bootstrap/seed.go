package bootstrap

import (
	"log"

	"github.com/medtrackhq/medtrack/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Medicine{},
		&model.Diagnosis{},
		&model.Appointment{},
		&model.Report{},
		&model.Notification{},
		&model.EmailOutbox{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleDoctor, Description: "Clinic doctor"},
		{Name: model.RolePatient, Description: "Registered patient"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedDevUsers creates a doctor and a patient account for local development.
func SeedDevUsers(db *gorm.DB) error {
	seeds := []struct {
		username string
		email    string
		role     string
	}{
		{"drhouse", "drhouse@medtrack.local", model.RoleDoctor},
		{"jdoe", "jdoe@medtrack.local", model.RolePatient},
	}

	for _, seed := range seeds {
		var count int64
		if err := db.Model(&model.User{}).
			Where("email = ?", seed.email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		var role model.Role
		if err := db.Where("name = ?", seed.role).First(&role).Error; err != nil {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		roleID := role.ID
		user := model.User{
			Username:     seed.username,
			Email:        seed.email,
			PasswordHash: string(hashed),
			RoleID:       &roleID,
		}

		if err := db.Create(&user).Error; err != nil {
			return err
		}

		log.Printf("seeded %s user %s (password: password123)", seed.role, seed.email)
	}

	return nil
}
