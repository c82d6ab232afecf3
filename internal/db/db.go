package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/catalog"
	"github.com/YFrancis10/MeMantra-sub001/internal/chat"
	"github.com/YFrancis10/MeMantra-sub001/internal/collections"
	"github.com/YFrancis10/MeMantra-sub001/internal/models"
	"github.com/YFrancis10/MeMantra-sub001/internal/notify"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.PasswordResetToken{},
		&catalog.Category{},
		&catalog.Mantra{},
		&catalog.Like{},
		&collections.Collection{},
		&collections.CollectionMantra{},
		&chat.Conversation{},
		&chat.Message{},
		&chat.MessageReaction{},
		&notify.PushJob{},
	)
}
