package main

import (
	"context"
	"log"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/docstore"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/implementation"
	"ai-assistant-be/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
)

// Sweeps expired trash for every registered user. Meant for cron; the
// server also sweeps opportunistically when a user connects.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	sysLogger := logger.NewIsolatedLogger("logs/sweep.log")
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	store := docstore.NewGormStore(gormDB, pubSub, sysLogger)
	chatRepo := implementation.NewChatRepository(store)
	userRepo := implementation.NewUserRepository(gormDB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	users, err := userRepo.FindAll(ctx)
	if err != nil {
		log.Fatalf("Unable to list users: %v", err)
	}

	total := 0
	for _, user := range users {
		swept, err := chatRepo.SweepExpiredTrash(ctx, user.Email)
		if err != nil {
			color.Red("✗ %s: %v", user.Email, err)
			continue
		}
		if swept > 0 {
			color.Yellow("• %s: swept %d expired sessions", user.Email, swept)
		}
		total += swept
	}

	color.Green("✓ Sweep complete: %d sessions purged across %d users", total, len(users))
}
