package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/database"
)

// Inserts a session document so the listener can run with SESSION_SOURCE=mongodb
// against a local database.
func main() {
	deviceID := flag.String("device", "dev-device", "device id")
	token := flag.String("token", "", "session token")
	userID := flag.Int64("user", 1, "user id")
	ttl := flag.Duration("ttl", 24*time.Hour, "session lifetime (0 = no expiry)")
	flag.Parse()

	if *token == "" {
		log.Fatal("--token is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.NewMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer db.Close(ctx)

	if err := db.CreateIndexes(ctx); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	now := time.Now().UTC()
	session := entity.Session{
		ID:        primitive.NewObjectID(),
		UserID:    *userID,
		DeviceID:  *deviceID,
		Token:     *token,
		CreatedAt: now,
		Status:    entity.SessionStatusActive,
	}
	if *ttl > 0 {
		expires := now.Add(*ttl)
		session.ExpiresAt = &expires
	}

	if _, err := db.GetCollection(database.SessionsCollection).InsertOne(ctx, session); err != nil {
		log.Fatal("Failed to insert session:", err)
	}

	fmt.Printf("Inserted session %s for device %s\n", session.ID.Hex(), *deviceID)
}
