package mongo

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/config"
	"github.com/adanyl0v/project-tracker/internal/storage"
	"github.com/adanyl0v/project-tracker/internal/storage/storagetest"
)

// TestStoreContract runs against a real server and is skipped unless
// TRACKER_TEST_MONGO_URI is set. Set TRACKER_TEST_MONGO_TRANSACTIONS=true
// when the server is a replica set.
func TestStoreContract(t *testing.T) {
	uri := os.Getenv("TRACKER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TRACKER_TEST_MONGO_URI is not set")
	}

	database := "tracker_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	store := New(zerolog.Nop(), config.MongoConfig{
		URI:            uri,
		Database:       database,
		ConnectTimeout: 10 * time.Second,
		PingTimeout:    10 * time.Second,
		Transactions:   os.Getenv("TRACKER_TEST_MONGO_TRANSACTIONS") == "true",
	})
	t.Cleanup(func() {
		ctx := context.Background()
		if db, err := store.database(); err == nil {
			_ = db.Drop(ctx)
		}
		_ = store.Close(ctx)
	})

	storagetest.Run(t, store)
}

func TestObjectID(t *testing.T) {
	if _, err := objectID("not-an-object-id"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for malformed id, got %v", err)
	}

	id, err := objectID("65f0c0ffee0123456789abcd")
	if err != nil {
		t.Fatalf("objectID failed: %v", err)
	}
	if id.Hex() != "65f0c0ffee0123456789abcd" {
		t.Errorf("Unexpected hex: %s", id.Hex())
	}
}
