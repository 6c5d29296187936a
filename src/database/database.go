package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ReservedTenant in the request path maps to the environment default
// database instead of a real entity.
const ReservedTenant = "relific"

var (
	baseClient *mongo.Client
	baseOnce   sync.Once
	baseErr    error

	entityMu    sync.RWMutex
	entityCache = map[string]bool{}

	tenantMu sync.Mutex
	tenants  = map[string]*tenantHandle{}
)

// tenantHandle memoizes one store connection per tenant. The sync.Once
// guarantees a single dial even under concurrent first requests.
type tenantHandle struct {
	once   sync.Once
	client *mongo.Client
	db     *mongo.Database
	err    error
}

// DefaultTenant is the database the reserved tenant name resolves to.
func DefaultTenant() string {
	if os.Getenv("GO_ENV") == "production" {
		return "prod"
	}
	return "dev"
}

// ConnectBase connects to the control store once and primes the entity cache.
func ConnectBase() error {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("❌ MONGO_URI environment variable not set. Please create a .env file and set it.")
	}

	baseOnce.Do(func() {
		clientOptions := options.Client().ApplyURI(mongoURI)

		baseClient, baseErr = mongo.Connect(context.TODO(), clientOptions)
		if baseErr != nil {
			log.Println("❌ Failed to connect to base database:", baseErr)
			baseClient = nil
			return
		}

		baseErr = baseClient.Ping(context.TODO(), readpref.Primary())
		if baseErr != nil {
			log.Println("❌ Base database ping failed:", baseErr)
			baseClient = nil
			return
		}

		log.Println("✅ Connected to the base database:", DefaultTenant())

		entityMu.Lock()
		entityCache[DefaultTenant()] = true
		entityMu.Unlock()

		if err := RefreshEntityCache(context.TODO()); err != nil {
			log.Println("⚠️ Error refreshing entity cache:", err)
		}
	})

	if baseErr != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, baseErr)
	}
	return nil
}

// RefreshEntityCache reloads the set of valid tenants from the control
// store's entities collection. The default tenant is always valid.
func RefreshEntityCache(ctx context.Context) error {
	if baseClient == nil {
		return ErrStorageUnavailable
	}

	coll := baseClient.Database(DefaultTenant()).Collection("entities")
	cursor, err := coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"basePath": 1, "_id": 0}))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var entities []struct {
		BasePath string `bson:"basePath"`
	}
	if err := cursor.All(ctx, &entities); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	fresh := map[string]bool{DefaultTenant(): true}
	for _, e := range entities {
		name := strings.Replace(e.BasePath, "/", "", 1)
		if name != "" {
			fresh[name] = true
		}
	}

	entityMu.Lock()
	entityCache = fresh
	entityMu.Unlock()

	names := make([]string, 0, len(fresh))
	for name := range fresh {
		names = append(names, name)
	}
	log.Println("✅ Entity cache updated:", names)
	return nil
}

// IsValidEntity reports whether the tenant is in the validity cache.
func IsValidEntity(name string) bool {
	entityMu.RLock()
	defer entityMu.RUnlock()
	return entityCache[name]
}

// ResolveTenant maps a request path segment to a tenant id. Segments
// containing "." or "/" never resolve; the reserved product name maps to
// the environment default.
func ResolveTenant(segment string) (string, error) {
	if segment == "" || segment == "undefined" {
		return "", ErrTenantNotFound
	}
	if strings.ContainsAny(segment, "./") {
		return "", ErrTenantNotFound
	}
	if segment == ReservedTenant {
		return DefaultTenant(), nil
	}
	return segment, nil
}

// TenantDB returns the memoized store handle for a tenant, dialing it on
// first use. Concurrent callers for the same tenant share one
// initialization; a failed dial is dropped from the handle map so a later
// request can retry, and never affects other tenants or the validity cache.
func TenantDB(ctx context.Context, name string) (*mongo.Database, error) {
	if baseClient == nil {
		return nil, ErrStorageUnavailable
	}
	if !IsValidEntity(name) {
		return nil, ErrTenantNotFound
	}

	tenantMu.Lock()
	h, ok := tenants[name]
	if !ok {
		h = &tenantHandle{}
		tenants[name] = h
	}
	tenantMu.Unlock()

	h.once.Do(func() {
		mongoURI := os.Getenv("MONGO_URI")
		clientOptions := options.Client().ApplyURI(mongoURI)

		h.client, h.err = mongo.Connect(ctx, clientOptions)
		if h.err != nil {
			return
		}
		if h.err = h.client.Ping(ctx, readpref.Primary()); h.err != nil {
			// release the dialed pool before the handle is dropped
			if derr := h.client.Disconnect(context.Background()); derr != nil {
				log.Println("⚠️ Error closing unreachable tenant store:", name, derr)
			}
			h.client = nil
			return
		}
		h.db = h.client.Database(name)
		log.Println("✅ Connected to tenant store:", name)
	})

	if h.err != nil {
		tenantMu.Lock()
		if tenants[name] == h {
			delete(tenants, name)
		}
		tenantMu.Unlock()
		return nil, fmt.Errorf("%w: tenant %s: %v", ErrStorageUnavailable, name, h.err)
	}

	return h.db, nil
}

// CloseAll disconnects every open store handle. Shutdown path only.
func CloseAll(ctx context.Context) {
	tenantMu.Lock()
	defer tenantMu.Unlock()

	for name, h := range tenants {
		if h.client != nil {
			if err := h.client.Disconnect(ctx); err != nil {
				log.Println("⚠️ Error closing tenant store:", name, err)
			}
		}
		delete(tenants, name)
	}

	if baseClient != nil {
		if err := baseClient.Disconnect(ctx); err != nil {
			log.Println("⚠️ Error closing base database:", err)
		}
	}
}
