package data

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Drivers register themselves from init() and are looked up by the name
// used in configuration, the way database/sql does it.

// DatabaseDriver defines the interface for database drivers.
type DatabaseDriver interface {
	// Name returns the driver identifier (e.g., "postgres", "mysql", "sqlite")
	Name() string

	// Connect establishes a new connection using the provided configuration.
	Connect(ctx context.Context, cfg any) (any, error)

	// Close terminates the connection and releases resources.
	Close(conn any) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context, conn any) error
}

// CacheDriver defines the interface for cache/key-value store drivers.
type CacheDriver interface {
	Name() string
	Connect(ctx context.Context, cfg any) (any, error)
	Close(conn any) error
	Ping(ctx context.Context, conn any) error
}

// MessageDriver defines the interface for message broker drivers.
type MessageDriver interface {
	Name() string
	Connect(ctx context.Context, cfg any) (any, error)
	Close(conn any) error
}

var (
	databaseDrivers   = make(map[string]DatabaseDriver)
	databaseDriversMu sync.RWMutex

	cacheDrivers   = make(map[string]CacheDriver)
	cacheDriversMu sync.RWMutex

	messageDrivers   = make(map[string]MessageDriver)
	messageDriversMu sync.RWMutex
)

type named interface{ Name() string }

// register panics on a nil driver, an empty name or a duplicate.
func register[D named](kind string, mu *sync.RWMutex, registry map[string]D, driver D, isNil bool) {
	mu.Lock()
	defer mu.Unlock()

	if isNil {
		panic(fmt.Sprintf("data: Register%sDriver driver is nil", kind))
	}
	name := driver.Name()
	if name == "" {
		panic(fmt.Sprintf("data: Register%sDriver driver name is empty", kind))
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("data: Register%sDriver called twice for driver %s", kind, name))
	}
	registry[name] = driver
}

func lookup[D any](kind string, mu *sync.RWMutex, registry map[string]D, name string) (D, error) {
	mu.RLock()
	defer mu.RUnlock()

	driver, ok := registry[name]
	if !ok {
		var zero D
		return zero, fmt.Errorf(
			"data: %s driver %q not registered\n\n"+
				"Did you forget to import the driver package?\n"+
				"    _ \"github.com/ncobase/taskdesk/data/%s\"\n\n"+
				"Available drivers: %v",
			kind, name, name, names(registry),
		)
	}
	return driver, nil
}

func names[D any](registry map[string]D) []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RegisterDatabaseDriver makes a database driver available by the provided name.
//
//	func init() {
//	    data.RegisterDatabaseDriver(&driver{})
//	}
func RegisterDatabaseDriver(driver DatabaseDriver) {
	register("Database", &databaseDriversMu, databaseDrivers, driver, driver == nil)
}

// RegisterCacheDriver makes a cache driver available by the provided name.
func RegisterCacheDriver(driver CacheDriver) {
	register("Cache", &cacheDriversMu, cacheDrivers, driver, driver == nil)
}

// RegisterMessageDriver makes a message broker driver available by the provided name.
func RegisterMessageDriver(driver MessageDriver) {
	register("Message", &messageDriversMu, messageDrivers, driver, driver == nil)
}

// GetDatabaseDriver retrieves a registered database driver by name.
func GetDatabaseDriver(name string) (DatabaseDriver, error) {
	return lookup("database", &databaseDriversMu, databaseDrivers, name)
}

// GetCacheDriver retrieves a registered cache driver by name.
func GetCacheDriver(name string) (CacheDriver, error) {
	return lookup("cache", &cacheDriversMu, cacheDrivers, name)
}

// GetMessageDriver retrieves a registered message driver by name.
func GetMessageDriver(name string) (MessageDriver, error) {
	return lookup("message", &messageDriversMu, messageDrivers, name)
}

// ListRegisteredDrivers returns a snapshot of all registered drivers.
func ListRegisteredDrivers() map[string][]string {
	result := make(map[string][]string)

	databaseDriversMu.RLock()
	result["database"] = names(databaseDrivers)
	databaseDriversMu.RUnlock()

	cacheDriversMu.RLock()
	result["cache"] = names(cacheDrivers)
	cacheDriversMu.RUnlock()

	messageDriversMu.RLock()
	result["message"] = names(messageDrivers)
	messageDriversMu.RUnlock()

	return result
}
