package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and sizes.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	// Drop policy knobs. They select the engine variant at startup; the
	// same purchase/reveal state machine serves every combination.
	AllocationPolicy string // "sequential" | "hashed"
	SettlementMode   string // "split" | "single"
	PriceSource      string // "fixed" | "oracle"
	PoolLow          int    // first assignable reveal number (>= 1)
	PoolHigh         int    // last assignable reveal number
	ShardWidth       int    // slots per pool shard; 0 = one shard

	// Metadata recorded for every minted item.
	ItemName   string
	ItemSymbol string
	ItemURI    string
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		AllocationPolicy: getenv("ALLOCATION_POLICY", "sequential"),
		SettlementMode:   getenv("SETTLEMENT_MODE", "split"),
		PriceSource:      getenv("PRICE_SOURCE", "fixed"),
		PoolLow:          atoi(getenv("POOL_LOW", "1")),
		PoolHigh:         atoi(getenv("POOL_HIGH", "8888")),
		ShardWidth:       atoi(getenv("SHARD_WIDTH", "0")),

		ItemName:   getenv("ITEM_NAME", "NFTOne"),
		ItemSymbol: getenv("ITEM_SYMBOL", "ASHU"),
		ItemURI:    getenv("ITEM_URI", ""),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
