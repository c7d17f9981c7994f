package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, ints for counts and prices,
// durations for TTLs.
type Config struct {
	Env                string        // application environment (e.g. "dev", "prod")
	Port               string        // HTTP port to listen on
	DBUser             string        // database username
	DBPass             string        // database password (optional)
	DBHost             string        // database host address
	DBPort             string        // database port number
	DBName             string        // database name
	RabbitURL          string        // AMQP broker URL for the notification queues (optional)
	PassPriceCents     int64         // monthly pass price per 30-day month, in cents
	PassExpiryWarnDays int           // how far ahead expiry warnings look
	RateCacheTTL       time.Duration // lifetime of the cached active rate
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),  // environment (dev/test/prod)
		Port:               must("APP_PORT"), // port to bind the HTTP server
		DBUser:             must("DB_USER"),  // database user
		DBPass:             os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:             must("DB_HOST"),  // database host
		DBPort:             must("DB_PORT"),  // database port
		DBName:             must("DB_NAME"),  // database name
		RabbitURL:          os.Getenv("RABBITMQ_URL"), // empty falls back to the local broker
		PassPriceCents:     int64(intenv("MONTHLY_PASS_PRICE_CENTS", "5000000")),
		PassExpiryWarnDays: intenv("PASS_EXPIRY_WARN_DAYS", "3"),
		RateCacheTTL:       durenv("RATE_CACHE_TTL", "30s"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intenv returns an integer variable or its default.  A value that is
// set but unparsable is a fatal configuration error.
func intenv(key, def string) int {
	i, err := strconv.Atoi(getenv(key, def))
	if err != nil {
		log.Fatalf("invalid value for %s: %v", key, err)
	}
	return i
}

// durenv is intenv for duration values ("30s", "5m").
func durenv(key, def string) time.Duration {
	d, err := time.ParseDuration(getenv(key, def))
	if err != nil {
		log.Fatalf("invalid value for %s: %v", key, err)
	}
	return d
}
