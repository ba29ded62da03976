package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the rest
// fall back to defaults.
type Config struct {
    Env     string // application environment (e.g. "dev", "prod")
    Port    string // HTTP port to listen on
    DBUser  string // database username
    DBPass  string // database password (optional)
    DBHost  string // database host address
    DBPort  string // database port number
    DBName  string // database name

    JWTSecret  string        // secret used to sign JWTs
    TokenTTL   time.Duration // lifetime of issued bearer tokens
    BcryptCost int           // bcrypt cost for password hashing

    // AllowRoleSignup lets register honour a caller-supplied role.
    AllowRoleSignup bool
    // EnforceCapacity rejects bookings that would exceed a tour's capacity.
    EnforceCapacity bool
    LockTTL         time.Duration // expiry of a per-tour booking lock
    LockWait        time.Duration // how long a booking waits for the lock

    RequestTimeout time.Duration // upper bound for store calls made by one request
    LogLevel       string
    RabbitURL      string // empty disables event publishing
    AuditLogPath   string // file the audit consumer appends to
}

// Load reads configuration values from the environment (and from a .env
// file when one exists) and returns a Config.  Missing required variables
// cause the program to exit with a fatal log message.
func Load() Config {
    _ = godotenv.Load() // a missing .env file is fine; real env vars win

    return Config{
        Env:    envStr("APP_ENV", "dev"),
        Port:   envStr("APP_PORT", "5000"),
        DBUser: must("DB_USER"),
        DBPass: os.Getenv("DB_PASS"), // empty allowed
        DBHost: must("DB_HOST"),
        DBPort: must("DB_PORT"),
        DBName: must("DB_NAME"),

        JWTSecret:  must("JWT_SECRET"),
        TokenTTL:   envDur("TOKEN_TTL", 30*24*time.Hour),
        BcryptCost: envInt("BCRYPT_COST", 10),

        AllowRoleSignup: envBool("AUTH_ALLOW_ROLE_SIGNUP", true),
        EnforceCapacity: envBool("BOOKING_ENFORCE_CAPACITY", true),
        LockTTL:         envDur("BOOKING_LOCK_TTL", 5*time.Second),
        LockWait:        envDur("BOOKING_LOCK_WAIT", 3*time.Second),

        RequestTimeout: envDur("REQUEST_TIMEOUT", 5*time.Second),
        LogLevel:       envStr("LOG_LEVEL", "info"),
        RabbitURL:      rabbitURL(),
        AuditLogPath:   envStr("AUDIT_LOG_PATH", "logs/audit.log"),
    }
}

// LoadAudit reads the smaller configuration of the audit worker, which
// needs the broker but no database or signing secret.
func LoadAudit() Config {
    _ = godotenv.Load()

    url := rabbitURL()
    if url == "" {
        log.Fatal("missing required env var: RABBITMQ_URL")
    }
    return Config{
        Env:          envStr("APP_ENV", "dev"),
        LogLevel:     envStr("LOG_LEVEL", "info"),
        RabbitURL:    url,
        AuditLogPath: envStr("AUDIT_LOG_PATH", "logs/audit.log"),
    }
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool { return c.Env == "dev" || c.Env == "development" }

// rabbitURL accepts either RABBITMQ_URL or the older AMQP_URL name.
func rabbitURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
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

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
