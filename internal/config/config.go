package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Connection settings are
// required and enforced with must(); check-in tunables fall back to
// the documented defaults when unset.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to sign JWTs

    AccessTTLMin   int // access token time-to-live in minutes
    RefreshTTLDays int // refresh token time-to-live in days

    // Check-in engine tunables.
    SeatHoldDurationSeconds  int     // default hold window for a seat
    SessionTimeoutMinutes    int     // sliding expiry window for a session
    CheckInWindowOpensHours  int     // window opens this many hours before departure
    CheckInWindowClosesHours int     // window closes this many hours before departure
    MaxBaggageWeightKg       float64 // free baggage allowance
    ExcessBaggageFeePerKg    float64 // fee charged per kg over the allowance

    // Reconciler intervals.
    HoldReconcileInterval    time.Duration // sweep cadence for expired seat holds
    SessionReconcileInterval time.Duration // sweep cadence for expired sessions

    SeatMapCacheTTL time.Duration // lifetime of a cached seat map
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables cause a fatal log message
// when missing.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),
        Port:      must("APP_PORT"),
        DBUser:    must("DB_USER"),
        DBPass:    os.Getenv("DB_PASS"), // empty allowed
        DBHost:    must("DB_HOST"),
        DBPort:    must("DB_PORT"),
        DBName:    must("DB_NAME"),
        JWTSecret: must("JWT_SECRET"),

        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 30),
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),

        SeatHoldDurationSeconds:  envInt("SEAT_HOLD_DURATION_SECONDS", 120),
        SessionTimeoutMinutes:    envInt("SESSION_TIMEOUT_MINUTES", 10),
        CheckInWindowOpensHours:  envInt("CHECKIN_WINDOW_OPENS_HOURS", 24),
        CheckInWindowClosesHours: envInt("CHECKIN_WINDOW_CLOSES_HOURS", 1),
        MaxBaggageWeightKg:       envFloat("MAX_BAGGAGE_WEIGHT_KG", 25),
        ExcessBaggageFeePerKg:    envFloat("EXCESS_BAGGAGE_FEE_PER_KG", 200),

        HoldReconcileInterval:    envDur("HOLD_RECONCILE_INTERVAL", 10*time.Second),
        SessionReconcileInterval: envDur("SESSION_RECONCILE_INTERVAL", time.Minute),

        SeatMapCacheTTL: envDur("SEAT_MAP_CACHE_TTL", 30*time.Second),
    }
}

// SeatHoldDuration returns the configured hold window as a Duration.
func (c Config) SeatHoldDuration() time.Duration {
    return time.Duration(c.SeatHoldDurationSeconds) * time.Second
}

// SessionTimeout returns the configured session timeout as a Duration.
func (c Config) SessionTimeout() time.Duration {
    return time.Duration(c.SessionTimeoutMinutes) * time.Minute
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

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envFloat(k string, d float64) float64 {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if f, err := strconv.ParseFloat(v, 64); err == nil {
        return f
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
