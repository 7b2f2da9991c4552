package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Address every listener binds to
	TCPPort  int    // Port for the line protocol
	HTTPPort int    // Port for WebSocket clients and the HTTP lobby API
	GrpcPort int    // Port for the admin gRPC server

	ReplayDir       string // Directory finished games are written to
	MaxRoomCapacity int    // Upper bound for a room's maxPlayers
	OutboxSize      int    // Outbound lines queued per connection before dropping
	MaxLineBytes    int    // Longest inbound line or WebSocket frame accepted
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("%s[APP]%s [INFO] .env file not found or could not be loaded: %v", ColorGreen, ColorReset, err)
	}

	return Config{
		HostIP:   getEnv("HOST_IP", "0.0.0.0"),
		TCPPort:  getEnvAsInt("TCP_PORT", 12345),
		HTTPPort: getEnvAsInt("HTTP_PORT", 8080),
		GrpcPort: getEnvAsInt("GRPC_PORT", 9090),

		ReplayDir:       getEnv("REPLAY_DIR", "replays"),
		MaxRoomCapacity: getEnvAsInt("MAX_ROOM_CAPACITY", 8),
		OutboxSize:      getEnvAsInt("OUTBOX_SIZE", 64),
		MaxLineBytes:    getEnvAsInt("MAX_LINE_BYTES", 8192),
	}
}

// getEnv retrieves the value of an environment variable or fallback when unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if it cannot be parsed.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s must be an integer: %v", ColorGreen, ColorReset, ColorRed, ColorReset, key, err)
	}
	return value
}
