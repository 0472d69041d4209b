package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Dashboard server
	Port            int
	Password        string
	RefreshInterval int // Dashboard page auto-reload interval in milliseconds
	MetricsPort     int

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// MQTT broker
	MQTTBroker      string
	MQTTPort        int
	MQTTUser        string
	MQTTPass        string
	MQTTTopicCrack  string
	MQTTTopicSensor string
	MQTTTLSInsecure bool
	DeviceID        string

	// Detection
	ModelPath           string
	VideoSource         string // Camera index ("0") or a video file path
	ConfidenceThreshold float64
	StoreInterval       int     // Persist detections from every Nth frame
	PublishCooldown     float64 // Minimum seconds between crack alerts
	ProcessingWorkers   int

	LogDirectory string
}

// Load reads configuration from the environment, falling back to defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		Password:        getEnv("PASSWORD", "bridge2024"),
		RefreshInterval: getEnvAsInt("REFRESH_INTERVAL", 60000),
		MetricsPort:     getEnvAsInt("METRICS_PORT", 9090),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "bridge_monitoring"),

		MQTTBroker:      getEnv("MQTT_BROKER", "localhost"),
		MQTTPort:        getEnvAsInt("MQTT_PORT", 8883),
		MQTTUser:        getEnv("MQTT_USER", ""),
		MQTTPass:        getEnv("MQTT_PASS", ""),
		MQTTTopicCrack:  getEnv("MQTT_TOPIC_CRACK", "bridge/crack"),
		MQTTTopicSensor: getEnv("MQTT_TOPIC_SENSOR", "bridge/sensors"),
		MQTTTLSInsecure: getEnvAsBool("MQTT_TLS_INSECURE", true),
		DeviceID:        getEnv("DEVICE_ID", "esp32-mainboard-01"),

		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "crack_detector.onnx")),
		VideoSource:         getEnv("VIDEO_SOURCE", "0"),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.6),
		StoreInterval:       getEnvAsInt("STORE_INTERVAL", 20),
		PublishCooldown:     getEnvAsFloat("PUBLISH_COOLDOWN", 1.0),
		ProcessingWorkers:   getEnvAsInt("PROCESSING_WORKERS", 3),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
