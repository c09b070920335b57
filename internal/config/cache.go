package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// LRU settings for the dataset read-through cache
	DatasetLRUSize       int
	DatasetLRUTTLMinutes int

	// Station metadata TTL
	MetadataTTLHours int
}

const (
	// Default values
	defaultDatasetLRUSize    = 256
	defaultDatasetTTLMinutes = 15
	defaultMetadataTTLHours  = 24
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		DatasetLRUSize:       getEnvInt("CACHE_DATASET_LRU_SIZE", defaultDatasetLRUSize),
		DatasetLRUTTLMinutes: getEnvInt("CACHE_DATASET_LRU_TTL_MINUTES", defaultDatasetTTLMinutes),
		MetadataTTLHours:     getEnvInt("CACHE_METADATA_TTL_HOURS", defaultMetadataTTLHours),
	}

	log.Debug().
		Int("DatasetLRUSize", config.DatasetLRUSize).
		Int("DatasetLRUTTLMinutes", config.DatasetLRUTTLMinutes).
		Int("MetadataTTLHours", config.MetadataTTLHours).
		Msg("Cache configuration loaded")

	return config
}

// Helper methods for the CacheConfig struct
func (c *CacheConfig) GetDatasetLRUTTL() time.Duration {
	return time.Duration(c.DatasetLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetMetadataTTL() time.Duration {
	return time.Duration(c.MetadataTTLHours) * time.Hour
}

// Helper function to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}
