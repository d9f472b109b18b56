package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type DatabaseType string

const (
	MongoDB DatabaseType = "mongodb"
	SQLite  DatabaseType = "sqlite"
)

type Config struct {
	Port         string
	DatabaseType DatabaseType
	// MongoDB config
	MongoURI string
	// SQLite config
	SQLitePath string
	// Common configs
	DatabaseName  string
	AdminSecret   []byte
	ClassifierURL string
	BcryptCost    int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, err
	}

	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		return nil, fmt.Errorf("DATABASE_NAME is not set in .env file")
	}

	// The admin secret must come from the environment, there is no default.
	adminSecret := os.Getenv("ADMIN_SECRET")
	if adminSecret == "" {
		return nil, fmt.Errorf("ADMIN_SECRET is not set in .env file")
	}

	classifierURL := os.Getenv("CLASSIFIER_URL")
	if classifierURL == "" {
		return nil, fmt.Errorf("CLASSIFIER_URL is not set in .env file")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	bcryptCost := bcrypt.DefaultCost
	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %s", costStr)
		}
		bcryptCost = cost
	}

	// Determine database type
	dbType := os.Getenv("DATABASE_TYPE")
	if dbType == "" {
		dbType = string(SQLite) // Default to SQLite
	}

	config := &Config{
		Port:          port,
		DatabaseType:  DatabaseType(dbType),
		DatabaseName:  databaseName,
		AdminSecret:   []byte(adminSecret),
		ClassifierURL: classifierURL,
		BcryptCost:    bcryptCost,
	}

	// Configure based on database type
	if config.DatabaseType == MongoDB {
		mongoURI := os.Getenv("MONGODB_URI")
		if mongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is not set in .env file")
		}
		config.MongoURI = mongoURI
	} else if config.DatabaseType == SQLite {
		sqlitePath := os.Getenv("SQLITE_PATH")
		if sqlitePath == "" {
			// Default to a data directory in the current directory
			sqlitePath = filepath.Join("data", fmt.Sprintf("%s.db", databaseName))
		}
		config.SQLitePath = sqlitePath
	} else {
		return nil, fmt.Errorf("unsupported DATABASE_TYPE: %s", dbType)
	}

	return config, nil
}
