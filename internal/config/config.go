package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"dlithe/intern-portal/intern-portal-backend/internal/schema"
)

// Config represents the application configuration
type Config struct {
	Server           ServerConfig            `json:"server"`
	Database         DatabaseConfig          `json:"database"`
	Auth             AuthConfig              `json:"auth"`
	Worker           WorkerConfig            `json:"worker"`
	Organizations    map[string]Organization `json:"organizations"`
	DomainShortCodes map[string]string       `json:"domain_short_codes"`
	ColumnAliases    []schema.FieldAlias     `json:"column_aliases,omitempty"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// WorkerConfig configures the issue worker
type WorkerConfig struct {
	Schedule  string `json:"schedule"`
	OutputDir string `json:"output_dir"`
}

// Organization describes an issuing body: the letterhead text printed on its
// certificates and the paths of its image assets.
type Organization struct {
	LegalName     string `json:"legal_name"`
	CIN           string `json:"cin"`
	FooterLine1   string `json:"footer_line1"`
	FooterLine2   string `json:"footer_line2"`
	LogoPath      string `json:"logo_path"`
	SealPath      string `json:"seal_path"`
	SignaturePath string `json:"signature_path"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	overrideWithEnv(config)

	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "intern_portal",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Worker: WorkerConfig{
			Schedule:  "@every 1h",
			OutputDir: "bundles",
		},
		Organizations: map[string]Organization{
			"DLithe": {
				LegalName:     "DLithe Consultancy Services Pvt. Ltd.",
				CIN:           "CIN: U72900KA2019PTC121035",
				FooterLine1:   "Registered office: #51, 1st Main, 6th Block, 3rd Phase, BSK 3rd Stage, Bangalore - 85",
				FooterLine2:   "M: 9008815252 | www.dlithe.com | info@dlithe.com",
				LogoPath:      "assets/dlithe_logo.png",
				SealPath:      "assets/dlithe_seal.png",
				SignaturePath: "assets/dlithe_signature.jpg",
			},
			"nxtAlign": {
				LegalName:     "nxtAlign Innovation Pvt.Ltd.",
				CIN:           "CIN: U73100KA2022PTC165879",
				FooterLine1:   "Registered office: H No.4061/B 01,Near Chidambar Ashram Health Camp Betageri,Gadag KA 582102",
				FooterLine2:   "M: 8553300781 | www.nxtalign.com | nxtalign@gmail.com",
				LogoPath:      "assets/nxtalign_logo.png",
				SealPath:      "assets/nxtalign_seal.png",
				SignaturePath: "assets/nxtalign_signature.jpg",
			},
		},
		DomainShortCodes: map[string]string{
			"Python Fullstack": "PY",
			"Web Development":  "WD",
			"Cybersecurity":    "CS",
			"Java Full Stack":  "JFSD",
			"AIML":             "AIML",
		},
	}
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if schedule := os.Getenv("WORKER_SCHEDULE"); schedule != "" {
		config.Worker.Schedule = schedule
	}
	if dir := os.Getenv("WORKER_OUTPUT_DIR"); dir != "" {
		config.Worker.OutputDir = dir
	}
}

// Aliases returns the configured column alias table, falling back to the
// built-in defaults when none is configured.
func (c *Config) Aliases() []schema.FieldAlias {
	if len(c.ColumnAliases) == 0 {
		return schema.DefaultAliases()
	}
	return c.ColumnAliases
}

// GetDatabaseDSN returns the database connection string
func (c *DatabaseConfig) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
