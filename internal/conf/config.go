package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/pkg/logger"
	"github.com/codeskytz/date-api/internal/pkg/redis"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Redis    redis.Config    `mapstructure:"redis"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Log      logger.Config   `mapstructure:"log"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Email    EmailConfig     `mapstructure:"email"`
	Media    MediaConfig     `mapstructure:"media"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageConfig configures the S3-compatible object store backing
// media uploads
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`

	// PublicBaseURL is the externally visible prefix for public objects,
	// e.g. "https://s3.wasabisys.com/date-api". URL-to-key resolution
	// strips this prefix.
	PublicBaseURL string `mapstructure:"public_base_url"`

	// PresignTTL is the lifetime of presigned URLs for private objects
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

type AuthConfig struct {
	// BcryptCost controls password hash cost; 0 uses the library default
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// AdminEmail/AdminPassword are the moderation console credentials
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`

	// AdminJWTSecret signs admin session tokens
	AdminJWTSecret string        `mapstructure:"admin_jwt_secret"`
	AdminTokenTTL  time.Duration `mapstructure:"admin_token_ttl"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// MediaConfig allows overriding the default upload size ceilings (bytes)
type MediaConfig struct {
	MaxAvatarSize int64 `mapstructure:"max_avatar_size"`
	MaxCoverSize  int64 `mapstructure:"max_cover_size"`
	MaxImageSize  int64 `mapstructure:"max_image_size"`
	MaxVideoSize  int64 `mapstructure:"max_video_size"`
}

// LoadConfig reads configuration from a yaml file with env overrides
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.SetDefaults()
	return &config, nil
}

// SetDefaults fills unset fields with sane defaults
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.PresignTTL == 0 {
		c.Storage.PresignTTL = 7 * 24 * time.Hour
	}
	if c.Auth.AdminTokenTTL == 0 {
		c.Auth.AdminTokenTTL = 12 * time.Hour
	}
}
