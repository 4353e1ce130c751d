package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

type Config struct {
	App      App      `yaml:"app"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Upload   Upload   `yaml:"upload"`
}

type App struct {
	Environment string `yaml:"environment"`
}

type Server struct {
	Port string `yaml:"port"`
}

type Database struct {
	DSN string `yaml:"dsn"`
}

type Upload struct {
	// ChunkSize is the raw-byte budget per upload chunk.
	ChunkSize int `yaml:"chunk_size"`
}

// Load reads config.yaml from path, with AUDIOVAULT_* env overrides
// (e.g. AUDIOVAULT_SERVER_PORT). Missing file is fine: defaults apply.
func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("audiovault")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("app.environment", EnvDevelop)
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("database.dsn", "audiovault.db")
	viper.SetDefault("upload.chunk_size", 64*1024)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		App: App{
			Environment: viper.GetString("app.environment"),
		},
		Server: Server{
			Port: viper.GetString("server.port"),
		},
		Database: Database{
			DSN: viper.GetString("database.dsn"),
		},
		Upload: Upload{
			ChunkSize: viper.GetInt("upload.chunk_size"),
		},
	}, nil
}
