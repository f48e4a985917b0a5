package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Env      string         `mapstructure:"env"` // 环境: development, production
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Xero     XeroConfig     `mapstructure:"xero"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string  `mapstructure:"host"`
	Port           int     `mapstructure:"port"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 秒
}

// LarkConfig Lark Base 配置
type LarkConfig struct {
	AppID        string            `mapstructure:"app_id"`
	AppSecret    string            `mapstructure:"app_secret"`
	BaseAppToken string            `mapstructure:"base_app_token"`
	APIBase      string            `mapstructure:"api_base"`
	Tables       map[string]string `mapstructure:"tables"` // 资源名 -> table id
}

// TableID 根据资源名查找 Lark 表 ID
func (c *LarkConfig) TableID(name string) (string, error) {
	id, ok := c.Tables[name]
	if !ok || id == "" {
		return "", fmt.Errorf("missing table id for %q (set lark.tables.%s or LARK_TABLE_%s)",
			name, name, strings.ToUpper(name))
	}
	return id, nil
}

// XeroConfig Xero OAuth2 配置
type XeroConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	DashboardURL string `mapstructure:"dashboard_url"` // OAuth 回调完成后跳转的前端地址
	SyncFromDate string `mapstructure:"sync_from_date"`
	SyncToDate   string `mapstructure:"sync_to_date"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error
	Format string `mapstructure:"format"` // 日志格式: json, text
	Output string `mapstructure:"output"` // 输出位置: stdout, file, both
}

// Load 加载配置,支持配置文件和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果提供了配置文件路径,从文件加载
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		// 尝试从默认位置加载
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.dupoin-hr")
		// 忽略配置文件不存在的错误,使用默认值
		_ = v.ReadInConfig()
	}

	// 支持环境变量
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容旧部署的裸环境变量名（无 APP_ 前缀）
	bindLegacyEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// IsProduction 判断是否为生产环境
func IsProduction(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Env == "production"
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// bindLegacyEnv 绑定原部署使用的环境变量名
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("lark.app_id", "APP_LARK_APP_ID", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "APP_LARK_APP_SECRET", "LARK_APP_SECRET")
	_ = v.BindEnv("lark.base_app_token", "APP_LARK_BASE_APP_TOKEN", "LARK_BASE_APP_TOKEN")
	_ = v.BindEnv("xero.client_id", "APP_XERO_CLIENT_ID", "XERO_CLIENT_ID")
	_ = v.BindEnv("xero.client_secret", "APP_XERO_CLIENT_SECRET", "XERO_CLIENT_SECRET")
	_ = v.BindEnv("xero.redirect_uri", "APP_XERO_REDIRECT_URI", "XERO_REDIRECT_URI")

	for _, table := range []string{"employee", "manpower", "recruitment", "candidate", "onboarding", "offboarding"} {
		key := "lark.tables." + table
		legacy := "LARK_TABLE_" + strings.ToUpper(table)
		_ = v.BindEnv(key, "APP_"+legacy, legacy)
	}
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 环境变量
	env := v.GetString("env")
	if env == "" {
		env = os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
	}
	v.SetDefault("env", env)

	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 100)
	v.SetDefault("server.rate_limit_burst", 200)

	// 数据库默认配置
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hr_dashboard")
	v.SetDefault("database.sslmode", "disable")

	// 数据库连接池配置（根据环境设置默认值）
	if env == "production" {
		v.SetDefault("database.max_idle_conns", 20)
		v.SetDefault("database.max_open_conns", 200)
		v.SetDefault("database.conn_max_lifetime", 3600) // 1 小时
		v.SetDefault("database.conn_max_idle_time", 300) // 5 分钟
	} else {
		v.SetDefault("database.max_idle_conns", 10)
		v.SetDefault("database.max_open_conns", 100)
		v.SetDefault("database.conn_max_lifetime", 3600) // 1 小时
		v.SetDefault("database.conn_max_idle_time", 600) // 10 分钟
	}

	// Lark 默认配置
	v.SetDefault("lark.api_base", "https://open.larksuite.com/open-apis")
	v.SetDefault("lark.tables", map[string]string{})

	// Xero 默认配置
	v.SetDefault("xero.dashboard_url", "https://hr-app.gorillaworkout.id/dashboard/xero")
	v.SetDefault("xero.sync_from_date", "2025-02-01")
	v.SetDefault("xero.sync_to_date", "2025-03-31")

	// CORS 默认配置
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.max_age", 86400)

	// 日志配置（根据环境设置默认值）
	if env == "production" {
		v.SetDefault("log.level", "warn")
		v.SetDefault("log.format", "json")
	} else {
		v.SetDefault("log.level", "debug")
		v.SetDefault("log.format", "text")
	}
	v.SetDefault("log.output", "stdout")
}
