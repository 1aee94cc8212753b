package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"5001"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		// 客户端会读取响应头中的 auth-token
		CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Driver             string `env:"DRIVER" envDefault:"postgres"` // postgres 或 memory
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Name     string `env:"NAME" envDefault:"Super Admin"`
		Password string `env:"PASSWORD,required"`
		Email    string `env:"EMAIL" envDefault:"admin@worksync.com"`
	} `envPrefix:"INITIAL_ADMIN_"`
	// 为空时使用初始管理员的邮箱
	SuperAdminEmail string `env:"SUPER_ADMIN_EMAIL"`
	JWT             struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天，0 表示不过期
		Secret     string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Attendance struct {
		TimeZone string `env:"TIMEZONE" envDefault:"Local"`
	} `envPrefix:"ATTENDANCE_"`
	Pagination struct {
		DefaultLimit int `env:"DEFAULT_LIMIT" envDefault:"10"`
		MaxLimit     int `env:"MAX_LIMIT" envDefault:"100"`
	} `envPrefix:"PAGINATION_"`
	Upload struct {
		Dir      string `env:"DIR" envDefault:"./public/uploads/profiles"`
		MaxBytes int64  `env:"MAX_BYTES" envDefault:"5242880"` // 5 MiB
	} `envPrefix:"UPLOAD_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"worksync@123"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"worksync.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"` // 为空时邮件只写日志
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST"` // 为空时不校验会话版本
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
	} `envPrefix:"REDIS_"`
	OTEL struct {
		Endpoint    string `env:"EXPORTER_OTLP_ENDPOINT"`
		Insecure    bool   `env:"EXPORTER_OTLP_INSECURE" envDefault:"false"`
		ServiceName string `env:"SERVICE_NAME" envDefault:"worksync-api"`
	} `envPrefix:"OTEL_"`
}

func LoadConfig() (*Config, error) {
	// 本地开发时从 .env 读取，文件不存在时直接使用环境变量
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.SuperAdminEmail == "" {
		cfg.SuperAdminEmail = cfg.InitialAdmin.Email
	}

	if cfg.Database.Driver == "postgres" && cfg.Database.DSN == "" {
		return nil, errors.New(`DATABASE_DSN is required when DATABASE_DRIVER is "postgres"`)
	}

	if _, err := cfg.AttendanceLocation(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AttendanceLocation 决定考勤"一天"的边界
func (c *Config) AttendanceLocation() (*time.Location, error) {
	return time.LoadLocation(c.Attendance.TimeZone)
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.QueryTimeout) * time.Second
}

func (c *Config) TransactionTimeout() time.Duration {
	return time.Duration(c.Database.TransactionTimeout) * time.Second
}
