package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// MomoConfig carries the MoMo gateway credentials and endpoints.
// Injected into the gateway, never read from globals.
type MomoConfig struct {
	PartnerCode   string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	QueryEndpoint string
	CallbackURL   string
	RedirectURL   string
}

type ZaloPayConfig struct {
	AppID         string
	Key1          string
	Key2          string
	Endpoint      string
	QueryEndpoint string
	CallbackURL   string
	RedirectURL   string
}

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret string

	Momo    MomoConfig
	ZaloPay ZaloPayConfig

	SendGridAPIKey string
	MailSender     string

	UploadDir string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		Momo: MomoConfig{
			PartnerCode:   os.Getenv("MOMO_PARTNER_CODE"),
			AccessKey:     os.Getenv("MOMO_ACCESS_KEY"),
			SecretKey:     os.Getenv("MOMO_SECRET_KEY"),
			Endpoint:      os.Getenv("MOMO_ENDPOINT"),
			QueryEndpoint: os.Getenv("MOMO_QUERY_ENDPOINT"),
			CallbackURL:   os.Getenv("MOMO_CALLBACK_URL"),
			RedirectURL:   os.Getenv("MOMO_REDIRECT_URL"),
		},
		ZaloPay: ZaloPayConfig{
			AppID:         os.Getenv("ZALOPAY_APP_ID"),
			Key1:          os.Getenv("ZALOPAY_KEY1"),
			Key2:          os.Getenv("ZALOPAY_KEY2"),
			Endpoint:      os.Getenv("ZALOPAY_ENDPOINT"),
			QueryEndpoint: os.Getenv("ZALOPAY_QUERY_ENDPOINT"),
			CallbackURL:   os.Getenv("ZALOPAY_CALLBACK_URL"),
			RedirectURL:   os.Getenv("ZALOPAY_REDIRECT_URL"),
		},

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailSender:     os.Getenv("MAIL_SENDER"),

		UploadDir: os.Getenv("UPLOAD_DIR"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	return cfg
}
