package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	Port                 string
	DBDSN                string
	LogFile              string
	JWTSecret            string
	PaymentMethods       []string
	DefaultPaymentMethod string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "tambour.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./tambour.log"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
		log.Printf("[config] JWT_SECRET not set, using insecure dev default")
	}

	methods := []string{"Stripe", "Transfer"}
	if raw := os.Getenv("PAYMENT_METHODS"); raw != "" {
		methods = methods[:0]
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				methods = append(methods, m)
			}
		}
	}
	defMethod := os.Getenv("DEFAULT_PAYMENT_METHOD")
	if defMethod == "" {
		defMethod = methods[0]
	}

	cfg := Config{
		Port:                 port,
		DBDSN:                dsn,
		LogFile:              logFile,
		JWTSecret:            secret,
		PaymentMethods:       methods,
		DefaultPaymentMethod: defMethod,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s PAYMENT_METHODS=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, strings.Join(cfg.PaymentMethods, ","))
	return cfg
}
