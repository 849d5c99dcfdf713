package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/davidemioma/go-jwt-auth/pkg/auth"
	"github.com/davidemioma/go-jwt-auth/pkg/login"
	"github.com/davidemioma/go-jwt-auth/pkg/notification"
	"github.com/davidemioma/go-jwt-auth/pkg/password"
	"github.com/davidemioma/go-jwt-auth/pkg/profile"
	"github.com/davidemioma/go-jwt-auth/pkg/session"
	"github.com/davidemioma/go-jwt-auth/pkg/signup"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

type DbConfig struct {
	Host     string `env:"AUTH_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AUTH_PG_PORT" env-default:"5432"`
	Database string `env:"AUTH_PG_DATABASE" env-default:"auth_db"`
	User     string `env:"AUTH_PG_USER" env-default:"auth"`
	Password string `env:"AUTH_PG_PASSWORD" env-default:"pwd"`
}

func (d DbConfig) toURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Database)
}

type JwtConfig struct {
	JwtSecret            string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	AccessExpiryMinutes  int    `env:"ACCESS_TOKEN_EXPIRY_MINUTES" env-default:"15"`
	RefreshExpiryMinutes int    `env:"REFRESH_TOKEN_EXPIRY_MINUTES" env-default:"60"`
	CookieHttpOnly       bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure         bool   `env:"COOKIE_SECURE" env-default:"false"`
}

type EmailConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"SMTP_TLS" env-default:"false"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"noreply@example.com"`
}

type AppConfig struct {
	Addr    string `env:"APP_ADDR" env-default:":4000"`
	BaseURL string `env:"APP_BASE_URL" env-default:"http://localhost:3000"`
}

type Config struct {
	DbConfig    DbConfig
	JwtConfig   JwtConfig
	EmailConfig EmailConfig
	AppConfig   AppConfig
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment")
	}

	config := Config{}
	cleanenv.ReadEnv(&config)

	pool, err := pgxpool.New(context.Background(), config.DbConfig.toURL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", config.DbConfig.Database, "host", config.DbConfig.Host, "err", err)
		os.Exit(-1)
	}
	defer pool.Close()

	userRepo := user.NewPostgresRepository(pool)
	tokenRepo := verification.NewPostgresRepository(pool)

	tokenService := verification.NewService(tokenRepo)

	sessionService := session.NewService(
		config.JwtConfig.JwtSecret,
		session.WithAccessTokenExpiry(time.Duration(config.JwtConfig.AccessExpiryMinutes)*time.Minute),
		session.WithRefreshTokenExpiry(time.Duration(config.JwtConfig.RefreshExpiryMinutes)*time.Minute),
	)

	cookieService := session.NewCookieService(
		session.NewCookieSetter(config.JwtConfig.CookieHttpOnly, config.JwtConfig.CookieSecure),
	)

	notifier, err := notification.NewEmailNotifier(notification.SMTPConfig{
		Host:     config.EmailConfig.Host,
		Port:     config.EmailConfig.Port,
		TLS:      config.EmailConfig.TLS,
		Username: config.EmailConfig.Username,
		Password: config.EmailConfig.Password,
		From:     config.EmailConfig.From,
	}, config.AppConfig.BaseURL)
	if err != nil {
		slog.Error("Failed creating email notifier", "err", err)
		os.Exit(-1)
	}

	hasher := password.NewBcryptHasher()

	signupHandle := signup.NewHandle(
		signup.WithService(signup.NewService(userRepo, tokenService, notifier, hasher)),
	)
	loginHandle := login.NewHandle(
		login.WithService(login.NewService(userRepo, tokenService, sessionService, notifier, hasher)),
		login.WithCookieService(cookieService),
	)
	profileHandle := profile.NewHandle(
		profile.WithService(profile.NewService(userRepo, tokenService, notifier, hasher)),
	)

	guard := auth.NewGuard(sessionService, cookieService, userRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", signupHandle.Register)
		r.Patch("/verify-email", signupHandle.VerifyEmail)
		r.Post("/login", loginHandle.Login)
		r.Post("/reset-password", loginHandle.ResetPassword)
		r.Patch("/new-password", loginHandle.NewPassword)
		r.Get("/logout", loginHandle.Logout)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(guard.RequireUser)
		r.Mount("/", profileHandle.Routes())
	})

	slog.Info("Starting auth server", "addr", config.AppConfig.Addr)

	server := &http.Server{
		Addr:         config.AppConfig.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}
	if err := server.ListenAndServe(); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(-1)
	}
}
