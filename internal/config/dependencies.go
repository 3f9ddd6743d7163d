// Package config wires the application's dependencies from configuration.
package config

import (
	"database/sql"
	"fmt"

	"workorder/configs"
	"workorder/internal/api/v1/handlers"
	"workorder/internal/auth"
	"workorder/internal/cache"
	"workorder/internal/repository"
	"workorder/internal/service"
	myws "workorder/internal/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

const hubBuffer = 256

// Dependencies yang digunakan di seluruh aplikasi, dibangun sekali di main.
type Dependencies struct {
	Tokens   *auth.TokenManager
	Users    *service.UserService
	Tasks    *service.TaskService
	Sweeper  *service.TokenSweeper
	Hub      *myws.Hub
	Validate *validator.Validate
}

// NewDependencies builds the services on top of db. A nil redisClient turns
// caching off.
func NewDependencies(cfg configs.Config, db *sql.DB, redisClient *redis.Client) (*Dependencies, error) {
	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	var c cache.Cache = cache.Nop{}
	if redisClient != nil {
		c = cache.NewRedisCache(redisClient, cfg.CacheTTL)
	}

	userRepo := repository.NewUserRepository(db, dialect, nil)
	tokenRepo := repository.NewTokenRepository(db, dialect, nil)
	taskRepo := repository.NewTaskRepository(db, dialect, nil)
	hub := myws.NewHub(hubBuffer)

	return &Dependencies{
		Tokens:   tokens,
		Users:    service.NewUserService(userRepo, tokenRepo, tokens, auth.NewPasswordHasher(cfg.BcryptCost), c),
		Tasks:    service.NewTaskService(taskRepo, c, hub),
		Sweeper:  service.NewTokenSweeper(tokenRepo, cfg.TokenSweepInterval),
		Hub:      hub,
		Validate: handlers.NewValidator(),
	}, nil
}
