// devstack.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package devstack starts the backing services of the tracker in containers
// for local development and integration tests. Expects a reachable Docker
// daemon.
package devstack

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/traction-tracker/data"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	rootPassword = "devstack_root_pw"
	jwtSecret    = "devstack-secret"

	mariaDBPort  = nat.Port("3306/tcp")
	redisPort    = nat.Port("6379/tcp")
	rabbitMQPort = nat.Port("5672/tcp")

	defaultDBImage       = "mariadb:11.4"
	defaultRedisImage    = "redis:7-alpine"
	defaultRabbitMQImage = "rabbitmq:3.13-alpine"
)

// Options selects the optional services to start alongside MariaDB
type Options struct {
	Redis    bool
	RabbitMQ bool
	// SeedLegacy inserts apps that only have the inline actions column
	SeedLegacy bool
}

// Stack is a running set of containers and the configuration that reaches them
type Stack struct {
	DB       testcontainers.Container
	Redis    testcontainers.Container
	RabbitMQ testcontainers.Container
	Config   *config.Config
}

// Start runs MariaDB (and the services selected in opts), creates the
// development users and migrates the schema. On failure every container
// already started is terminated.
func Start(ctx context.Context, opts Options) (stack *Stack, err error) {
	stack = &Stack{Config: baseConfig()}
	defer func() {
		if err != nil {
			err = multierr.Append(err, stack.Terminate(context.Background()))
			stack = nil
		}
	}()

	stack.DB, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("DB_IMAGE", defaultDBImage),
			ExposedPorts: []string{string(mariaDBPort)},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": rootPassword,
				"MARIADB_ROOT_HOST":     "%",
			},
			WaitingFor: wait.ForListeningPort(mariaDBPort).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return stack, fmt.Errorf("failed to start MariaDB: %w", err)
	}
	host, port, err := endpoint(ctx, stack.DB, mariaDBPort)
	if err != nil {
		return stack, err
	}
	stack.Config.DBHost = host
	stack.Config.DBPort = port

	if err = initMariaDB(ctx, stack.Config, opts.SeedLegacy); err != nil {
		return stack, err
	}

	if opts.Redis {
		stack.Redis, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        getEnv("REDIS_IMAGE", defaultRedisImage),
				ExposedPorts: []string{string(redisPort)},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			return stack, fmt.Errorf("failed to start Redis: %w", err)
		}
		host, port, err := endpoint(ctx, stack.Redis, redisPort)
		if err != nil {
			return stack, err
		}
		stack.Config.CacheDriver = "redis"
		stack.Config.RedisAddr = net.JoinHostPort(host, port)
	}

	if opts.RabbitMQ {
		stack.RabbitMQ, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        getEnv("RABBITMQ_IMAGE", defaultRabbitMQImage),
				ExposedPorts: []string{string(rabbitMQPort)},
				WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			return stack, fmt.Errorf("failed to start RabbitMQ: %w", err)
		}
		host, port, err := endpoint(ctx, stack.RabbitMQ, rabbitMQPort)
		if err != nil {
			return stack, err
		}
		stack.Config.AMQPURL = fmt.Sprintf("amqp://guest:guest@%s/", net.JoinHostPort(host, port))
	}

	return stack, nil
}

// Terminate stops every started container
func (s *Stack) Terminate(ctx context.Context) error {
	var errs error
	for name, c := range map[string]testcontainers.Container{
		"rabbitmq": s.RabbitMQ,
		"redis":    s.Redis,
		"mariadb":  s.DB,
	} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to terminate %s: %w", name, err))
		}
	}
	return errs
}

// EnvLines renders the stack configuration as KEY=value lines for a .env file
func (s *Stack) EnvLines() []string {
	cfg := s.Config
	lines := []string{
		"DB_TYPE=" + cfg.DBType,
		"DB_HOST=" + cfg.DBHost,
		"DB_PORT=" + cfg.DBPort,
		"DB_DATABASE=" + cfg.DBDatabase,
		"DB_APP_USER=" + cfg.DBAppUser,
		"DB_APP_PASSWORD=" + cfg.DBAppPassword,
		"DB_PUBLIC_USER=" + cfg.DBPublicUser,
		"DB_PUBLIC_PASSWORD=" + cfg.DBPublicPassword,
		"AUTH_MODE=" + cfg.AuthMode,
		"AUTH_JWT_SECRET=" + cfg.AuthJWTSecret,
		"CACHE_DRIVER=" + cfg.CacheDriver,
	}
	if cfg.CacheDriver == "redis" {
		lines = append(lines, "REDIS_ADDR="+cfg.RedisAddr)
	}
	if cfg.AMQPURL != "" {
		lines = append(lines, "AMQP_URL="+cfg.AMQPURL)
	}
	return lines
}

func baseConfig() *config.Config {
	return &config.Config{
		Port:                    "3000",
		DBType:                  "mariadb",
		DBDatabase:              data.DevDatabase,
		DBAppUser:               data.DevAppUser,
		DBAppPassword:           data.DevAppPassword,
		DBAppConnectionLimit:    5,
		DBPublicUser:            data.DevPublicUser,
		DBPublicPassword:        data.DevPublicPassword,
		DBPublicConnectionLimit: 2,
		DBLogLevel:              "warn",
		AuthMode:                config.AuthModeJWT,
		AuthJWTSecret:           jwtSecret,
		AIBaseURL:               "https://api.openai.com/v1",
		AIModel:                 "gpt-4o-mini",
		AITimeout:               30 * time.Second,
		CacheDriver:             "memory",
		CacheTTL:                30 * time.Second,
		EventsExchange:          "traction.events",
		SuggestionsRate:         0.2,
		SuggestionsBurst:        3,
		ForcePublicOnUpdate:     true,
		LogLevel:                "info",
		LogFormat:               "console",
	}
}

func endpoint(ctx context.Context, c testcontainers.Container, port nat.Port) (string, string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", "", fmt.Errorf("failed to get mapped port %s: %w", port, err)
	}
	return host, mapped.Port(), nil
}

// initMariaDB creates the development users as root, then migrates the
// schema as the app user.
func initMariaDB(ctx context.Context, cfg *config.Config, seed bool) error {
	rootCfg := *cfg
	rootCfg.DBDatabase = ""
	dialector, err := database.Dialector(&rootCfg, "root", rootPassword)
	if err != nil {
		return err
	}
	root, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer database.Close(root)

	// Wait for connection to be really ready
	sqlDB, err := root.DB()
	if err != nil {
		return err
	}
	for i := 0; i < 30; i++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	if err := executeSQL(root.WithContext(ctx), data.InitdbMariaDBUsers); err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}

	app, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(app)
	if err := database.AutoMigrate(app); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if seed {
		if err := executeSQL(root.WithContext(ctx), data.InitdbMariaDBLegacySeed); err != nil {
			return fmt.Errorf("failed to seed legacy apps: %w", err)
		}
	}

	zap.L().Info("mariadb initialized", zap.String("host", cfg.DBHost), zap.String("port", cfg.DBPort))
	return nil
}

// executeSQL runs each statement of a script. Line comments are dropped.
func executeSQL(db *gorm.DB, script string) error {
	var lines []string
	for _, l := range strings.Split(script, "\n") {
		lines = append(lines, excludeComment(l))
	}

	for _, q := range strings.Split(strings.Join(lines, "\n"), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if err := db.Exec(q).Error; err != nil {
			return fmt.Errorf("%w : when executing > %s", err, q)
		}
	}
	return nil
}

// excludeComment strips a trailing -- comment that is not inside a quoted string
func excludeComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '-' && i+1 < len(line) && line[i+1] == '-':
			return line[:i]
		}
	}
	return line
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
