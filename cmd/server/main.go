package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/akflix/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	catalogSeedPath = configVar[string]{
		envKey:       "SERVER_CATALOG_SEED_PATH",
		flagKey:      "catalog-seed-path",
		defaultValue: "",
		usage:        "YAML file with movies to load into the catalog on startup",
	}
	wsMessageRate = configVar[float64]{
		envKey:       "SERVER_WS_MESSAGE_RATE",
		flagKey:      "ws-message-rate",
		defaultValue: 50,
		usage:        "Inbound websocket messages per second allowed per connection",
	}
	wsMessageBurst = configVar[int]{
		envKey:       "SERVER_WS_MESSAGE_BURST",
		flagKey:      "ws-message-burst",
		defaultValue: 100,
		usage:        "Inbound websocket message burst per connection",
	}
	connectPerMinute = configVar[int]{
		envKey:       "SERVER_CONNECT_PER_MINUTE",
		flagKey:      "connect-per-minute",
		defaultValue: 30,
		usage:        "Player connections allowed per client IP per minute, 0 disables the limit",
	}
	controlsHideDelay = configVar[time.Duration]{
		envKey:       "SERVER_CONTROLS_HIDE_DELAY",
		flagKey:      "controls-hide-delay",
		defaultValue: 3 * time.Second,
		usage:        "Idle time before player controls hide during playback",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.String(catalogSeedPath.flagKey, catalogSeedPath.defaultValue, catalogSeedPath.usage)
	pflag.Float64(wsMessageRate.flagKey, wsMessageRate.defaultValue, wsMessageRate.usage)
	pflag.Int(wsMessageBurst.flagKey, wsMessageBurst.defaultValue, wsMessageBurst.usage)
	pflag.Int(connectPerMinute.flagKey, connectPerMinute.defaultValue, connectPerMinute.usage)
	pflag.Duration(controlsHideDelay.flagKey, controlsHideDelay.defaultValue, controlsHideDelay.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(port)
	bind(host)
	bind(logLevel)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)
	bind(catalogSeedPath)
	bind(wsMessageRate)
	bind(wsMessageBurst)
	bind(connectPerMinute)
	bind(controlsHideDelay)

	config := &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
		CatalogSeedPath:   viper.GetString(catalogSeedPath.flagKey),
		WSMessageRate:     viper.GetFloat64(wsMessageRate.flagKey),
		WSMessageBurst:    viper.GetInt(wsMessageBurst.flagKey),
		ConnectPerMinute:  viper.GetInt(connectPerMinute.flagKey),
		ControlsHideDelay: viper.GetDuration(controlsHideDelay.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
