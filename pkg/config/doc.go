// Package config loads and validates the notification client configuration.
//
// Configuration can come from three places, applied in this order:
//
//  1. Default(), which sets every optional field
//  2. a YAML file (LoadFile) when one is used
//  3. environment variables, including a .env file loaded with
//     github.com/joho/godotenv and parsed with github.com/caarlos0/env/v11
//
// Environment variables:
//
//	NOTIFY_API_URL                 base URL of the notification API (required)
//	NOTIFY_USER_ID                 user to subscribe as (required)
//	NOTIFY_DEPARTMENT_IDS          comma-separated department ids
//	NOTIFY_APP_KEY, NOTIFY_APP_SECRET
//	NOTIFY_AUTO_CONNECT            default true
//	NOTIFY_AUTO_RECONNECT          default true
//	NOTIFY_MAX_RECONNECT_ATTEMPTS  default -1 (unbounded)
//	NOTIFY_RECONNECT_DELAY         default 1s
//	NOTIFY_MAX_RECONNECT_DELAY     default 30s
//	NOTIFY_IDLE_TIMEOUT            default 0 (disabled)
//	NOTIFY_REQUEST_TIMEOUT         default 10s
//	NOTIFY_LOG_LEVEL, NOTIFY_LOG_FORMAT
//
// Every loader validates its result; failures are *ConfigError values that
// wrap ErrInvalidConfig.
//
//	cfg, err := config.LoadFile("notify.yaml")
//	if config.IsConfigError(err) {
//		log.Fatal(err)
//	}
package config
