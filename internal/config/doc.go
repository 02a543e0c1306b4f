// Package config loads the dashboard configuration.
//
// Sources, lowest precedence first:
//
//  1. Default()
//  2. YAML file: $DASH_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//  3. .env file in the working directory (never overrides real env vars)
//  4. Environment variables with the DASH_ prefix
//
// A few bare names are accepted for compatibility with hosting platforms:
//
//	PORT       same as DASH_SERVER_PORT
//	DATA_DIR   same as DASH_DATA_DIR
//	LOG_LEVEL  same as DASH_LOGGING_LEVEL
//
// Example:
//
//	DASH_DATA_DIR=/srv/bvmt DASH_DATA_CONVENTION=fraction PORT=9000 ./web
package config
