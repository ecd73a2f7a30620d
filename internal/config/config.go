package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config is built once at startup from flags, environment and .env, then
// passed explicitly to every component.
type Config struct {
	DBDriver   string `name:"db-driver" enum:"mysql,sqlite" default:"mysql" env:"KRS_DB_DRIVER" help:"Database driver (mysql, sqlite)."`
	DBHost     string `name:"db-host" default:"127.0.0.1" env:"KRS_DB_HOST" help:"Database host."`
	DBPort     int    `name:"db-port" default:"3306" env:"KRS_DB_PORT" help:"Database port."`
	DBUser     string `name:"db-user" env:"KRS_DB_USER" help:"Database user."`
	DBPassword string `name:"db-password" env:"KRS_DB_PASSWORD" help:"Database password."`
	DBName     string `name:"db-name" default:"krs_weather_db" env:"KRS_DB_NAME" help:"Database name."`
	DBTable    string `name:"db-table" default:"krs_weather_data" env:"KRS_DB_TABLE" help:"Table holding weather readings."`
	DBPath     string `name:"db-path" default:"data/weather.db" env:"KRS_DB_PATH" help:"SQLite database file (sqlite driver only)."`
	DBTimezone string `name:"db-timezone" default:"Local" env:"KRS_DB_TIMEZONE" help:"Time zone of time_stamp values stored without an offset (IANA name, Local or UTC)."`

	ConnectAttempts int           `name:"connect-attempts" default:"3" env:"KRS_CONNECT_ATTEMPTS" help:"Connection attempts before giving up."`
	ConnectDelay    time.Duration `name:"connect-delay" default:"5s" env:"KRS_CONNECT_DELAY" help:"Fixed pause between failed connection attempts."`

	ServiceManager string `name:"service-manager" enum:"auto,systemd,windows,none" default:"auto" env:"KRS_SERVICE_MANAGER" help:"How to check and start the database service (auto, systemd, windows, none)."`
	ServiceName    string `name:"service-name" env:"KRS_SERVICE_NAME" help:"Database service name (default: mysql on systemd, MySQL80 on windows)."`

	OutputDir  string        `name:"output-dir" default:"docs" env:"KRS_OUTPUT_DIR" help:"Directory for the CSV snapshot and charts."`
	StaleAfter time.Duration `name:"stale-after" default:"2h" env:"KRS_STALE_AFTER" help:"Warn when the newest reading is older than this (0 disables)."`
	ShareCard  bool          `name:"share-card" env:"KRS_SHARE_CARD" help:"Also render a PNG share card of current conditions."`
	EChartsJS  string        `name:"echarts-js" type:"existingfile" env:"KRS_ECHARTS_JS" help:"Local echarts.min.js to inline into the trend chart (default: inline SVG chart)."`

	MetricsFile string `name:"metrics-file" env:"KRS_METRICS_FILE" help:"Write run metrics in Prometheus text format to this file."`

	FTPAddr     string `name:"ftp-addr" env:"KRS_FTP_ADDR" help:"Publish artifacts to this FTP server (host:port)."`
	FTPUser     string `name:"ftp-user" env:"KRS_FTP_USER" help:"FTP user."`
	FTPPassword string `name:"ftp-password" env:"KRS_FTP_PASSWORD" help:"FTP password."`
	FTPDir      string `name:"ftp-dir" default:"/" env:"KRS_FTP_DIR" help:"Remote directory for published artifacts."`

	LogLevel  string `name:"log-level" enum:"debug,info,warn,error" default:"info" env:"LOG_LEVEL" help:"Log level."`
	LogFormat string `name:"log-format" enum:"text,json" default:"text" env:"LOG_FORMAT" help:"Log output format."`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if strings.TrimSpace(c.DBHost) == "" {
			return fmt.Errorf("db-host is required for the mysql driver")
		}
		if c.DBPort <= 0 || c.DBPort > 65535 {
			return fmt.Errorf("invalid db-port %d", c.DBPort)
		}
		if strings.TrimSpace(c.DBName) == "" {
			return fmt.Errorf("db-name is required for the mysql driver")
		}
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("db-path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid db-driver %q (allowed: mysql, sqlite)", c.DBDriver)
	}
	if !identRe.MatchString(c.DBTable) {
		return fmt.Errorf("invalid db-table %q", c.DBTable)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("connect-attempts must be at least 1, got %d", c.ConnectAttempts)
	}
	if c.ConnectDelay < 0 {
		return fmt.Errorf("connect-delay must not be negative, got %s", c.ConnectDelay)
	}
	if c.StaleAfter < 0 {
		return fmt.Errorf("stale-after must not be negative, got %s", c.StaleAfter)
	}
	switch c.ServiceManager {
	case "auto", "systemd", "windows", "none":
	default:
		return fmt.Errorf("invalid service-manager %q (allowed: auto, systemd, windows, none)", c.ServiceManager)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output-dir is required")
	}
	if c.FTPAddr != "" && c.FTPUser == "" {
		return fmt.Errorf("ftp-user is required when ftp-addr is set")
	}
	return nil
}

// Location resolves DBTimezone. Empty and "Local" mean the host's zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.DBTimezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DBTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid db-timezone %q: %w", c.DBTimezone, err)
	}
	return loc, nil
}

// Warnings reports configuration that is allowed but likely to fail later.
// Missing credentials are not fatal here; the connection attempt fails instead.
func (c *Config) Warnings() []string {
	if c.DBDriver != "mysql" {
		return nil
	}
	var warnings []string
	if c.DBUser == "" {
		warnings = append(warnings, "KRS_DB_USER is not set")
	}
	if c.DBPassword == "" {
		warnings = append(warnings, "KRS_DB_PASSWORD is not set")
	}
	return warnings
}

// ResolvedServiceManager maps "auto" to the platform's service manager.
// The sqlite driver has no service to manage.
func (c *Config) ResolvedServiceManager() string {
	if c.DBDriver == "sqlite" {
		return "none"
	}
	if c.ServiceManager != "auto" {
		return c.ServiceManager
	}
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "linux":
		return "systemd"
	default:
		return "none"
	}
}

// ResolvedServiceName returns the configured service name or the
// default MySQL service name for the given manager.
func (c *Config) ResolvedServiceName(manager string) string {
	if c.ServiceName != "" {
		return c.ServiceName
	}
	if manager == "windows" {
		return "MySQL80"
	}
	return "mysql"
}
