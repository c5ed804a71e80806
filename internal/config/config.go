// Package config resolves server settings from flags and the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Config holds everything the server needs to start.
type Config struct {
	DBPath      string
	Addr        string
	AdminUser   string
	LogPath     string
	LogLevel    string
	CORSOrigins []string
}

// Getenv returns the value of key, or fallback when it is unset or empty.
func Getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

const usage = `Usage: logistika [flags]

Flags:
  -d, -db <path>          SQLite database path (default: logistika.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        system administrator username on first run (default: SystemAdmin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -log-level <level>      debug, info, warn or error (default: info)
  -cors <origins>         comma separated allowed CORS origins (default: none)
  -h, -help               show this help and exit

Environment:
  LOGISTIKA_DB, LOGISTIKA_ADDR, LOGISTIKA_ADMIN, LOGISTIKA_LOG,
  LOGISTIKA_LOG_LEVEL and CORS_ALLOWED_ORIGINS provide defaults for the
  flags above.
`

// Load parses args (without the program name). Environment variables supply
// the defaults and flags override them. A help request returns flag.ErrHelp
// after printing usage to out.
func Load(args []string, out io.Writer) (Config, error) {
	fs := flag.NewFlagSet("logistika", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	var cfg Config

	dbPath := Getenv("LOGISTIKA_DB", "logistika.sqlite3")
	fs.StringVar(&cfg.DBPath, "db", dbPath, "")
	fs.StringVar(&cfg.DBPath, "d", dbPath, "")

	addr := Getenv("LOGISTIKA_ADDR", ":8080")
	fs.StringVar(&cfg.Addr, "addr", addr, "")
	fs.StringVar(&cfg.Addr, "a", addr, "")

	admin := Getenv("LOGISTIKA_ADMIN", "SystemAdmin")
	fs.StringVar(&cfg.AdminUser, "user", admin, "")
	fs.StringVar(&cfg.AdminUser, "u", admin, "")

	logPath := Getenv("LOGISTIKA_LOG", "")
	fs.StringVar(&cfg.LogPath, "log", logPath, "")
	fs.StringVar(&cfg.LogPath, "l", logPath, "")

	fs.StringVar(&cfg.LogLevel, "log-level", Getenv("LOGISTIKA_LOG_LEVEL", "info"), "")

	var origins string
	fs.StringVar(&origins, "cors", Getenv("CORS_ALLOWED_ORIGINS", ""), "")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() > 0 {
		fs.Usage()
		return Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, errors.New("database path must not be empty")
	}
	if strings.TrimSpace(cfg.AdminUser) == "" {
		return Config{}, errors.New("admin username must not be empty")
	}

	cfg.CORSOrigins = splitOrigins(origins)
	return cfg, nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
