package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/deppfellow/newsletter/internal/config"
)

// Connection defaults applied to any field a URL or config leaves empty.
const (
	DefaultUsername = "postgres"
	DefaultHost     = "localhost"
	DefaultPort     = 5432
)

// DB is the connection value object: everything needed to build a
// postgres:// URL, and nothing else.
//
// The general URL form is
//
//	postgresql://[user[:password]@][host][:port][/dbname][?param=value&...]
//
// See https://www.postgresql.org/docs/current/libpq-connect.html#LIBPQ-CONNSTRING
type DB struct {
	Name     string
	Username string
	Password string
	Host     string
	Port     int
	SSLMode  string
}

// FromURL parses a postgres URL. Missing parts take the package defaults.
func FromURL(raw string) (DB, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return DB{}, fmt.Errorf("parse database url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DB{}, fmt.Errorf("parse database url: unsupported scheme %q", u.Scheme)
	}

	db := DB{
		Name:    strings.TrimPrefix(u.Path, "/"),
		Host:    u.Hostname(),
		SSLMode: u.Query().Get("sslmode"),
	}

	if u.User != nil {
		db.Username = u.User.Username()
		db.Password, _ = u.User.Password()
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return DB{}, fmt.Errorf("parse database url: invalid port %q", p)
		}
		db.Port = port
	}

	return db.WithDefaults(), nil
}

// FromConfig builds the value object from config. A configured URL wins over
// the discrete fields; an explicit ssl_mode applies either way.
func FromConfig(cfg config.DatabaseConfig) (DB, error) {
	if cfg.URL != "" {
		db, err := FromURL(cfg.URL)
		if err != nil {
			return DB{}, err
		}
		if cfg.SSLMode != "" {
			db.SSLMode = cfg.SSLMode
		}
		return db, nil
	}

	return DB{
		Name:     cfg.Name,
		Username: cfg.User,
		Password: cfg.Password,
		Host:     cfg.Host,
		Port:     cfg.Port,
		SSLMode:  cfg.SSLMode,
	}.WithDefaults(), nil
}

// WithDefaults returns a copy with empty username, host and port filled in.
func (db DB) WithDefaults() DB {
	if db.Username == "" {
		db.Username = DefaultUsername
	}
	if db.Host == "" {
		db.Host = DefaultHost
	}
	if db.Port == 0 {
		db.Port = DefaultPort
	}
	return db
}

// URL renders the connection URL including the database name.
func (db DB) URL() string {
	return db.render(db.Name)
}

// URLWithoutDB renders the connection URL for the server itself, used to
// CREATE DATABASE before the target database exists.
func (db DB) URLWithoutDB() string {
	return db.render("")
}

// WithName returns a copy pointing at a different database on the same server.
func (db DB) WithName(name string) DB {
	db.Name = name
	return db
}

func (db DB) render(name string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.Username, db.Password),
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
	}
	if db.Password == "" {
		u.User = url.User(db.Username)
	}
	if name != "" {
		u.Path = "/" + name
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String()
}

// String hides the password so the value object is safe to log.
func (db DB) String() string {
	redacted := db
	if redacted.Password != "" {
		redacted.Password = "xxxxx"
	}
	return redacted.URL()
}
