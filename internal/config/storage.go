package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// PostgresDSN returns a key/value connection string for pgx.
func (c *Config) PostgresDSN() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresDBName, c.PostgresSSLMode)
	if c.PostgresPassword != "" {
		fmt.Fprintf(&b, " password=%s", c.PostgresPassword)
	}
	return b.String()
}

// PostgresURL returns a postgres:// connection URL. The migration runner
// needs the URL form.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDBName,
	}
	if c.PostgresPassword != "" {
		u.User = url.UserPassword(c.PostgresUser, c.PostgresPassword)
	} else {
		u.User = url.User(c.PostgresUser)
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// parseDatabaseURL applies DATABASE_URL over the discrete postgres fields.
// The URL form is what managed platforms hand out, so it wins when set.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: parsing DATABASE_URL: %v", ErrInvalidDatabaseURL, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidDatabaseURL, u.Scheme)
	}

	if h := u.Hostname(); h != "" {
		c.PostgresHost = h
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: invalid port %q", ErrInvalidDatabaseURL, p)
		}
		c.PostgresPort = port
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			c.PostgresUser = name
		}
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		c.PostgresDBName = db
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}
	return nil
}
