package db

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a backend.
type Options struct {
	Kind       Kind
	SQLitePath string
	URL        string
	Limits     PoolLimits
}

// ParseKind accepts the spellings used in configuration files and env vars.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3", "embedded":
		return KindEmbedded, nil
	case "postgres", "postgresql", "pg", "server":
		return KindServer, nil
	}
	return "", fmt.Errorf("unknown database type %q (want sqlite or postgres)", s)
}

// New builds the backend named by opts without connecting.
func New(opts Options) (Backend, error) {
	switch opts.Kind {
	case KindEmbedded:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path not set")
		}
		return NewEmbedded(opts.SQLitePath), nil
	case KindServer:
		if opts.URL == "" {
			return nil, fmt.Errorf("postgres connection URL not set")
		}
		return NewServer(opts.URL, opts.Limits), nil
	}
	return nil, fmt.Errorf("unknown database type %q", opts.Kind)
}

// Open builds the backend, connects it and makes sure the schema exists.
func Open(ctx context.Context, opts Options) (Backend, error) {
	backend, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := backend.Connect(ctx); err != nil {
		return nil, err
	}
	if err := backend.CreateSchema(ctx); err != nil {
		backend.Close()
		return nil, err
	}
	return backend, nil
}
