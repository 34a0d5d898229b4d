package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/V4T54L/schoolsite/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/schoolsite/internal/adapter/repository/redis"
	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/pkg/credentials"
)

// ErrUnsupportedScheme is returned for endpoints no driver understands.
var ErrUnsupportedScheme = errors.New("unsupported backend scheme")

// Dial returns the production Factory. The driver is chosen from the endpoint
// scheme; the key authenticates against the endpoint when the URL carries no
// password of its own.
func Dial(logger *slog.Logger) Factory {
	return func(ctx context.Context, creds credentials.Pair) (domain.RemoteClient, error) {
		u, err := url.Parse(creds.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse backend endpoint: %w", err)
		}

		switch strings.ToLower(u.Scheme) {
		case "postgres", "postgresql":
			return postgres.Open(ctx, withPassword(u, creds.Key), logger)
		case "redis", "rediss":
			opts, err := goredis.ParseURL(creds.Endpoint)
			if err != nil {
				return nil, fmt.Errorf("parse redis endpoint: %w", err)
			}
			if opts.Password == "" {
				opts.Password = creds.Key
			}
			return redisrepo.Open(ctx, opts, logger)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
		}
	}
}

func withPassword(u *url.URL, key string) string {
	out := *u
	if u.User == nil {
		out.User = url.UserPassword("", key)
	} else if _, set := u.User.Password(); !set {
		out.User = url.UserPassword(u.User.Username(), key)
	}
	return out.String()
}
