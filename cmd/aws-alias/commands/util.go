package commands

import (
	"errors"
	"os"

	"github.com/rs/zerolog"

	"aws-alias/internal/alias"
)

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func logFailure(logger zerolog.Logger, err error) {
	ev := logger.Error().Err(err)
	var rce *alias.RemoteCallError
	if errors.As(err, &rce) {
		ev = ev.Str("op", rce.Op).Str("code", rce.Code())
	}
	ev.Msg("account alias reconciliation failed")
}
