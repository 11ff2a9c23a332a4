package relay

import (
	"context"
	"log/slog"

	"github.com/m3rciful/menfes/core/logger"
	"github.com/m3rciful/menfes/core/metrics"
)

// missingCommunities asks the oracle about every community in configured order and
// returns the ids the user does not satisfy. Oracle errors count as missing.
func (m *Machine) missingCommunities(ctx context.Context, userID int64) []string {
	var notJoined []string
	for _, c := range m.settings.Communities {
		standing, err := m.oracle.Standing(ctx, c.ID, userID)
		switch {
		case err != nil:
			metrics.IncMembershipCheck("error")
			logger.Warn(ctx, logger.CompRelay, "membership.check",
				slog.String("status", "fail"),
				slog.String("community", c.ID),
				slog.String("err", err.Error()),
			)
			notJoined = append(notJoined, c.ID)
		case !standing.Satisfied():
			metrics.IncMembershipCheck("missing")
			logger.Debug(ctx, logger.CompRelay, "membership.check",
				slog.String("status", "ok"),
				slog.String("community", c.ID),
				slog.String("outcome", string(standing)),
			)
			notJoined = append(notJoined, c.ID)
		default:
			metrics.IncMembershipCheck("satisfied")
		}
	}
	return notJoined
}
