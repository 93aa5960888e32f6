package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/dashboard"
)

// Digest sends the team a weekly summary of delivery progress. It is
// wired to a cron schedule at startup.
type Digest struct {
	mailer    Mailer
	dashboard *dashboard.Service
	teamEmail string
	logger    *zap.Logger
}

func NewDigest(mailer Mailer, dash *dashboard.Service, teamEmail string, logger *zap.Logger) *Digest {
	return &Digest{
		mailer:    mailer,
		dashboard: dash,
		teamEmail: teamEmail,
		logger:    logger,
	}
}

// Run builds and sends the digest for the current progress state.
func (d *Digest) Run() {
	if d.mailer == nil || d.teamEmail == "" {
		d.logger.Debug("Digest skipped, email not configured")
		return
	}

	areas := d.dashboard.Areas()
	overall := d.dashboard.OverallProgress()

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly delivery progress as of %s\n\n", time.Now().Format("January 2, 2006"))
	fmt.Fprintf(&b, "Overall: %d%%\n\n", overall)
	for _, area := range areas {
		fmt.Fprintf(&b, "  %-20s %3d%%  %s\n", area.Name, area.Progress, area.Status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := Message{
		To:      []string{d.teamEmail},
		Subject: "Energy+ weekly progress digest",
		Body:    b.String(),
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.Warn("Failed to send weekly digest", zap.Error(err))
		return
	}
	d.logger.Info("Weekly digest sent", zap.Int("overall", overall))
}
