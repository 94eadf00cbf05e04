package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/service"
	"github.com/spec-kit/recommendation-console/internal/session"
)

// StartSessionWatcher subscribes to sess and keeps the recommendation board
// and the authenticated gauge in step with it. The returned func stops it.
func StartSessionWatcher(sess *session.Session, board *service.RecommendationBoard, metrics *observability.Metrics, logger *zap.Logger) (stop func()) {
	if sess == nil {
		return func() {}
	}
	metrics.SetAuthenticated(sess.IsAuthenticated())

	return sess.Subscribe(func(snap session.Snapshot) {
		metrics.SetAuthenticated(snap.IsAuthenticated())
		if !snap.IsAuthenticated() {
			if board != nil {
				board.Clear()
			}
			logger.Info("session ended, recommendations cleared")
			return
		}
		user, decoded := snap.User()
		logger.Info("session started",
			zap.String("subject", user.Subject),
			zap.Strings("roles", user.Roles),
			zap.Bool("decoded", decoded))
	})
}
