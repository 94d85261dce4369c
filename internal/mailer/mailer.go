package mailer

import (
	"context"

	"github.com/Motasaith/abdulshop-backend/pkg/config"
	"github.com/Motasaith/abdulshop-backend/pkg/db/models"
	pkgerrors "github.com/Motasaith/abdulshop-backend/pkg/errors"
	"github.com/Motasaith/abdulshop-backend/pkg/logger"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

// Mailer sends transactional order emails. Callers treat every send as
// fire-and-forget: a failed send is logged, never propagated into the
// lifecycle transition that triggered it.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error
	SendOrderShipped(ctx context.Context, user *models.User, order *models.Order, info *types.TrackingInfo) error
}

type logMailer struct {
	logg *logger.Logger
	cfg  config.MailConfig
}

// NewLogMailer returns a Mailer that records outbound mail as structured log
// events. Real transport is handled by an external delivery worker reading
// the same events.
func NewLogMailer(logg *logger.Logger, cfg config.MailConfig) (Mailer, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &logMailer{logg: logg, cfg: cfg}, nil
}

func (m *logMailer) SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error {
	if user == nil || order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and order required")
	}
	ctx = m.logg.WithFields(ctx, map[string]any{
		"mail_from": m.cfg.DefaultFrom,
		"mail_to":   user.Email,
		"template":  "order_confirmation",
		"order_id":  order.ID.String(),
		"tracking":  order.TrackingNumber,
	})
	m.logg.Info(ctx, "order confirmation email queued")
	return nil
}

func (m *logMailer) SendOrderShipped(ctx context.Context, user *models.User, order *models.Order, info *types.TrackingInfo) error {
	if user == nil || order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and order required")
	}
	fields := map[string]any{
		"mail_from": m.cfg.DefaultFrom,
		"mail_to":   user.Email,
		"template":  "order_shipped",
		"order_id":  order.ID.String(),
		"tracking":  order.TrackingNumber,
	}
	if info != nil {
		fields["carrier"] = info.Carrier
		fields["tracking_url"] = info.URL
	}
	m.logg.Info(m.logg.WithFields(ctx, fields), "order shipped email queued")
	return nil
}
