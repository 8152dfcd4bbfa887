package queue

import (
	"context"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
	"github.com/venduo/marketplace-identity/pkg/helpers"
	"github.com/venduo/marketplace-identity/pkg/mailer"
)

// ApprovalNotifier publishes pending-approval jobs to RabbitMQ. The approval
// worker consumes them and delivers the email; the registering request never
// waits on delivery.
type ApprovalNotifier struct {
	Pub *helpers.RabbitPublisher
}

func NewApprovalNotifier(pub *helpers.RabbitPublisher) *ApprovalNotifier {
	return &ApprovalNotifier{Pub: pub}
}

func (n *ApprovalNotifier) NotifyPendingApproval(ctx context.Context, u *entity.User) error {
	if n == nil || n.Pub == nil {
		return nil
	}
	job := mailer.ApprovalJob{
		UserID:       u.ID,
		Email:        u.Email,
		Username:     u.Username,
		RegisteredAt: u.CreatedAt,
	}
	return n.Pub.PublishJSON(ctx, job)
}
