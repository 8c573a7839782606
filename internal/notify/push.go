package notify

import (
	"context"
	"fmt"

	"github.com/adwaidhmp/backend/app"
	"github.com/adwaidhmp/backend/internal/model"
	"github.com/adwaidhmp/backend/internal/repo"
	"github.com/adwaidhmp/backend/lib/fcm"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PushNotifier sends a plan-ready push to every registered device of the
// user. Delivery is best effort and runs off the caller's goroutine; a push
// that never arrives does not affect the plan.
type PushNotifier struct {
	tokens *repo.DeviceTokenStore
}

func NewPushNotifier(tokens *repo.DeviceTokenStore) *PushNotifier {
	return &PushNotifier{tokens: tokens}
}

func (n *PushNotifier) PlanReady(userID uuid.UUID, plan *model.Plan) {
	if fcm.FCM == nil {
		return
	}
	go n.send(userID, plan)
}

func (n *PushNotifier) send(userID uuid.UUID, plan *model.Plan) {
	log := logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"plan_id": plan.ID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), app.DBTimeout)
	defer cancel()

	tokens, err := n.tokens.TokensByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("Failed to load device tokens for plan push")
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := "Your diet plan is ready"
	if plan.Kind == model.PlanKindWorkout {
		title = "Your workout plan is ready"
	}
	body := fmt.Sprintf("Your plan for the week of %s is ready to view.", plan.WeekStart.Format("Jan 2"))
	data := map[string]string{
		"plan_id": plan.ID.String(),
		"kind":    plan.Kind,
	}

	if err := fcm.FCM.SendNotificationMulti(tokens, title, body, data); err != nil {
		log.WithError(err).Warn("Failed to push plan-ready notification")
		return
	}
	log.WithField("devices", len(tokens)).Info("Plan-ready push sent")
}
