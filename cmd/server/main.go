package main

import (
	"fmt"
	"time"

	"github.com/adwaidhmp/backend/app"
	"github.com/adwaidhmp/backend/internal/consumer"
	"github.com/adwaidhmp/backend/internal/generator"
	"github.com/adwaidhmp/backend/internal/handler"
	"github.com/adwaidhmp/backend/internal/notify"
	"github.com/adwaidhmp/backend/internal/plan"
	"github.com/adwaidhmp/backend/internal/repo"
	"github.com/adwaidhmp/backend/internal/worker"
	"github.com/adwaidhmp/backend/lib/fcm"
	"github.com/adwaidhmp/backend/lib/rabbit"
	"github.com/adwaidhmp/backend/router"

	"github.com/sirupsen/logrus"
)

func main() {
	app.Setup()
	fmt.Println("*************** SETUP RABBITMQ ***************")
	rabbit.Setup()

	if app.FCM.Enabled {
		if err := fcm.Setup(app.FCM.CredentialsPath); err != nil {
			logrus.WithError(err).Warn("FCM setup failed, plan-ready pushes disabled")
		}
	}

	db := app.Database.DB
	planStore := repo.NewPlanStore(db)
	profileStore := repo.NewProfileStore(db)
	trainerStore := repo.NewTrainerStore(db)
	bookingStore := repo.NewBookingStore(db)
	deviceStore := repo.NewDeviceTokenStore(db)

	publisher := rabbit.NewPublisher(rabbit.BrokerConfig)
	dispatcher := rabbit.NewDispatcher(publisher)
	if err := dispatcher.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start event dispatcher")
	}

	notifier := notify.NewPushNotifier(deviceStore)
	genClient := generator.NewClient(app.Generator)
	orchestrator := plan.NewOrchestrator(planStore, profileStore, genClient, notifier, app.Generator)

	queue := worker.NewQueue(orchestrator, planStore, app.Worker)
	if err := queue.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start worker queue")
	}

	handlers := consumer.NewHandlers(profileStore, trainerStore, bookingStore, planStore, queue)
	startConsumer(rabbit.BrokerConfig.QueueUserEvents, map[string]rabbit.Handler{
		rabbit.BrokerConfig.RouteUserCreated: handlers.HandleUserCreated,
	})
	startConsumer(rabbit.BrokerConfig.QueueTrainerEvents, map[string]rabbit.Handler{
		rabbit.BrokerConfig.RouteTrainerRegistered: handlers.HandleTrainerRegistered,
	})
	startConsumer(rabbit.BrokerConfig.QueueDietRegen, map[string]rabbit.Handler{
		rabbit.BrokerConfig.RouteWeightUpdated: handlers.HandleWeightUpdated,
	})
	startConsumer(rabbit.BrokerConfig.QueueBookingEvents, map[string]rabbit.Handler{
		rabbit.BrokerConfig.RouteBookingDecided: handlers.HandleBookingDecided,
	})

	handler.Setup(planStore, profileStore, bookingStore, deviceStore, dispatcher, queue)

	router.Setup()
}

// startConsumer runs one queue consumer in its own goroutine and redials the
// broker after transient failures.
func startConsumer(queue string, handlers map[string]rabbit.Handler) {
	go func() {
		for {
			c := rabbit.NewConsumer(rabbit.BrokerConfig, queue, handlers)
			if err := c.Run(); err != nil {
				logrus.WithError(err).WithField("queue", queue).Warn("Consumer stopped, reconnecting")
				time.Sleep(5 * time.Second)
				continue
			}
			return
		}
	}()
}
