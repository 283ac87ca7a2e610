package handlers

import (
	"context"
	"fmt"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/messaging"
)

// LifecycleController is driven by the fleet orchestrator.
type LifecycleController interface {
	Start(ctx context.Context) error
	Restart(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// OrchestratorHandler maps orchestration commands, addressed to this
// service or to the whole fleet, onto the lifecycle controller.
type OrchestratorHandler struct {
	controller LifecycleController
	logger     logging.ServiceLogger
}

func NewOrchestratorHandler(controller LifecycleController, logger logging.ServiceLogger) *OrchestratorHandler {
	return &OrchestratorHandler{
		controller: controller,
		logger:     logger,
	}
}

func (h *OrchestratorHandler) Topics() []string {
	return []string{
		messaging.TopicStart,
		messaging.TopicRestart,
		messaging.TopicShutdown,
		messaging.TopicStartAll,
		messaging.TopicRestartAll,
		messaging.TopicShutdownAll,
	}
}

func (h *OrchestratorHandler) Handle(ctx context.Context, topic string, _ []byte, _ messaging.EventContext) error {
	h.logger.Info("orchestration command received", logging.Fields{"topic": topic})

	switch topic {
	case messaging.TopicStart, messaging.TopicStartAll:
		return h.controller.Start(ctx)
	case messaging.TopicRestart, messaging.TopicRestartAll:
		return h.controller.Restart(ctx)
	case messaging.TopicShutdown, messaging.TopicShutdownAll:
		return h.controller.Shutdown(ctx)
	default:
		return fmt.Errorf("orchestrator handler received unexpected topic %q", topic)
	}
}
