package event_bus

import (
	"encoding/json"
	"fmt"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// Bus hands values between goroutines as JSON. Subscribers run
// asynchronously, so Publish never waits on a handler.
type Bus[InputType any, OutputType any] interface {
	Subscribe(topic string, handler func(input InputType) error, transactional bool) error
	Publish(topic string, arg OutputType) error
	// WaitAsync blocks until every in-flight async handler has returned.
	WaitAsync()
}

type JsonBus[InputType any, OutputType any] struct {
	bus    EventBus.Bus
	logger *zap.Logger
}

func NewJsonBus[InputType any, OutputType any](
	bus EventBus.Bus,
	logger *zap.Logger,
) *JsonBus[InputType, OutputType] {
	return &JsonBus[InputType, OutputType]{
		bus:    bus,
		logger: logger,
	}
}

func (jb *JsonBus[InputType, OutputType]) Subscribe(
	topic string,
	handler func(input InputType) error,
	transactional bool,
) error {
	deliver := func(payload string) {
		var input InputType
		if err := json.Unmarshal([]byte(payload), &input); err != nil {
			jb.logger.Error("Dropping undecodable payload",
				zap.String("topic", topic),
				zap.Error(err),
			)
			return
		}
		if err := handler(input); err != nil {
			jb.logger.Error("Subscriber failed to handle payload",
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}
	if err := jb.bus.SubscribeAsync(topic, deliver, transactional); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return nil
}

func (jb *JsonBus[InputType, OutputType]) Publish(topic string, arg OutputType) error {
	payload, err := json.Marshal(arg)
	if err != nil {
		return fmt.Errorf("failed to encode payload for topic %s: %w", topic, err)
	}
	jb.bus.Publish(topic, string(payload))
	return nil
}

func (jb *JsonBus[InputType, OutputType]) WaitAsync() {
	jb.bus.WaitAsync()
}
