package messaging

import (
	"context"
)

// HandlerFunc processes one message payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Consume subscribes to channel and feeds every message to handler until ctx
// is cancelled or the subscription closes. Handler errors go to onError and
// do not stop consumption.
func Consume(ctx context.Context, broker Broker, channel string, handler HandlerFunc, onError func(error)) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
