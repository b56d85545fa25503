package broadcast

import "context"

type EventProducer interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// KafkaSink forwards events keyed by order id.
type KafkaSink struct {
	Producer EventProducer
}

func (k KafkaSink) Deliver(ctx context.Context, ev Event) error {
	return k.Producer.PublishEvent(ctx, ev.OrderID.String(), ev)
}
