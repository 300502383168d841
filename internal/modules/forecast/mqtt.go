package forecast

import (
	"context"
	"log/slog"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/location"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/service"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

type LocationSubscriber interface {
	SetLocationHandler(handler func(report types.LocationReport) error)
}

type JSONPublisher interface {
	PublishJSON(ctx context.Context, topic string, v any) error
}

// RegisterMQTTHandler feeds device location reports into the Latest source.
func RegisterMQTTHandler(subscriber LocationSubscriber, latest *location.Latest, logger *slog.Logger) {
	subscriber.SetLocationHandler(func(report types.LocationReport) error {
		if err := latest.Update(report); err != nil {
			return err
		}
		logger.Debug("device location updated",
			"device_id", report.DeviceID,
			"timestamp", report.Timestamp,
		)
		return nil
	})
}

type recommendationPublisher struct {
	pub   JSONPublisher
	topic string
}

func NewRecommendationPublisher(pub JSONPublisher, topic string) service.Publisher {
	return &recommendationPublisher{pub: pub, topic: topic}
}

func (p *recommendationPublisher) PublishRecommendation(ctx context.Context, rec service.RecommendationResult) error {
	return p.pub.PublishJSON(ctx, p.topic, rec)
}
