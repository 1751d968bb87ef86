package relay

import (
	"context"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"
)

var _ Publisher = (*PubNub)(nil)

type PubNubConfig struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	UUID         string
	ScanChannel  string
}

// PubNub subscribes to the scan channel and publishes decode results.
type PubNub struct {
	pn       *pubnub.PubNub
	listener *pubnub.Listener
	channel  string
	logger   *slog.Logger
}

func NewPubNub(cfg PubNubConfig, logger *slog.Logger) *PubNub {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UUID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey
	pnCfg.SecretKey = cfg.SecretKey

	return &PubNub{
		pn:       pubnub.NewPubNub(pnCfg),
		listener: pubnub.NewListener(),
		channel:  cfg.ScanChannel,
		logger:   logger,
	}
}

func (p *PubNub) Publish(channel string, message any) error {
	_, _, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	return err
}

// Listen subscribes to the scan channel and forwards every received message
// body. The returned channel is closed after ctx is done.
func (p *PubNub) Listen(ctx context.Context) <-chan any {
	out := make(chan any, 16)

	p.pn.AddListener(p.listener)
	p.pn.Subscribe().Channels([]string{p.channel}).Execute()

	go func() {
		defer close(out)
		for {
			select {
			case status := <-p.listener.Status:
				p.logStatus(status)

			case message := <-p.listener.Message:
				select {
				case out <- message.Message:
				case <-ctx.Done():
				}

			case <-ctx.Done():
				p.pn.Unsubscribe().Channels([]string{p.channel}).Execute()
				p.pn.RemoveListener(p.listener)
				p.logger.Info("unsubscribed from pubnub", "channel", p.channel)
				return
			}
		}
	}()

	return out
}

func (p *PubNub) logStatus(status *pubnub.PNStatus) {
	switch status.Category {
	case pubnub.PNConnectedCategory:
		p.logger.Info("connected to pubnub", "channel", p.channel)

	case pubnub.PNReconnectedCategory:
		p.logger.Info("reconnected to pubnub", "channel", p.channel)

	case pubnub.PNDisconnectedCategory:
		p.logger.Warn("disconnected from pubnub", "channel", p.channel)

	case pubnub.PNAccessDeniedCategory, pubnub.PNBadRequestCategory, pubnub.PNReconnectionAttemptsExhausted:
		p.logger.Error("pubnub subscription failed", "channel", p.channel, "category", status.Category)

	default:
		p.logger.Debug("pubnub status", "category", status.Category)
	}
}
