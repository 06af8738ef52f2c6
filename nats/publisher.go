package nats

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/catmaikl/cosatkaclickmserv-sub000/game"
)

var natsLogger = log.With().Str("logger_name", "nats::publisher").Logger()

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Subjects consumed by the external persistence/leaderboard collaborator.
//
// cardroom.hand.result.<roomCode> : one message per resolved hand
// cardroom.room.<event>           : room lifecycle (created/closed)
const (
	handResultSubjectFmt = "cardroom.hand.result.%s"
	roomEventSubjectFmt  = "cardroom.room.%s"
)

// ResultPublisher mirrors resolved hands and room lifecycle events onto
// NATS subjects. Publishing is fire-and-forget; a publish failure never
// affects the room.
type ResultPublisher struct {
	nc *natsgo.Conn
}

func NewResultPublisher(natsURL string) (*ResultPublisher, error) {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to connect to NATS server [%s]", natsURL)
	}
	natsLogger.Info().Msgf("Connected to NATS %s", natsURL)
	return &ResultPublisher{nc: nc}, nil
}

func (p *ResultPublisher) PublishHandResult(record *game.HandResultRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		natsLogger.Error().Str("roomCode", record.RoomCode).Msgf("Unable to marshal hand result: %v", err)
		return
	}
	subject := fmt.Sprintf(handResultSubjectFmt, record.RoomCode)
	if err := p.nc.Publish(subject, data); err != nil {
		natsLogger.Error().Str("roomCode", record.RoomCode).Msgf("Unable to publish to %s: %v", subject, err)
	}
}

func (p *ResultPublisher) PublishRoomEvent(kind string, roomCode string) {
	subject := fmt.Sprintf(roomEventSubjectFmt, kind)
	if err := p.nc.Publish(subject, []byte(roomCode)); err != nil {
		natsLogger.Error().Str("roomCode", roomCode).Msgf("Unable to publish to %s: %v", subject, err)
	}
}

func (p *ResultPublisher) Close() {
	p.nc.Close()
}
