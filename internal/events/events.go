// Package events publica eventos de domínio das lixeiras para consumidores externos.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tipos de evento; também usados como nome de fila.
const (
	TypeFillLevel = "bins.fill_level"
	TypeBinFull   = "bins.full"
	TypeEmptied   = "bins.emptied"
)

// FullThreshold é o nível a partir do qual a lixeira conta como cheia.
const FullThreshold = 80

// BinEvent descreve uma mudança de nível de uma lixeira.
type BinEvent struct {
	Type       string    `json:"type"`
	BinID      uuid.UUID `json:"bin_id"`
	BinCode    string    `json:"bin_code"`
	FillLevel  int       `json:"fill_level"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher entrega eventos; falhas não devem interromper a requisição.
type Publisher interface {
	Publish(ctx context.Context, event BinEvent) error
	Close() error
}

// Noop descarta eventos quando AMQP_URL não está configurado.
type Noop struct{}

func (Noop) Publish(context.Context, BinEvent) error { return nil }

func (Noop) Close() error { return nil }
