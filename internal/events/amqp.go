package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	// dialTimeout limita conexão e handshake quando o contexto não tem prazo menor.
	dialTimeout = 5 * time.Second
	// reconnectBackoff evita novo dial logo após uma falha; publicações nesse intervalo falham na hora.
	reconnectBackoff = 10 * time.Second
)

// ErrBrokerUnavailable indica que a última tentativa de conexão falhou há pouco.
var ErrBrokerUnavailable = errors.New("rabbitmq indisponível")

// AMQPPublisher publica em filas duráveis pela exchange padrão.
// A conexão é refeita sob demanda quando o broker a derruba.
type AMQPPublisher struct {
	url     string
	backoff time.Duration

	mu        sync.Mutex
	conn      *amqp.Connection
	ch        *amqp.Channel
	declared  map[string]bool
	retryAt   time.Time
	lastError error
}

// NewAMQPPublisher conecta ao broker e valida a URL.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	p := newAMQPPublisher(url)
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := p.connect(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func newAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, backoff: reconnectBackoff, declared: make(map[string]bool)}
}

// connect respeita o prazo de ctx tanto no TCP quanto no handshake AMQP.
func (p *AMQPPublisher) connect(ctx context.Context) error {
	deadline := time.Now().Add(dialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			dialer := net.Dialer{Deadline: deadline}
			c, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// o amqp091 limpa o prazo ao concluir o handshake
			if err := c.SetDeadline(deadline); err != nil {
				_ = c.Close()
				return nil, err
			}
			return c, nil
		},
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	p.conn = conn
	p.ch = ch
	p.declared = make(map[string]bool)
	return nil
}

func (p *AMQPPublisher) ensure(ctx context.Context) error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if time.Now().Before(p.retryAt) {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, p.lastError)
	}

	p.closeLocked()
	if err := p.connect(ctx); err != nil {
		p.retryAt = time.Now().Add(p.backoff)
		p.lastError = err
		return err
	}
	p.retryAt = time.Time{}
	p.lastError = nil
	return nil
}

// Publish serializa o evento em JSON e publica com entrega persistente.
func (p *AMQPPublisher) Publish(ctx context.Context, event BinEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}

	if !p.declared[event.Type] {
		if _, err := p.ch.QueueDeclare(event.Type, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", event.Type, err)
		}
		p.declared[event.Type] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.BinID.String() + ":" + event.OccurredAt.UTC().Format(time.RFC3339Nano),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", event.Type, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close encerra canal e conexão.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
	var err error
	if p.ch != nil && !p.ch.IsClosed() {
		err = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	p.ch = nil
	p.conn = nil
	return err
}

// Dispatch publica sem bloquear o chamador além de timeout; falhas só são logadas.
func Dispatch(ctx context.Context, pub Publisher, timeout time.Duration, batch ...BinEvent) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	for _, event := range batch {
		if err := pub.Publish(ctx, event); err != nil {
			log.Warn().Err(err).Str("event", event.Type).Str("bin_id", event.BinID.String()).Msg("falha ao publicar evento")
		}
	}
}
