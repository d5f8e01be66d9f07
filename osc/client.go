package osc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"
	"go.uber.org/zap"

	"github.com/Nairolf138/eos-mcp/resilience"
)

// Sentinel errors for client operations.
var (
	ErrTimeout = errors.New("osc: request timed out")
	ErrClosed  = errors.New("osc: client is closed")
)

// ClientConfig configures the console connection.
type ClientConfig struct {
	// Host is the console's IP or hostname.
	Host string

	// SendPort is the console's OSC receive port.
	// Default: 8000
	SendPort int

	// ReceivePort is the local port replies and broadcasts arrive on.
	// Default: 8001
	ReceivePort int

	// RequestTimeout bounds one Request round trip.
	// Default: 2s
	RequestTimeout time.Duration

	// MaxAttempts is the number of send attempts per outbound message.
	// Default: 3
	MaxAttempts int

	// Logger receives transport-level events. Default: zap.NewNop().
	Logger *zap.Logger
}

// Client talks to the console over UDP and correlates replies.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ownership: observers registered via Notify are invoked from the
//   receive goroutine and must not block.
type Client struct {
	cfg   ClientConfig
	out   *goosc.Client
	srv   *goosc.Server
	log   *zap.Logger
	retry *resilience.Retry

	mu        sync.Mutex
	pending   map[string][]chan Message
	observers []func(Message)
	started   bool
	closed    bool
}

// NewClient creates a client for the given console. The client does not
// listen until Start is called.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("osc: host is required")
	}
	if cfg.SendPort <= 0 {
		cfg.SendPort = 8000
	}
	if cfg.ReceivePort <= 0 {
		cfg.ReceivePort = 8001
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Client{
		cfg:     cfg,
		out:     goosc.NewClient(cfg.Host, cfg.SendPort),
		log:     cfg.Logger,
		pending: make(map[string][]chan Message),
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.MaxAttempts,
			InitialDelay: 50 * time.Millisecond,
		}),
	}

	dispatcher := goosc.NewStandardDispatcher()
	if err := dispatcher.AddMsgHandler("*", func(msg *goosc.Message) {
		c.dispatch(convert(msg))
	}); err != nil {
		return nil, fmt.Errorf("osc: failed to register dispatcher: %w", err)
	}

	c.srv = &goosc.Server{
		Addr:       fmt.Sprintf("0.0.0.0:%d", cfg.ReceivePort),
		Dispatcher: dispatcher,
	}

	return c, nil
}

// Start begins listening for inbound messages. It returns once the listen
// loop is running; loop errors after Close are expected and dropped.
func (c *Client) Start() {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	go func() {
		c.log.Info("osc listener starting",
			zap.Int("port", c.cfg.ReceivePort),
			zap.String("console", fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.SendPort)))
		if err := c.srv.ListenAndServe(); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Error("osc listener stopped", zap.Error(err))
			}
		}
	}()
}

// Close stops the listener and fails any in-flight requests.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	for addr, waiters := range c.pending {
		for _, ch := range waiters {
			close(ch)
		}
		delete(c.pending, addr)
	}
	c.mu.Unlock()
	if !started {
		return nil
	}
	return c.srv.CloseConnection()
}

// Notify registers an observer for every inbound message. The cache's
// broadcast handler is wired up through this.
func (c *Client) Notify(fn func(Message)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Send transmits a message without waiting for a reply. Transient transport
// errors are retried with backoff.
func (c *Client) Send(ctx context.Context, address string, args ...any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	msg := goosc.NewMessage(address)
	for _, a := range args {
		msg.Append(a)
	}

	err := c.retry.Execute(ctx, func(ctx context.Context) error {
		return resilience.ExecuteWithTimeout(ctx, c.cfg.RequestTimeout, func(context.Context) error {
			return c.out.Send(msg)
		})
	})
	if err != nil {
		return fmt.Errorf("osc: send %s: %w", address, err)
	}
	return nil
}

// Request sends a message and waits for the correlated reply on the
// derived /eos/out/ address. Returns ErrTimeout when the console does not
// answer within the configured window.
func (c *Client) Request(ctx context.Context, address string, args ...any) (Message, error) {
	reply := ReplyAddress(address)

	ch := make(chan Message, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Message{}, ErrClosed
	}
	c.pending[reply] = append(c.pending[reply], ch)
	c.mu.Unlock()

	if err := c.Send(ctx, address, args...); err != nil {
		c.unregister(reply, ch)
		return Message{}, err
	}

	timer := time.NewTimer(c.cfg.RequestTimeout)
	defer timer.Stop()

	select {
	case msg, ok := <-ch:
		if !ok {
			return Message{}, ErrClosed
		}
		return msg, nil
	case <-timer.C:
		c.unregister(reply, ch)
		return Message{}, fmt.Errorf("%w: %s", ErrTimeout, address)
	case <-ctx.Done():
		c.unregister(reply, ch)
		return Message{}, ctx.Err()
	}
}

// Ping checks console reachability with a version request.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Request(ctx, "/eos/get/version")
	return err
}

func (c *Client) dispatch(msg Message) {
	c.mu.Lock()
	waiters := c.pending[msg.Address]
	delete(c.pending, msg.Address)
	observers := make([]func(Message), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- msg
	}
	for _, fn := range observers {
		fn(msg)
	}
}

func (c *Client) unregister(reply string, ch chan Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiters := c.pending[reply]
	for i, w := range waiters {
		if w == ch {
			c.pending[reply] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(c.pending[reply]) == 0 {
		delete(c.pending, reply)
	}
}

func convert(msg *goosc.Message) Message {
	out := Message{Address: msg.Address}
	if len(msg.Arguments) > 0 {
		out.Args = make([]Argument, len(msg.Arguments))
		for i, a := range msg.Arguments {
			out.Args[i] = argument(a)
		}
	}
	return out
}
