package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// Commitment is the subscription commitment level.
	Commitment string
	// Logger receives connection diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		Commitment:        "confirmed",
	}
}

// notificationBuffer is the per-subscription channel capacity.
const notificationBuffer = 10000

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig
	logger   *zap.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// programs holds every live stream; subs routes the current
	// connection's subscription IDs to them. subs is rebuilt on reconnect.
	programs []*programSub
	subs     map[int64]*programSub
	subsMu   sync.RWMutex

	// pendingSubs is keyed by request ID.
	pendingSubs   map[uint64]*pendingSub
	pendingSubsMu sync.Mutex

	done         chan struct{}
	wg           sync.WaitGroup
	reconnecting atomic.Bool
}

// programSub is one live programSubscribe stream.
type programSub struct {
	program string
	ch      chan AccountNotification
}

// pendingSub is a programSubscribe request awaiting its subscription ID.
type pendingSub struct {
	sub     *programSub
	confirm chan int64
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		logger:      logger,
		subs:        make(map[int64]*programSub),
		pendingSubs: make(map[uint64]*pendingSub),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	// Start reader goroutine
	c.wg.Add(1)
	go c.readLoop()

	// Start ping goroutine
	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes WebSocket connection.
func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// ProgramSubscribe streams account changes for accounts owned by programID.
// The subscription is re-established transparently after a reconnect.
func (c *WSClientImpl) ProgramSubscribe(ctx context.Context, programID string) (<-chan AccountNotification, error) {
	// Delivery blocks rather than drops; the buffer absorbs bursts.
	sub := &programSub{program: programID, ch: make(chan AccountNotification, notificationBuffer)}

	// Registered first so a reconnect during the handshake resubscribes it.
	c.subsMu.Lock()
	c.programs = append(c.programs, sub)
	c.subsMu.Unlock()

	if _, err := c.subscribe(ctx, sub); err != nil {
		c.drop(sub)
		return nil, err
	}
	return sub.ch, nil
}

// Close closes the WebSocket connection.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	// The reader is the only sender on these channels.
	c.wg.Wait()

	c.subsMu.Lock()
	for _, sub := range c.programs {
		close(sub.ch)
	}
	c.programs = nil
	c.subs = make(map[int64]*programSub)
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, p := range c.pendingSubs {
		close(p.confirm)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()
	return nil
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			// Increase delay for next reconnect (exponential backoff)
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *WSClientImpl) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	// Wait before reconnecting
	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	// Close existing connection
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	// Attempt reconnect
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		c.logger.Warn("websocket reconnect failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return
	}
	c.logger.Info("websocket reconnected", zap.String("endpoint", c.endpoint))

	// Resubscribe to all active subscriptions
	c.resubscribeAll()
}

// resubscribeAll re-issues every live stream on the new connection.
// Subscription IDs are per connection, so routing starts empty. Streams that
// fail stay in programs and are retried on the next reconnect.
func (c *WSClientImpl) resubscribeAll() {
	c.subsMu.Lock()
	live := append([]*programSub(nil), c.programs...)
	c.subs = make(map[int64]*programSub, len(live))
	c.subsMu.Unlock()

	for _, sub := range live {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := c.subscribe(ctx, sub)
		cancel()
		if err != nil {
			c.logger.Warn("resubscribe failed", zap.String("program", sub.program), zap.Error(err))
		}
	}
}

// drop forgets a stream whose subscription failed.
func (c *WSClientImpl) drop(sub *programSub) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, s := range c.programs {
		if s == sub {
			c.programs = append(c.programs[:i], c.programs[i+1:]...)
			break
		}
	}
	for id, s := range c.subs {
		if s == sub {
			delete(c.subs, id)
		}
	}
}

// subscribe sends programSubscribe for sub and waits for the subscription
// ID. The route is installed by the reader as soon as the confirmation
// arrives, before any later frame is handled.
func (c *WSClientImpl) subscribe(ctx context.Context, sub *programSub) (int64, error) {
	if c.closed.Load() {
		return 0, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "programSubscribe",
		Params: []interface{}{
			sub.program,
			map[string]string{
				"encoding":   "base64",
				"commitment": c.config.Commitment,
			},
		},
	}

	pending := &pendingSub{sub: sub, confirm: make(chan int64, 1)}
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = pending
	c.pendingSubsMu.Unlock()

	forget := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		forget()
		return 0, fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		forget()
		return 0, fmt.Errorf("write subscribe: %w", err)
	}

	// Slow providers can take a while to confirm.
	select {
	case subID, ok := <-pending.confirm:
		if !ok {
			return 0, fmt.Errorf("client closed")
		}
		return subID, nil
	case <-time.After(30 * time.Second):
		forget()
		return 0, fmt.Errorf("subscription timeout after 30s")
	case <-c.done:
		return 0, fmt.Errorf("client closed")
	case <-ctx.Done():
		forget()
		return 0, ctx.Err()
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	// Try to parse as subscription response first
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		c.handleSubscribeResponse(&resp)
		return
	}

	// Try to parse as notification
	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "programNotification" {
		c.handleProgramNotification(&notif)
		return
	}

	// Check for error response
	var errResp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      uint64 `json:"id"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(message, &errResp); err == nil && errResp.Error != nil {
		// Log error but don't crash - subscription will timeout
		c.logger.Warn("websocket error response",
			zap.Uint64("id", errResp.ID),
			zap.Int("code", errResp.Error.Code),
			zap.String("message", errResp.Error.Message))
	}
}

// handleSubscribeResponse handles subscription confirmation.
func (c *WSClientImpl) handleSubscribeResponse(resp *wsSubscribeResponse) {
	c.pendingSubsMu.Lock()
	pending, ok := c.pendingSubs[resp.ID]
	if ok {
		delete(c.pendingSubs, resp.ID)
	}
	c.pendingSubsMu.Unlock()
	if !ok {
		return
	}

	// Route before returning to the read loop: the server may send the
	// first notification in the very next frame.
	c.subsMu.Lock()
	c.subs[resp.Result] = pending.sub
	c.subsMu.Unlock()

	select {
	case pending.confirm <- resp.Result:
	default:
	}
}

// handleProgramNotification dispatches an account change to its subscriber.
func (c *WSClientImpl) handleProgramNotification(notif *wsNotification) {
	if notif.Params == nil {
		return
	}

	subID := notif.Params.Subscription
	value := notif.Params.Result.Value

	info := value.Account.toAccountInfo()
	if info == nil {
		return
	}

	accountNotif := AccountNotification{
		Pubkey:  value.Pubkey,
		Account: *info,
	}
	if notif.Params.Result.Context != nil {
		accountNotif.Slot = notif.Params.Result.Context.Slot
	}

	c.subsMu.RLock()
	sub, ok := c.subs[subID]
	c.subsMu.RUnlock()
	if !ok {
		return
	}

	select {
	case sub.ch <- accountNotif:
	case <-c.done:
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
					c.logger.Debug("websocket ping failed", zap.Error(err))
				}
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext     `json:"context"`
	Value   wsProgramValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsProgramValue struct {
	Pubkey  string        `json:"pubkey"`
	Account *accountValue `json:"account"`
}

var _ WSClient = (*WSClientImpl)(nil)
