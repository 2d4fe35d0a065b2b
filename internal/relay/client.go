package relay

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vending_control/internal/logger"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 14 // 16 KB
)

// frame is the relay wire format. The relay routes frames by `to`; nonce and
// payload are base64-encoded NaCl box material.
type frame struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Nonce   string `json:"nonce"`
	Payload string `json:"payload"`
}

// subscribeRequest asks the relay to deliver frames addressed to an identity.
type subscribeRequest struct {
	Subscribe string `json:"subscribe"`
}

// Client is a websocket connection to a relay, acting as one identity.
// Publish may be called concurrently with an active subscription.
type Client struct {
	log      *logger.Logger
	conn     *websocket.Conn
	identity Identity
	secret   SecretKey

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the relay at addr (ws:// or wss://) as the identity
// belonging to secret.
func Dial(ctx context.Context, addr string, secret SecretKey, log *logger.Logger) (*Client, error) {
	identity, err := secret.Public()
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %q: %w", addr, err)
	}
	conn.SetReadLimit(maxMsgSize)
	return &Client{log: log, conn: conn, identity: identity, secret: secret}, nil
}

// Identity returns the public key this client acts as.
func (c *Client) Identity() Identity { return c.identity }

// Subscribe registers for frames addressed to this client and starts the
// receive loop. The returned channel is closed when the connection ends or
// ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	if err := c.writeJSON(subscribeRequest{Subscribe: c.identity.String()}); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	out := make(chan Envelope, 16)
	go c.pingLoop(ctx)
	go c.readLoop(ctx, out)
	return out, nil
}

// Publish seals plaintext for the recipient and sends one frame.
func (c *Client) Publish(_ context.Context, recipient Identity, plaintext []byte) error {
	nonce, sealed, err := seal(plaintext, recipient, c.secret)
	if err != nil {
		return err
	}
	return c.writeJSON(frame{
		From:    c.identity.String(),
		To:      recipient.String(),
		Nonce:   base64.StdEncoding.EncodeToString(nonce[:]),
		Payload: base64.StdEncoding.EncodeToString(sealed),
	})
}

// Close tears down the websocket connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// writeJSON serializes writes; gorilla connections allow one writer at a time.
func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// pingLoop keeps the connection alive until ctx is cancelled.
func (c *Client) pingLoop(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.Close()
			return
		case <-ping.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.log.Infow("relay_ping_failed", "err", err)
				return
			}
		}
	}
}

// readLoop turns inbound frames into envelopes until the connection closes.
// Frames not addressed to us are skipped; undecryptable payloads are
// forwarded with Err set so the consumer can count and drop them.
func (c *Client) readLoop(ctx context.Context, out chan<- Envelope) {
	defer close(out)
	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if ctx.Err() == nil {
				c.log.Infow("relay_read_closed", "err", err)
			}
			return
		}
		if f.To != c.identity.String() {
			continue
		}
		env, ok := c.decodeFrame(f)
		if !ok {
			continue
		}
		select {
		case out <- env:
		case <-ctx.Done():
			return
		}
	}
}

// decodeFrame validates addressing fields and opens the payload. Malformed
// frames are dropped here; authentication failures travel as Envelope.Err.
func (c *Client) decodeFrame(f frame) (Envelope, bool) {
	sender, err := ParseIdentity(f.From)
	if err != nil {
		c.log.Warnw("relay_bad_sender", "from", f.From, "err", err)
		return Envelope{}, false
	}
	rawNonce, err := base64.StdEncoding.DecodeString(f.Nonce)
	if err != nil || len(rawNonce) != nonceSize {
		c.log.Warnw("relay_bad_nonce", "from", f.From)
		return Envelope{}, false
	}
	sealed, err := base64.StdEncoding.DecodeString(f.Payload)
	if err != nil {
		c.log.Warnw("relay_bad_payload", "from", f.From)
		return Envelope{}, false
	}
	var nonce [nonceSize]byte
	copy(nonce[:], rawNonce)
	plaintext, err := open(sealed, nonce, sender, c.secret)
	if err != nil {
		return Envelope{Sender: sender, Err: err}, true
	}
	return Envelope{Sender: sender, Plaintext: plaintext}, true
}
