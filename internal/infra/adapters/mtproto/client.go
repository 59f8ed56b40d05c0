// Package mtproto implements the messenger capability surface on an
// MTProto user client. Reading chat history and fetching arbitrary
// messages are not available to Bot API bots, so the relocation side
// runs on a logged-in user session.
package mtproto

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	tdtelegram "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	"telegram-forward-bot/internal/config"
	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/adapter"
	"telegram-forward-bot/internal/infra/metrics"
)

var _ adapter.Messenger = (*Client)(nil)

// Bot API chat ids encode channels as -(1e12 + channel id).
const channelChatIDOffset int64 = 1_000_000_000_000

const historyBatchSize = 100

var errNotAuthorized = errors.New("mtproto session is not authorized")

type peerEntry struct {
	peer  tg.InputPeerClass
	title string
}

// Client wraps a long-lived gotd session. Peers are resolved by
// scanning the account's dialog list and cached for the process
// lifetime; the account must therefore already be a member of every
// chat it relocates between.
type Client struct {
	api    *tg.Client
	log    *zerolog.Logger
	cancel context.CancelFunc
	done   chan error

	mu    sync.RWMutex
	peers map[int64]peerEntry
}

// New starts the MTProto session and verifies it is authorized. The
// session file must belong to an already logged-in account; there is no
// interactive login path here.
func New(ctx context.Context, cfg *config.MTProtoConfig, log *zerolog.Logger) (*Client, error) {
	tdc := tdtelegram.NewClient(cfg.AppID, cfg.AppHash, tdtelegram.Options{
		SessionStorage: &tdtelegram.FileSessionStorage{Path: cfg.SessionFile},
	})

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		api:    tdc.API(),
		log:    log,
		cancel: cancel,
		done:   make(chan error, 1),
		peers:  make(map[int64]peerEntry),
	}

	ready := make(chan struct{})
	go func() {
		c.done <- tdc.Run(runCtx, func(rc context.Context) error {
			status, err := tdc.Auth().Status(rc)
			if err != nil {
				return err
			}
			if !status.Authorized {
				return errNotAuthorized
			}
			if status.User != nil {
				log.Info().Int64("account_id", status.User.ID).Msg("mtproto session ready")
			}
			close(ready)
			<-rc.Done()
			return rc.Err()
		})
	}()

	select {
	case <-ready:
		return c, nil
	case err := <-c.done:
		cancel()
		return nil, fmt.Errorf("mtproto connect: %w", err)
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}

// Close terminates the session.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

// ResolveChat checks the account can address the conversation.
func (c *Client) ResolveChat(ctx context.Context, chatID int64) (*model.Chat, error) {
	entry, err := c.resolve(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &model.Chat{ID: chatID, Title: entry.title}, nil
}

func (c *Client) resolve(ctx context.Context, chatID int64) (peerEntry, error) {
	c.mu.RLock()
	entry, ok := c.peers[chatID]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}
	if err := c.refreshPeers(ctx); err != nil {
		return peerEntry{}, fmt.Errorf("scan dialogs: %w", err)
	}
	c.mu.RLock()
	entry, ok = c.peers[chatID]
	c.mu.RUnlock()
	if !ok {
		return peerEntry{}, fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
	}
	return entry, nil
}

// refreshPeers rebuilds the peer cache from the dialog list.
func (c *Client) refreshPeers(ctx context.Context) error {
	found := make(map[int64]peerEntry, 256)
	err := query.GetDialogs(c.api).BatchSize(100).ForEach(ctx, func(_ context.Context, elem dialogs.Elem) error {
		chatID, title, ok := dialogIdentity(elem)
		if !ok {
			return nil
		}
		found[chatID] = peerEntry{peer: elem.Peer, title: title}
		return nil
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	for id, entry := range found {
		c.peers[id] = entry
	}
	c.mu.Unlock()
	return nil
}

func dialogIdentity(elem dialogs.Elem) (int64, string, bool) {
	switch peer := elem.Dialog.GetPeer().(type) {
	case *tg.PeerUser:
		user, ok := elem.Entities.User(peer.UserID)
		if !ok || user == nil {
			return 0, "", false
		}
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)
		return peer.UserID, name, true
	case *tg.PeerChat:
		chat, ok := elem.Entities.Chat(peer.ChatID)
		if !ok || chat == nil {
			return 0, "", false
		}
		return -peer.ChatID, chat.Title, true
	case *tg.PeerChannel:
		channel, ok := elem.Entities.Channel(peer.ChannelID)
		if !ok || channel == nil {
			return 0, "", false
		}
		return -(channelChatIDOffset + peer.ChannelID), channel.Title, true
	}
	return 0, "", false
}

// History returns up to limit most recent messages, newest first.
func (c *Client) History(ctx context.Context, chatID int64, limit int) ([]model.Message, error) {
	entry, err := c.resolve(ctx, chatID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Message, 0, minInt(limit, historyBatchSize))
	offsetID := 0
	for len(out) < limit {
		page, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     entry.peer,
			OffsetID: offsetID,
			Limit:    minInt(historyBatchSize, limit-len(out)),
		})
		if err != nil {
			return nil, fmt.Errorf("history %d: %w", chatID, err)
		}
		modified, ok := page.AsModified()
		if !ok {
			break
		}
		pageMin := 0
		for _, msgClass := range modified.GetMessages() {
			msg, ok := msgClass.(*tg.Message)
			if !ok {
				continue
			}
			if pageMin == 0 || msg.ID < pageMin {
				pageMin = msg.ID
			}
			out = append(out, model.Message{ID: msg.ID, TopicID: topicOf(msg)})
			if len(out) >= limit {
				break
			}
		}
		if pageMin == 0 || pageMin == offsetID {
			break
		}
		if len(modified.GetMessages()) < historyBatchSize {
			break
		}
		offsetID = pageMin
	}
	return out, nil
}

// GetMessage fetches one message by id.
func (c *Client) GetMessage(ctx context.Context, chatID int64, msgID int) (*model.Message, error) {
	entry, err := c.resolve(ctx, chatID)
	if err != nil {
		return nil, err
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: msgID}}
	var res tg.MessagesMessagesClass
	if ch, ok := entry.peer.(*tg.InputPeerChannel); ok {
		res, err = c.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash},
			ID:      ids,
		})
	} else {
		res, err = c.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("message %d in %d: %w", msgID, chatID, err)
	}
	modified, ok := res.AsModified()
	if !ok {
		return nil, fmt.Errorf("message %d in %d: %w", msgID, chatID, domain.ErrNotFound)
	}
	for _, msgClass := range modified.GetMessages() {
		if msg, ok := msgClass.(*tg.Message); ok && msg.ID == msgID {
			return &model.Message{ID: msg.ID, TopicID: topicOf(msg)}, nil
		}
	}
	return nil, fmt.Errorf("message %d in %d: %w", msgID, chatID, domain.ErrNotFound)
}

// Forward relocates one message via the platform's native forwarding
// primitive. FLOOD_WAIT surfaces as *adapter.RateLimitedError.
func (c *Client) Forward(ctx context.Context, fromChatID, toChatID int64, msgID int) error {
	from, err := c.resolve(ctx, fromChatID)
	if err != nil {
		return err
	}
	to, err := c.resolve(ctx, toChatID)
	if err != nil {
		return err
	}

	_, err = c.api.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer: from.peer,
		ToPeer:   to.peer,
		ID:       []int{msgID},
		RandomID: []int64{rand.Int63()},
	})
	if err == nil {
		metrics.IncForwarded()
		return nil
	}
	if wait, ok := tgerr.AsFloodWait(err); ok {
		metrics.AddRateLimitWait(wait)
		c.log.Warn().Dur("wait", wait).Int("msg_id", msgID).Msg("rate limited")
		return &adapter.RateLimitedError{RetryAfter: wait}
	}
	reason := failureReason(err)
	metrics.IncFailed(reason)
	c.log.Debug().Int("msg_id", msgID).Str("reason", reason).Err(err).Msg("forward failed")
	return fmt.Errorf("forward %d: %w", msgID, err)
}

// topicOf extracts the forum topic id of a message, if any. Messages at
// a topic root reply directly to the root message.
func topicOf(msg *tg.Message) *int {
	replyTo, ok := msg.GetReplyTo()
	if !ok {
		return nil
	}
	h, ok := replyTo.(*tg.MessageReplyHeader)
	if !ok || !h.ForumTopic {
		return nil
	}
	top, ok := h.GetReplyToTopID()
	if !ok || top == 0 {
		top, ok = h.GetReplyToMsgID()
		if !ok || top == 0 {
			return nil
		}
	}
	return &top
}

func failureReason(err error) string {
	switch {
	case tgerr.Is(err, "MESSAGE_ID_INVALID", "MSG_ID_INVALID"):
		return "not_found"
	case tgerr.Is(err, "CHAT_FORWARDS_RESTRICTED", "CHAT_WRITE_FORBIDDEN", "CHANNEL_PRIVATE"):
		return "forbidden"
	default:
		return "other"
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
