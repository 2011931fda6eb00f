package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sydwelll/nft-marketplace-backend/core/storage"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/models"
)

// Prefix is the folder holding event objects.
const Prefix = "events/"

// ObjectName returns the object key of the event with sequence number seq.
// Keys are zero padded so lexical order equals sequence order.
func ObjectName(seq uint64) string {
	return fmt.Sprintf("%s%020d.json", Prefix, seq)
}

// ParseObjectName returns the sequence number encoded in an object key.
func ParseObjectName(key string) (uint64, bool) {
	name, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return 0, false
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	seq, err := strconv.ParseUint(name, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// Publisher writes committed ledger events to object storage, one JSON object
// per event, for off-chain indexers.
type Publisher struct {
	client storage.Client
	bucket string
}

// NewPublisher creates a publisher writing to bucket.
func NewPublisher(client storage.Client, bucket string) *Publisher {
	return &Publisher{client: client, bucket: bucket}
}

// Bucket returns the target bucket.
func (p *Publisher) Bucket() string {
	return p.bucket
}

// Publish uploads events in order and stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, events ...models.Event) error {
	for _, ev := range events {
		metadata := map[string]string{
			"event": ev.Name,
			"item":  strconv.FormatUint(ev.ItemID, 10),
		}
		if err := storage.PutJSON(ctx, p.client, p.bucket, ObjectName(ev.Seq), NewEntry(ev), metadata); err != nil {
			return fmt.Errorf("failed to publish event %d: %w", ev.Seq, err)
		}
	}
	return nil
}

// Published returns the sequence numbers present in the bucket.
func (p *Publisher) Published(ctx context.Context) (map[uint64]struct{}, error) {
	keys, err := storage.ListKeys(ctx, p.client, p.bucket, Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	seqs := make(map[uint64]struct{}, len(keys))
	for _, key := range keys {
		if seq, ok := ParseObjectName(key); ok {
			seqs[seq] = struct{}{}
		}
	}
	return seqs, nil
}

// Fetch downloads the published entry of event seq.
func (p *Publisher) Fetch(ctx context.Context, seq uint64) (Entry, error) {
	var entry Entry
	if err := storage.GetJSON(ctx, p.client, p.bucket, ObjectName(seq), &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to fetch event %d: %w", seq, err)
	}
	return entry, nil
}

// Entry is the JSON document stored for each event.
type Entry struct {
	Seq       uint64          `json:"seq"`
	Name      string          `json:"name"`
	ItemID    uint64          `json:"item_id"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEntry converts a stored event row into its published form.
func NewEntry(ev models.Event) Entry {
	return Entry{
		Seq:       ev.Seq,
		Name:      ev.Name,
		ItemID:    ev.ItemID,
		CreatedAt: ev.CreatedAt.UTC(),
		Payload:   json.RawMessage(ev.Payload),
	}
}

// Matches reports whether the entry carries the same event as the stored row.
// Payloads are compared after compaction.
func (e Entry) Matches(ev models.Event) bool {
	if e.Seq != ev.Seq || e.Name != ev.Name || e.ItemID != ev.ItemID {
		return false
	}
	var got, want bytes.Buffer
	if json.Compact(&got, e.Payload) != nil || json.Compact(&want, []byte(ev.Payload)) != nil {
		return false
	}
	return bytes.Equal(got.Bytes(), want.Bytes())
}
