package journal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Sydwelll/nft-marketplace-backend/core/storage"
	"github.com/Sydwelll/nft-marketplace-backend/core/storage/mocks"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name := journal.ObjectName(42)
	assert.Equal(t, "events/00000000000000000042.json", name)

	seq, ok := journal.ParseObjectName(name)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), seq)

	for _, bad := range []string{"events/", "other/1.json", "events/x.json", "events/1.txt"} {
		_, ok := journal.ParseObjectName(bad)
		assert.False(t, ok, bad)
	}
}

func TestPublish(t *testing.T) {
	ev := models.Event{
		Seq:       7,
		Name:      "ItemBurned",
		ItemID:    3,
		Payload:   `{"id":3}`,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	t.Run("Uploads entry", func(t *testing.T) {
		client := new(mocks.Client)
		var body []byte
		client.On("PutObject", mock.Anything, "journal", "events/00000000000000000007.json", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				body, _ = io.ReadAll(args.Get(3).(io.Reader))
			}).
			Return(minio.UploadInfo{}, nil)

		err := journal.NewPublisher(client, "journal").Publish(context.Background(), ev)
		require.NoError(t, err)

		var entry journal.Entry
		require.NoError(t, json.Unmarshal(body, &entry))
		assert.Equal(t, uint64(7), entry.Seq)
		assert.Equal(t, "ItemBurned", entry.Name)
		assert.JSONEq(t, `{"id":3}`, string(entry.Payload))
		client.AssertExpectations(t)
	})

	t.Run("Stops on failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "journal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("bucket gone")).Once()

		second := ev
		second.Seq = 8
		err := journal.NewPublisher(client, "journal").Publish(context.Background(), ev, second)
		assert.ErrorContains(t, err, "bucket gone")
		client.AssertNumberOfCalls(t, "PutObject", 1)
	})
}

func TestPublished(t *testing.T) {
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: journal.ObjectName(1)}
	ch <- minio.ObjectInfo{Key: "events/readme.txt"}
	ch <- minio.ObjectInfo{Key: journal.ObjectName(3)}
	close(ch)
	client.On("ListObjects", mock.Anything, "journal", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	seqs, err := journal.NewPublisher(client, "journal").Published(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, map[uint64]struct{}{1: {}, 3: {}}, seqs)
}

func TestFetch(t *testing.T) {
	ev := models.Event{Seq: 2, Name: "ItemBurned", ItemID: 3, Payload: `{"id":3}`, CreatedAt: time.Now()}

	t.Run("Round trip", func(t *testing.T) {
		body, err := json.Marshal(journal.NewEntry(ev))
		require.NoError(t, err)
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "journal", journal.ObjectName(2), mock.Anything).
			Return(io.NopCloser(bytes.NewReader(body)), nil)

		entry, err := journal.NewPublisher(client, "journal").Fetch(context.Background(), 2)
		require.NoError(t, err)
		assert.True(t, entry.Matches(ev))
	})

	t.Run("Malformed object", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "journal", journal.ObjectName(2), mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte("garbage"))), nil)

		_, err := journal.NewPublisher(client, "journal").Fetch(context.Background(), 2)
		assert.ErrorIs(t, err, storage.ErrMalformedObject)
	})
}

func TestEntryMatches(t *testing.T) {
	ev := models.Event{Seq: 4, Name: "ItemMinted", ItemID: 1, Payload: `{"to":"0xa","id":1,"resource_uri":"","for_sale":true}`}
	entry := journal.NewEntry(ev)

	assert.True(t, entry.Matches(ev))

	spaced := entry
	spaced.Payload = json.RawMessage(`{"to": "0xa", "id": 1, "resource_uri": "", "for_sale": true}`)
	assert.True(t, spaced.Matches(ev))

	for name, mutate := range map[string]func(e *journal.Entry){
		"seq":     func(e *journal.Entry) { e.Seq = 5 },
		"name":    func(e *journal.Entry) { e.Name = "ItemBurned" },
		"item":    func(e *journal.Entry) { e.ItemID = 2 },
		"payload": func(e *journal.Entry) { e.Payload = json.RawMessage(`{"to":"0xb","id":1}`) },
		"invalid": func(e *journal.Entry) { e.Payload = json.RawMessage(`{`) },
	} {
		changed := entry
		mutate(&changed)
		assert.False(t, changed.Matches(ev), name)
	}
}
