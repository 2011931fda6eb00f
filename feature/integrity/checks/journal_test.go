package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/Sydwelll/nft-marketplace-backend/core/storage/mocks"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/models"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listing(seqs ...uint64) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(seqs))
	for _, seq := range seqs {
		ch <- minio.ObjectInfo{Key: journal.ObjectName(seq)}
	}
	close(ch)
	return ch
}

func serve(t *testing.T, client *mocks.Client, entry journal.Entry) {
	t.Helper()
	body, err := json.Marshal(entry)
	require.NoError(t, err)
	client.On("GetObject", mock.Anything, "journal", journal.ObjectName(entry.Seq), mock.Anything).
		Return(io.NopCloser(bytes.NewReader(body)), nil).Once()
}

func TestCheckJournal(t *testing.T) {
	ctx := context.Background()
	db := seedLedger(t) // five events: seq 1..5
	events, err := store.New(db).Events(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 5)
	bySeq := func(seq uint64) models.Event { return events[seq-1] }

	t.Run("Missing and tampered", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "journal", mock.Anything).Return(listing(1, 2, 4))
		serve(t, mockClient, journal.NewEntry(bySeq(1)))
		serve(t, mockClient, journal.NewEntry(bySeq(2)))
		tampered := journal.NewEntry(bySeq(4))
		tampered.Payload = json.RawMessage(`{"id":0,"seller":"0xowner","buyer":"0xthief","price":"100","commission":"10"}`)
		serve(t, mockClient, tampered)
		publisher := journal.NewPublisher(mockClient, "journal")

		report, upload, err := CheckJournal(ctx, db, publisher)
		require.NoError(t, err)
		assert.Equal(t, 5, report.Stored)
		assert.Equal(t, 3, report.Published)
		assert.Equal(t, []uint64{3, 5}, report.Missing)
		assert.Equal(t, []uint64{4}, report.Mismatched)
		require.Len(t, upload, 3)
		assert.Equal(t, []uint64{3, 4, 5}, []uint64{upload[0].Seq, upload[1].Seq, upload[2].Seq})

		mockClient.On("PutObject", mock.Anything, "journal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)
		assert.NoError(t, FixJournal(ctx, publisher, zap.NewNop(), upload))
		mockClient.AssertNumberOfCalls(t, "PutObject", 3)
		mockClient.AssertCalled(t, "PutObject", mock.Anything, "journal", journal.ObjectName(4), mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed object is republished", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "journal", mock.Anything).Return(listing(1, 2, 3, 4, 5))
		for _, seq := range []uint64{1, 2, 4, 5} {
			serve(t, mockClient, journal.NewEntry(bySeq(seq)))
		}
		mockClient.On("GetObject", mock.Anything, "journal", journal.ObjectName(3), mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte("{"))), nil).Once()

		report, upload, err := CheckJournal(ctx, db, journal.NewPublisher(mockClient, "journal"))
		require.NoError(t, err)
		assert.Empty(t, report.Missing)
		assert.Equal(t, []uint64{3}, report.Mismatched)
		require.Len(t, upload, 1)
		mockClient.AssertNumberOfCalls(t, "GetObject", 5)
	})

	t.Run("Download error aborts", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "journal", mock.Anything).Return(listing(1))
		mockClient.On("GetObject", mock.Anything, "journal", journal.ObjectName(1), mock.Anything).
			Return(nil, errors.New("connection refused"))

		_, _, err := CheckJournal(ctx, db, journal.NewPublisher(mockClient, "journal"))
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("In sync", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "journal", mock.Anything).Return(listing(1, 2, 3, 4, 5))
		for _, ev := range events {
			serve(t, mockClient, journal.NewEntry(ev))
		}

		report, upload, err := CheckJournal(ctx, db, journal.NewPublisher(mockClient, "journal"))
		require.NoError(t, err)
		assert.Empty(t, report.Missing)
		assert.Empty(t, report.Mismatched)
		assert.Empty(t, upload)
		mockClient.AssertExpectations(t)
	})
}
