package services

import (
	"testing"

	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatPairNormalization(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	svc := NewChatService(db, nil)

	sellerAsUser := middleware.Identity{UserID: fx.seller.ID, Role: "user"}

	first, err := svc.Open(fx.buyerID, fx.seller.ID)
	require.NoError(t, err)

	// Opening from the other side resolves to the same row.
	second, err := svc.Open(sellerAsUser, fx.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Less(t, first.User1ID, first.User2ID)
}

func TestChatRejectsSelfAndUnknownPeer(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	svc := NewChatService(db, nil)

	var verr *ValidationError
	_, err := svc.Open(fx.buyerID, fx.buyer.ID)
	require.ErrorAs(t, err, &verr)

	_, err = svc.Open(fx.buyerID, fx.buyer.ID+9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChatMessagesParticipantsOnly(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	svc := NewChatService(db, nil)

	chat, err := svc.Open(fx.buyerID, fx.seller.ID)
	require.NoError(t, err)

	sent, err := svc.Send(fx.buyerID, chat.ID, "is this still available?")
	require.NoError(t, err)
	assert.Equal(t, fx.buyer.ID, sent.SenderID)

	messages, p, err := svc.Messages(fx.buyerID, chat.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(1), p.Total)

	stranger := middleware.Identity{UserID: fx.buyer.ID + 777, Role: "user"}
	_, _, err = svc.Messages(stranger, chat.ID, 1, 20)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Send(stranger, chat.ID, "hello")
	require.ErrorIs(t, err, ErrForbidden)

	var verr *ValidationError
	_, err = svc.Send(fx.buyerID, chat.ID, "")
	require.ErrorAs(t, err, &verr)
}
