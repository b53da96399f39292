package services

import (
	"testing"

	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewModerationFlow(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewReviewService(db)
	admin := middleware.Identity{UserID: 999, Role: "admin"}

	review, err := svc.Create(fx.buyerID, ReviewInput{
		ProductID: product.ID,
		Rating:    4,
		Comment:   "solid",
	})
	require.NoError(t, err)
	assert.False(t, review.IsApproved)

	// Invisible until approved.
	visible, _, err := svc.ListApproved(repositories.ReviewFilter{ProductID: &product.ID}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Only admins moderate.
	_, err = svc.Approve(fx.buyerID, review.ID)
	require.ErrorIs(t, err, ErrForbidden)

	approved, err := svc.Approve(admin, review.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	visible, _, err = svc.ListApproved(repositories.ReviewFilter{ProductID: &product.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	// An author edit pulls it back out of the public listing.
	edited, err := svc.Update(fx.buyerID, review.ID, 2, "changed my mind")
	require.NoError(t, err)
	assert.False(t, edited.IsApproved)

	visible, _, err = svc.ListApproved(repositories.ReviewFilter{ProductID: &product.ID}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestReviewOnePerUserPerProduct(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewReviewService(db)

	_, err := svc.Create(fx.buyerID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	_, err = svc.Create(fx.buyerID, ReviewInput{ProductID: product.ID, Rating: 1})
	require.ErrorIs(t, err, ErrConflict)

	// A different user may still review the same product.
	other := middleware.Identity{UserID: fx.seller.ID, Role: "user"}
	_, err = svc.Create(other, ReviewInput{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)
}

func TestReviewRatingBounds(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewReviewService(db)

	var verr *ValidationError
	_, err := svc.Create(fx.buyerID, ReviewInput{ProductID: product.ID, Rating: 0})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Create(fx.buyerID, ReviewInput{ProductID: product.ID, Rating: 6})
	require.ErrorAs(t, err, &verr)
}

func TestReviewDeleteOwnership(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	svc := NewReviewService(db)

	review, err := svc.Create(fx.buyerID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	stranger := middleware.Identity{UserID: fx.buyer.ID + 500, Role: "user"}
	require.ErrorIs(t, svc.Delete(stranger, review.ID), ErrForbidden)
	require.NoError(t, svc.Delete(fx.buyerID, review.ID))
	require.ErrorIs(t, svc.Delete(fx.buyerID, review.ID), ErrNotFound)
}
