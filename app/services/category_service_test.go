package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreatedInactiveHiddenFromRoots(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db)

	inactive := false
	cat, err := svc.Create(CategoryInput{Name: "Archive", IsActive: &inactive})
	require.NoError(t, err)

	got, err := svc.Get(cat.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	roots, err := svc.Roots()
	require.NoError(t, err)
	for _, c := range roots {
		assert.NotEqual(t, cat.ID, c.ID)
	}
}

func TestCategoryTreeRejectsCycles(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db)

	root, err := svc.Create(CategoryInput{Name: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, "electronics", root.Slug)

	mid, err := svc.Create(CategoryInput{Name: "Phones", ParentID: &root.ID})
	require.NoError(t, err)

	leaf, err := svc.Create(CategoryInput{Name: "Smartphones", ParentID: &mid.ID})
	require.NoError(t, err)

	var verr *ValidationError

	// Self-parenting.
	_, err = svc.Update(root.ID, CategoryInput{Name: "Electronics", ParentID: &root.ID})
	require.ErrorAs(t, err, &verr)

	// Reparenting the root under its own grandchild.
	_, err = svc.Update(root.ID, CategoryInput{Name: "Electronics", ParentID: &leaf.ID})
	require.ErrorAs(t, err, &verr)

	// A legal reparent still works.
	moved, err := svc.Update(leaf.ID, CategoryInput{Name: "Smartphones", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, root.ID, *moved.ParentID)
}

func TestCategoryCreateUnknownParent(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db)

	missing := uint(12345)
	_, err := svc.Create(CategoryInput{Name: "Orphan", ParentID: &missing})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":        "electronics",
		"Home & Garden":      "home-garden",
		"  Trimmed  Name  ":  "trimmed-name",
		"UPPER lower 123":    "upper-lower-123",
		"trailing symbols!!": "trailing-symbols",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), "slugify(%q)", in)
	}
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	db := setupDB(t)
	fx := seedFixtures(t, db)
	svc := NewCategoryService(db)

	cat, err := svc.Create(CategoryInput{Name: "Gadgets"})
	require.NoError(t, err)

	product := seedProduct(t, db, fx.profile.ID, "10", 5)
	require.NoError(t, db.Model(&product).Update("category_id", cat.ID).Error)

	require.NoError(t, svc.Delete(cat.ID))

	products := NewProductService(db)
	got, err := products.Get(product.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}
