package controllers

import (
	"net/http"

	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/response"
)

type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(svc *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: svc}
}

// Index is the public listing: approved reviews, filterable by product
// and rating.
func (c *ReviewController) Index(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ReviewFilter
	if raw := bind.QueryInt(r, "product_id", 0); raw > 0 {
		id := uint(raw)
		filter.ProductID = &id
	}
	if raw := bind.QueryInt(r, "rating", 0); raw >= 1 && raw <= 5 {
		filter.Rating = &raw
	}
	page, perPage := pageParams(r)

	items, p, err := c.reviews.ListApproved(filter, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, items, p)
}

// Mine lists the caller's own reviews, approved or not.
func (c *ReviewController) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	page, perPage := pageParams(r)

	items, p, err := c.reviews.ListMine(id, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, items, p)
}

// Pending is the moderation queue.
func (c *ReviewController) Pending(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	page, perPage := pageParams(r)

	items, p, err := c.reviews.ListPending(id, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, items, p)
}

func (c *ReviewController) Store(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var in services.ReviewInput
	if !bind.JSON(w, r, &in) {
		return
	}

	review, err := c.reviews.Create(id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, review)
}

type updateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,integer,between=1,5"`
	Comment string `json:"comment" validate:"nullable,max=2000"`
}

func (c *ReviewController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	reviewID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	var req updateReviewRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	review, err := c.reviews.Update(id, reviewID, req.Rating, req.Comment)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, review)
}

func (c *ReviewController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	reviewID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	if err := c.reviews.Delete(id, reviewID); err != nil {
		fail(w, r, err)
		return
	}
	response.NoContent(w)
}

func (c *ReviewController) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	reviewID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}

	review, err := c.reviews.Approve(id, reviewID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, review)
}
