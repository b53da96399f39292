package controllers

import (
	"net/http"

	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/response"
)

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(svc *services.CategoryService) *CategoryController {
	return &CategoryController{categories: svc}
}

// Index lists root categories.
func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	cats, err := c.categories.Roots()
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, cats)
}

func (c *CategoryController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	cat, err := c.categories.Get(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, cat)
}

func (c *CategoryController) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	cats, err := c.categories.Children(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, cats)
}

func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !bind.JSON(w, r, &in) {
		return
	}
	cat, err := c.categories.Create(in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, cat)
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	var in services.CategoryInput
	if !bind.JSON(w, r, &in) {
		return
	}
	cat, err := c.categories.Update(id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, cat)
}

func (c *CategoryController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	if err := c.categories.Delete(id); err != nil {
		fail(w, r, err)
		return
	}
	response.NoContent(w)
}
