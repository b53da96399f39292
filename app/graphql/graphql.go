// Package graphql exposes a read-only catalog view: products and
// categories. Mutations stay on the REST surface.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/response"
)

type Catalog struct {
	products   *services.ProductService
	categories *services.CategoryService
	schema     graphql.Schema
}

func NewCatalog(products *services.ProductService, categories *services.CategoryService) (*Catalog, error) {
	c := &Catalog{products: products, categories: categories}

	imageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductImage",
		Fields: graphql.Fields{
			"id":       {Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return int(p.Source.(models.ProductImage).ID), nil }},
			"path":     {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.ProductImage).Path, nil }},
			"altText":  {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.ProductImage).AltText, nil }},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   {Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return int(p.Source.(models.Category).ID), nil }},
			"name": {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Category).Name, nil }},
			"slug": {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Category).Slug, nil }},
		},
	})
	categoryType.AddFieldConfig("children", &graphql.Field{
		Type: graphql.NewList(categoryType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return c.categories.Children(p.Source.(models.Category).ID)
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          {Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return int(p.Source.(models.Product).ID), nil }},
			"title":       {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Product).Title, nil }},
			"slug":        {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Product).Slug, nil }},
			"description": {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Product).Description, nil }},
			"price":       {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Product).Price.String(), nil }},
			"quantity":    {Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) { return int(p.Source.(models.Product).Quantity), nil }},
			"images":      {Type: graphql.NewList(imageType), Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Source.(models.Product).Images, nil }},
			"oldPrice": {Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				product := p.Source.(models.Product)
				if product.OldPrice == nil {
					return nil, nil
				}
				return product.OldPrice.String(), nil
			}},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"search":     {Type: graphql.String},
					"categoryId": {Type: graphql.Int},
					"page":       {Type: graphql.Int},
				},
				Resolve: c.resolveProducts,
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"slug": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return c.products.GetBySlug(p.Args["slug"].(string))
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return c.categories.Roots()
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	if err != nil {
		return nil, err
	}
	c.schema = schema
	return c, nil
}

func (c *Catalog) resolveProducts(p graphql.ResolveParams) (interface{}, error) {
	var filter repositories.ProductFilter
	if s, ok := p.Args["search"].(string); ok {
		filter.Search = s
	}
	if raw, ok := p.Args["categoryId"].(int); ok && raw > 0 {
		id := uint(raw)
		filter.CategoryID = &id
	}
	page := 1
	if raw, ok := p.Args["page"].(int); ok && raw > 0 {
		page = raw
	}

	items, _, err := c.products.List(filter, page, 0)
	return items, err
}

type gqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves POSTed GraphQL queries.
func (c *Catalog) Handler(w http.ResponseWriter, r *http.Request) {
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid GraphQL payload")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result) //nolint:errcheck
}
