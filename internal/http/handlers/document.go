package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/prefstore/internal/assets"
	"github.com/jmylchreest/prefstore/internal/effects"
	"github.com/jmylchreest/prefstore/internal/models"
)

// DocumentSource exposes the rendered document attributes.
type DocumentSource interface {
	Snapshot() effects.DocumentSnapshot
}

// DocumentHandler serves the document projection and brand stylesheets.
type DocumentHandler struct {
	document DocumentSource
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(document DocumentSource) *DocumentHandler {
	return &DocumentHandler{document: document}
}

// Register registers the document routes with the API.
func (h *DocumentHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getDocument",
		Method:      "GET",
		Path:        "/api/v1/document",
		Summary:     "Get document attributes",
		Description: "Returns the attributes, style properties and classes currently applied to the document root",
		Tags:        []string{"Document"},
	}, h.GetDocument)

	huma.Register(api, huma.Operation{
		OperationID: "getBrandStylesheet",
		Method:      "GET",
		Path:        "/api/v1/brands/{brand}/stylesheet",
		Summary:     "Get brand stylesheet",
		Description: "Returns the CSS custom properties of a brand for every theme",
		Tags:        []string{"Document"},
	}, h.GetBrandStylesheet)

	huma.Register(api, huma.Operation{
		OperationID: "listBrands",
		Method:      "GET",
		Path:        "/api/v1/brands",
		Summary:     "List brands",
		Tags:        []string{"Document"},
	}, h.ListBrands)
}

// GetDocumentInput is the input for the document projection.
type GetDocumentInput struct{}

// GetDocumentOutput is the output for the document projection.
type GetDocumentOutput struct {
	Body effects.DocumentSnapshot
}

// GetDocument returns the current document projection.
func (h *DocumentHandler) GetDocument(ctx context.Context, input *GetDocumentInput) (*GetDocumentOutput, error) {
	return &GetDocumentOutput{Body: h.document.Snapshot()}, nil
}

// GetBrandStylesheetInput is the input for a brand stylesheet.
type GetBrandStylesheetInput struct {
	Brand string `path:"brand" enum:"default,vibrant,corporate" doc:"Brand name"`
}

// GetBrandStylesheetOutput is the raw CSS response.
type GetBrandStylesheetOutput struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

// GetBrandStylesheet returns the embedded stylesheet of a brand.
func (h *DocumentHandler) GetBrandStylesheet(ctx context.Context, input *GetBrandStylesheetInput) (*GetBrandStylesheetOutput, error) {
	css, err := assets.BrandCSS(models.Brand(input.Brand))
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("brand %q not found", input.Brand))
	}

	return &GetBrandStylesheetOutput{
		ContentType:  assets.StylesheetContentType,
		CacheControl: "public, max-age=3600",
		Body:         css,
	}, nil
}

// ListBrandsInput is the input for listing brands.
type ListBrandsInput struct{}

// ListBrandsOutput is the output for listing brands.
type ListBrandsOutput struct {
	Body struct {
		Brands []models.Brand `json:"brands"`
	}
}

// ListBrands returns the embedded brands.
func (h *DocumentHandler) ListBrands(ctx context.Context, input *ListBrandsInput) (*ListBrandsOutput, error) {
	brands, err := assets.ListBrands()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list brands", err)
	}
	out := &ListBrandsOutput{}
	out.Body.Brands = brands
	return out, nil
}
