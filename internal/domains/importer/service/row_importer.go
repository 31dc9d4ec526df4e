package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/importer/model"
	mediaService "catalog-importer/internal/domains/media/service"
	productModel "catalog-importer/internal/domains/product/model"
	productRepo "catalog-importer/internal/domains/product/repository"
	taxonomyService "catalog-importer/internal/domains/taxonomy/service"
	"catalog-importer/internal/shared/utils"
)

// ImageResolver turns a viewer page reference into a direct image URL.
type ImageResolver interface {
	Resolve(ctx context.Context, reference string) (string, error)
}

// RowImporter upserts one catalog record.
type RowImporter interface {
	ImportRow(ctx context.Context, rec *model.ProductRecord) (*model.RowResult, error)
}

type RowImporterOptions struct {
	DefaultDescription string
}

type rowImporter struct {
	products    productRepo.Repository
	taxonomy    taxonomyService.TaxonomyService
	resolver    ImageResolver
	media       mediaService.MediaService
	description string
}

func NewRowImporter(
	products productRepo.Repository,
	taxonomy taxonomyService.TaxonomyService,
	resolver ImageResolver,
	media mediaService.MediaService,
	opts RowImporterOptions,
) RowImporter {
	return &rowImporter{
		products:    products,
		taxonomy:    taxonomy,
		resolver:    resolver,
		media:       media,
		description: opts.DefaultDescription,
	}
}

// ImportRow returns model.ErrMissingStockNo for a keyless record. Media
// failures only add warnings; category, attribute and save failures fail
// the row.
func (ri *rowImporter) ImportRow(ctx context.Context, rec *model.ProductRecord) (*model.RowResult, error) {
	sku := rec.Core.StockNo
	result := &model.RowResult{Row: rec.Row, StockNo: sku, Outcome: model.RowFailed}
	if sku == "" {
		result.Outcome = model.RowSkipped
		return result, model.ErrMissingStockNo
	}

	// 1. Load or create by natural key
	product, err := ri.products.FindBySKU(ctx, sku)
	switch {
	case errors.Is(err, productModel.ErrProductNotFound):
		product = productModel.NewProduct(sku)
	case err != nil:
		return result, fmt.Errorf("find product %s: %w", sku, err)
	}

	// 2. Name and price
	product.Name = DisplayName(rec)
	if price, ok := ParsePrice(rec.Core.TotalAmount); ok {
		product.Price = &price
	} else if rec.Core.TotalAmount != "" {
		result.Warnings = append(result.Warnings, "unparsable total amount")
		log.Warn().
			Int("row", rec.Row).
			Str("stock_no", sku).
			Str("total_amount", rec.Core.TotalAmount).
			Msg("Price left unchanged")
	}

	// 3. Image, only when none is attached yet
	if !product.HasImage() && rec.Media.DiamondImage != "" {
		if id, ok := ri.acquireImage(ctx, rec, result); ok {
			product.SetImage(id)
			result.ImageSet = true
		}
	}

	// 4. Categories
	if err := ri.assignCategories(ctx, product, rec.Core.Shape); err != nil {
		return result, err
	}

	// 5. Attributes
	set, err := ri.taxonomy.ResolveAttributes(ctx, AttributeInputFor(rec))
	if err != nil {
		return result, fmt.Errorf("resolve attributes: %w", err)
	}
	if len(set.Entries) > 0 {
		product.AddAttributeTerms(set.TermIDs()...)
		product.SetAttributes(descriptors(set))
	}

	// 6. Metadata
	for _, entry := range rec.MetaEntries() {
		product.SetMeta(entry.Key, utils.SanitizeText(entry.Value))
	}
	if rec.Has(model.ColVideoLink) {
		product.SetMeta(model.MetaVideoLink, utils.SanitizeURL(rec.Media.VideoLink))
	}

	// 7. Description, publication, persistence
	if product.Description == "" {
		product.Description = ri.description
	}
	product.Status = productModel.StatusPublished

	created := product.IsNew()
	if err := ri.products.Save(ctx, product); err != nil {
		log.Error().Err(err).Int("row", rec.Row).Str("stock_no", sku).Msg("Failed to save product")
		return result, fmt.Errorf("save product %s: %w", sku, err)
	}

	result.ProductID = product.ID.String()
	result.Outcome = model.RowUpdated
	if created {
		result.Outcome = model.RowCreated
		log.Info().Str("stock_no", sku).Str("product_id", result.ProductID).Msg("Created product")
	}
	return result, nil
}

func (ri *rowImporter) acquireImage(ctx context.Context, rec *model.ProductRecord, result *model.RowResult) (uuid.UUID, bool) {
	imageURL, err := ri.resolver.Resolve(ctx, rec.Media.DiamondImage)
	if err != nil {
		result.Warnings = append(result.Warnings, "image reference: "+err.Error())
		log.Warn().Err(err).
			Int("row", rec.Row).
			Str("stock_no", rec.Core.StockNo).
			Str("url", rec.Media.DiamondImage).
			Msg("Could not resolve image source")
		return uuid.Nil, false
	}

	assetID, err := ri.media.Acquire(ctx, imageURL)
	if err != nil {
		result.Warnings = append(result.Warnings, "image download: "+err.Error())
		log.Warn().Err(err).
			Int("row", rec.Row).
			Str("stock_no", rec.Core.StockNo).
			Str("url", imageURL).
			Msg("Could not acquire image")
		return uuid.Nil, false
	}
	return assetID, true
}

func (ri *rowImporter) assignCategories(ctx context.Context, product *productModel.Product, shape string) error {
	diamondID, err := ri.taxonomy.EnsureCategory(ctx, productModel.CategoryDiamond, nil)
	if err != nil {
		return fmt.Errorf("ensure category %s: %w", productModel.CategoryDiamond, err)
	}

	name := ShapeCategoryName(shape)
	if name == "" {
		product.SetCategories(diamondID)
		return nil
	}

	shapeID, err := ri.taxonomy.EnsureCategory(ctx, name, &diamondID)
	if err != nil {
		return fmt.Errorf("ensure category %s: %w", name, err)
	}
	product.SetCategories(diamondID, shapeID)
	return nil
}

func descriptors(set *taxonomyService.AttributeSet) []productModel.AttributeDescriptor {
	out := make([]productModel.AttributeDescriptor, 0, len(set.Entries))
	for _, e := range set.Entries {
		out = append(out, productModel.AttributeDescriptor{
			Name:        e.Def.Slug,
			Value:       e.Term.Name,
			Position:    e.Position,
			IsVisible:   true,
			IsVariation: false,
			IsTaxonomy:  true,
		})
	}
	return out
}
