package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-importer/internal/domains/importer/model"
	mediaModel "catalog-importer/internal/domains/media/model"
	productModel "catalog-importer/internal/domains/product/model"
	taxonomyModel "catalog-importer/internal/domains/taxonomy/model"
	taxonomyService "catalog-importer/internal/domains/taxonomy/service"
	"catalog-importer/internal/infrastructure/memory"
)

const testDescription = "filler"

type fakeResolver struct {
	calls int
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return ref + "/image.jpg", nil
}

type fakeMedia struct {
	calls int
	ids   map[string]uuid.UUID
	err   error
}

func (f *fakeMedia) Acquire(_ context.Context, url string) (uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return uuid.Nil, f.err
	}
	if f.ids == nil {
		f.ids = make(map[string]uuid.UUID)
	}
	id, ok := f.ids[url]
	if !ok {
		id = uuid.New()
		f.ids[url] = id
	}
	return id, nil
}

func (f *fakeMedia) Get(context.Context, uuid.UUID) (*mediaModel.Asset, error) {
	return nil, mediaModel.ErrAssetNotFound
}

type rowFixture struct {
	importer RowImporter
	products *memory.ProductRepository
	terms    *memory.TermRepository
	resolver *fakeResolver
	media    *fakeMedia
}

func newRowFixture() *rowFixture {
	terms := memory.NewTermRepository()
	f := &rowFixture{
		products: memory.NewProductRepository(terms),
		terms:    terms,
		resolver: &fakeResolver{},
		media:    &fakeMedia{},
	}
	f.importer = NewRowImporter(
		f.products,
		taxonomyService.NewTaxonomyService(terms),
		f.resolver,
		f.media,
		RowImporterOptions{DefaultDescription: testDescription},
	)
	return f
}

var scenarioHeader = []string{"Stock #", "Shape", "Carat", "Color", "Clarity", "Total Amount"}

func TestImportRow_CreatesProduct(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()

	rec := mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1.02", "D", "VS1", "5000"})
	res, err := f.importer.ImportRow(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, model.RowCreated, res.Outcome)

	p, err := f.products.FindBySKU(ctx, "RD-001")
	require.NoError(t, err)
	assert.Equal(t, res.ProductID, p.ID.String())
	assert.Equal(t, "1.02 Carat - D - VS1 - Cut - Round", p.Name)
	assert.Equal(t, "5000", p.Price.String())
	assert.Equal(t, productModel.StatusPublished, p.Status)
	assert.Equal(t, testDescription, p.Description)
	assert.ElementsMatch(t, []string{"Diamond", "Round"}, p.CategoryNames)

	assert.Equal(t, "RD-001", p.GetMeta("Stock #"))
	assert.Equal(t, "1.02", p.GetMeta("Carat"))
	assert.Equal(t, "Round", p.GetMeta("Shape"))
	assert.Equal(t, "5000", p.GetMeta("Total Amount"))
	assert.NotContains(t, p.Meta, "Lab")
	assert.NotContains(t, p.Meta, model.MetaVideoLink)

	require.Len(t, p.Attributes, 2)
	assert.Equal(t, productModel.AttributeDescriptor{
		Name: "pa_color", Value: "D", Position: 0, IsVisible: true, IsTaxonomy: true,
	}, p.Attributes[0])
	assert.Equal(t, "pa_clarity", p.Attributes[1].Name)
	assert.Equal(t, 1, p.Attributes[1].Position)
	assert.Len(t, p.AttributeTermIDs, 2)
	assert.False(t, p.HasImage())
}

func TestImportRow_ReimportUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()

	_, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1.02", "D", "VS1", "5000"}))
	require.NoError(t, err)
	first, err := f.products.FindBySKU(ctx, "RD-001")
	require.NoError(t, err)

	res, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "ROUND", "1.02", "D", "VS1", "5500"}))
	require.NoError(t, err)
	assert.Equal(t, model.RowUpdated, res.Outcome)

	p, err := f.products.FindBySKU(ctx, "RD-001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, p.ID)
	assert.Equal(t, "5500", p.Price.String())
	assert.Equal(t, 1, f.products.Count())
	assert.Equal(t, 1, f.products.Creates())

	var rounds int
	for _, term := range f.terms.Terms(taxonomyModel.TaxonomyCategory) {
		if term.Name == "Round" {
			rounds++
		}
	}
	assert.Equal(t, 1, rounds)
}

func TestImportRow_ReimportReplacesAttributeTable(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()

	_, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1.02", "D", "VS1", "5000"}))
	require.NoError(t, err)

	_, err = f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1.02", "E", "", "5000"}))
	require.NoError(t, err)

	p, err := f.products.FindBySKU(ctx, "RD-001")
	require.NoError(t, err)
	require.Len(t, p.Attributes, 1)
	assert.Equal(t, productModel.AttributeDescriptor{
		Name: "pa_color", Value: "E", Position: 0, IsVisible: true, IsTaxonomy: true,
	}, p.Attributes[0])
	// term assignments accumulate: D, VS1 and E stay linked
	assert.Len(t, p.AttributeTermIDs, 3)
}

func TestImportRow_SharedShapeTermCreatedOnce(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()

	for _, sku := range []string{"A-1", "A-2", "A-3", "A-4"} {
		_, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{sku, "Round", "1", "E", "VS2", "10"}))
		require.NoError(t, err)
	}

	categories := f.terms.Terms(taxonomyModel.TaxonomyCategory)
	assert.Len(t, categories, 2)
	assert.Equal(t, 4, f.products.Count())
}

func TestImportRow_Description(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{name: "kept when present", existing: "Hand written copy", want: "Hand written copy"},
		{name: "filled when empty", existing: "", want: testDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRowFixture()
			seed := productModel.NewProduct("RD-001")
			seed.Description = tt.existing
			require.NoError(t, f.products.Save(ctx, seed))

			_, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1.02", "D", "VS1", "5000"}))
			require.NoError(t, err)

			p, err := f.products.FindBySKU(ctx, "RD-001")
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Description)
		})
	}
}

func TestImportRow_Media(t *testing.T) {
	ctx := context.Background()
	header := []string{"Stock #", "Shape", "DiamondImage", "Video Link"}

	t.Run("acquired once then kept", func(t *testing.T) {
		f := newRowFixture()
		row := []string{"RD-001", "Round", "https://viewer.example.com/RD-001", "http://video.example.com/v/1#t=3"}

		res, err := f.importer.ImportRow(ctx, mapRow(t, header, row))
		require.NoError(t, err)
		assert.True(t, res.ImageSet)

		_, err = f.importer.ImportRow(ctx, mapRow(t, header, row))
		require.NoError(t, err)

		assert.Equal(t, 1, f.resolver.calls)
		assert.Equal(t, 1, f.media.calls)

		p, err := f.products.FindBySKU(ctx, "RD-001")
		require.NoError(t, err)
		require.True(t, p.HasImage())
		assert.Equal(t, f.media.ids["https://viewer.example.com/RD-001/image.jpg"], *p.ImageID)
		assert.Equal(t, "http://video.example.com/v/1", p.GetMeta(model.MetaVideoLink))
	})

	t.Run("two rows share one asset", func(t *testing.T) {
		f := newRowFixture()
		for _, sku := range []string{"RD-001", "RD-002"} {
			_, err := f.importer.ImportRow(ctx, mapRow(t, header, []string{sku, "Round", "https://viewer.example.com/same", ""}))
			require.NoError(t, err)
		}

		a, _ := f.products.FindBySKU(ctx, "RD-001")
		b, _ := f.products.FindBySKU(ctx, "RD-002")
		require.True(t, a.HasImage())
		assert.Equal(t, *a.ImageID, *b.ImageID)
		assert.Len(t, f.media.ids, 1)
	})

	failures := []struct {
		name     string
		resolve  error
		acquire  error
		acquires int
	}{
		{name: "viewer unreachable", resolve: mediaModel.ErrPageUnreachable, acquires: 0},
		{name: "download rejected", acquire: mediaModel.ErrNotImage, acquires: 1},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			f := newRowFixture()
			f.resolver.err = tt.resolve
			f.media.err = tt.acquire

			res, err := f.importer.ImportRow(ctx, mapRow(t, header, []string{"RD-001", "Round", "https://viewer.example.com/x", ""}))
			require.NoError(t, err)
			assert.Equal(t, model.RowCreated, res.Outcome)
			assert.False(t, res.ImageSet)
			assert.NotEmpty(t, res.Warnings)
			assert.Equal(t, tt.acquires, f.media.calls)

			p, err := f.products.FindBySKU(ctx, "RD-001")
			require.NoError(t, err)
			assert.False(t, p.HasImage())
		})
	}
}

func TestImportRow_BlankShapeOnlyDiamond(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()

	_, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-009", "", "1", "F", "", ""}))
	require.NoError(t, err)

	p, err := f.products.FindBySKU(ctx, "RD-009")
	require.NoError(t, err)
	assert.Equal(t, []string{"Diamond"}, p.CategoryNames)
	assert.Nil(t, p.Price)
	require.Len(t, p.Attributes, 1)
	assert.Equal(t, "pa_color", p.Attributes[0].Name)
}

func TestImportRow_UnparsablePriceKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()

	_, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1", "D", "VS1", "5000"}))
	require.NoError(t, err)
	res, err := f.importer.ImportRow(ctx, mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1", "D", "VS1", "on request"}))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)

	p, err := f.products.FindBySKU(ctx, "RD-001")
	require.NoError(t, err)
	assert.Equal(t, "5000", p.Price.String())
	assert.Equal(t, "on request", p.GetMeta("Total Amount"))
}

func TestImportRow_SanitisesMeta(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture()
	header := []string{"Stock #", "Cert comment", "Lab"}

	_, err := f.importer.ImportRow(ctx, mapRow(t, header, []string{"RD-001", "<b>No</b>   inclusions", "GIA"}))
	require.NoError(t, err)

	p, err := f.products.FindBySKU(ctx, "RD-001")
	require.NoError(t, err)
	assert.Equal(t, "No inclusions", p.GetMeta("Cert comment"))
	assert.Equal(t, "GIA", p.GetMeta("Lab"))
}

func TestImportRow_MissingStockNo(t *testing.T) {
	f := newRowFixture()

	res, err := f.importer.ImportRow(context.Background(), mapRow(t, scenarioHeader, []string{" ", "Round", "1", "D", "VS1", "1"}))
	assert.ErrorIs(t, err, model.ErrMissingStockNo)
	assert.Equal(t, model.RowSkipped, res.Outcome)
	assert.Zero(t, f.products.Count())
	assert.Zero(t, f.terms.TermCreates())
}

func TestImportRow_SaveFailure(t *testing.T) {
	f := newRowFixture()
	boom := errors.New("connection reset")
	f.products.FailSaves(boom)

	res, err := f.importer.ImportRow(context.Background(), mapRow(t, scenarioHeader, []string{"RD-001", "Round", "1", "D", "VS1", "1"}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, model.RowFailed, res.Outcome)
	assert.Zero(t, f.products.Count())
}
