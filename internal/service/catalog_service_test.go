package service

import (
	"testing"

	"go-stocktrack/internal/model"
	"go-stocktrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(cRepo *mockCategoryRepo, pRepo *mockProductRepo) CatalogService {
	return NewCatalogService(cRepo, pRepo, &mockActionLogRepo{})
}

func TestCreateCategory(t *testing.T) {
	cRepo := newMockCategoryRepo()
	svc := newTestCatalog(cRepo, newMockProductRepo())

	category, err := svc.CreateCategory(&CategoryInput{Name: "Soft Drinks", Description: "cold"}, testActor())

	require.NoError(t, err)
	assert.Equal(t, "Soft Drinks", category.Name)
	assert.Equal(t, "soft-drinks", category.Slug)
	assert.NotEqual(t, uuid.Nil, category.ID)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	cRepo := newMockCategoryRepo(&model.Category{Name: "Snacks"})
	svc := newTestCatalog(cRepo, newMockProductRepo())

	_, err := svc.CreateCategory(&CategoryInput{Name: "Snacks"}, testActor())

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "has already been taken", ve.Fields["name"])
}

func TestUpdateCategory_KeepingOwnNameIsAllowed(t *testing.T) {
	existing := &model.Category{Name: "Snacks", Slug: "snacks"}
	cRepo := newMockCategoryRepo(existing)
	svc := newTestCatalog(cRepo, newMockProductRepo())

	updated, err := svc.UpdateCategory(existing.ID, &CategoryInput{Name: "Snacks", Description: "salty"}, testActor())

	require.NoError(t, err)
	assert.Equal(t, "salty", updated.Description)
}

func TestDeleteCategory_WithProductsIsRejected(t *testing.T) {
	category := &model.Category{Name: "Snacks"}
	cRepo := newMockCategoryRepo(category)
	cRepo.productCnt[category.ID] = 3
	svc := newTestCatalog(cRepo, newMockProductRepo())

	err := svc.DeleteCategory(category.ID, testActor())

	var conflict *apperror.ConflictError
	require.ErrorAs(t, err, &conflict)
	_, findErr := cRepo.FindByID(category.ID)
	assert.NoError(t, findErr, "category must survive a rejected delete")
}

func TestDeleteCategory_Empty(t *testing.T) {
	category := &model.Category{Name: "Snacks"}
	cRepo := newMockCategoryRepo(category)
	svc := newTestCatalog(cRepo, newMockProductRepo())

	require.NoError(t, svc.DeleteCategory(category.ID, testActor()))
	_, err := cRepo.FindByID(category.ID)
	assert.Error(t, err)
}

func validProductInput(categoryID uuid.UUID) *ProductInput {
	return &ProductInput{
		CategoryID:    categoryID,
		Name:          "Cola Can",
		Price:         decimal.RequireFromString("3.00"),
		PurchasePrice: decimal.RequireFromString("2.00"),
		SalePrice:     decimal.RequireFromString("3.00"),
		StockQuantity: 24,
		MinimumStock:  6,
	}
}

func TestCreateProduct(t *testing.T) {
	category := &model.Category{Name: "Soft Drinks"}
	cRepo := newMockCategoryRepo(category)
	pRepo := newMockProductRepo()
	svc := newTestCatalog(cRepo, pRepo)

	product, err := svc.CreateProduct(validProductInput(category.ID), testActor())

	require.NoError(t, err)
	assert.Equal(t, "cola-can", product.Slug)
	assert.Equal(t, 24, product.StockQuantity)
	assert.Equal(t, 24, product.OpeningStock)
	assert.True(t, product.OpeningPurchasePrice.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, product.OpeningSalePrice.Equal(decimal.RequireFromString("3.00")))
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	svc := newTestCatalog(newMockCategoryRepo(), newMockProductRepo())

	_, err := svc.CreateProduct(validProductInput(uuid.New()), testActor())

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "category_id")
}

func TestCreateProduct_NegativeFields(t *testing.T) {
	category := &model.Category{Name: "Soft Drinks"}
	cRepo := newMockCategoryRepo(category)
	svc := newTestCatalog(cRepo, newMockProductRepo())

	input := validProductInput(category.ID)
	input.SalePrice = decimal.RequireFromString("-1.00")
	input.StockQuantity = -2

	_, err := svc.CreateProduct(input, testActor())

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "sale_price")
	assert.Contains(t, ve.Fields, "stock_quantity")
}

func TestCreateProduct_DuplicateBarcode(t *testing.T) {
	category := &model.Category{Name: "Soft Drinks"}
	cRepo := newMockCategoryRepo(category)
	barcode := "4006381333931"
	existing := testProduct(5, "1.00", "2.00")
	existing.Barcode = &barcode
	pRepo := newMockProductRepo(existing)
	svc := newTestCatalog(cRepo, pRepo)

	input := validProductInput(category.ID)
	input.Barcode = &barcode

	_, err := svc.CreateProduct(input, testActor())

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "has already been taken", ve.Fields["barcode"])
}

func TestUpdateProduct_NeverTouchesLedgerOwnedFields(t *testing.T) {
	category := &model.Category{Name: "Soft Drinks"}
	cRepo := newMockCategoryRepo(category)
	product := testProduct(10, "2.00", "5.00")
	product.CategoryID = category.ID
	pRepo := newMockProductRepo(product)
	svc := newTestCatalog(cRepo, pRepo)

	input := validProductInput(category.ID)
	input.Name = "Widget Deluxe"
	input.StockQuantity = 999
	input.PurchasePrice = decimal.RequireFromString("0.01")
	input.SalePrice = decimal.RequireFromString("99.00")

	updated, err := svc.UpdateProduct(product.ID, input, testActor())

	require.NoError(t, err)
	assert.Equal(t, "Widget Deluxe", updated.Name)
	assert.Equal(t, "widget-deluxe", updated.Slug)
	assert.Equal(t, 10, updated.StockQuantity)
	assert.True(t, updated.PurchasePrice.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, updated.SalePrice.Equal(decimal.RequireFromString("5.00")))
}

func TestListLowStock(t *testing.T) {
	low := testProduct(1, "1.00", "2.00")
	low.MinimumStock = 5
	atThreshold := testProduct(5, "1.00", "2.00")
	atThreshold.MinimumStock = 5
	healthy := testProduct(50, "1.00", "2.00")
	healthy.MinimumStock = 5
	svc := newTestCatalog(newMockCategoryRepo(), newMockProductRepo(low, atThreshold, healthy))

	products, err := svc.ListLowStock()

	require.NoError(t, err)
	assert.Len(t, products, 2, "at-threshold counts as low")
}
