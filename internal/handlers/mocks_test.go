package handlers

import (
	"context"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, update models.ProductUpdate) (models.Product, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (models.Category, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id string, update models.CategoryUpdate) (models.Category, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) FindAll(ctx context.Context) ([]models.Collection, error) {
	args := m.Called(ctx)
	collections, _ := args.Get(0).([]models.Collection)
	return collections, args.Error(1)
}

func (m *MockCollectionRepository) FindBySlug(ctx context.Context, slug string) (models.Collection, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) FindByID(ctx context.Context, id string) (models.Collection, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Create(ctx context.Context, collection models.Collection) (models.Collection, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Update(ctx context.Context, id string, update models.CollectionUpdate) (models.Collection, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCollectionRepository) AddProducts(ctx context.Context, id string, productIDs []string) (models.Collection, error) {
	args := m.Called(ctx, id, productIDs)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) RemoveProducts(ctx context.Context, id string, productIDs []string) (models.Collection, error) {
	args := m.Called(ctx, id, productIDs)
	return args.Get(0).(models.Collection), args.Error(1)
}
