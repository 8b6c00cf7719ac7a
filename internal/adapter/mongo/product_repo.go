package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollectionName = "products"

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepository{collection: db.Collection(productCollectionName)}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) (string, error) {
	doc := *product
	doc.ID = ""

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}

	var product entity.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", productID, err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]entity.Product, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]entity.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode listed products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, productID string, params repository.UpdateProductParams) (*entity.Product, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Price != nil {
		set["price"] = *params.Price
	}
	if params.Image != nil {
		set["image"] = *params.Image
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated entity.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product %s: %w", productID, err)
	}
	return &updated, nil
}

func (r *productRepository) Delete(ctx context.Context, productID string) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", productID, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
