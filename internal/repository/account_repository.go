package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) AccountRepository {
	return &accountRepository{
		collection: db.Collection("users"),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.Cart == nil {
		account.Cart = domain.Cart{}
	}

	_, err := r.collection.InsertOne(ctx, account)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var account domain.Account
	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Cart == nil {
		account.Cart = domain.Cart{}
	}
	return &account, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *accountRepository) GetByVerifyToken(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"verify_token": token})
}

func (r *accountRepository) GetByResetToken(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"reset_token": token})
}

func (r *accountRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) MarkVerified(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"verified": true},
		"$unset": bson.M{"verify_token": "", "verify_expires": ""},
	})
}

func (r *accountRepository) LinkGoogle(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"verified": true, "provider": domain.ProviderGoogle},
		"$unset": bson.M{
			"password_hash":  "",
			"verify_token":   "",
			"verify_expires": "",
			"reset_token":    "",
			"reset_expires":  "",
		},
	})
}

func (r *accountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"reset_token": token, "reset_expires": expires},
	})
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": passwordHash},
		"$unset": bson.M{"reset_token": "", "reset_expires": ""},
	})
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) GetCart(ctx context.Context, accountID string) (domain.Cart, error) {
	var doc struct {
		Cart domain.Cart `bson:"cart"`
	}
	opts := options.FindOne().SetProjection(bson.M{"cart": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": accountID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if doc.Cart == nil {
		doc.Cart = domain.Cart{}
	}
	doc.Cart.Prune()
	return doc.Cart, nil
}

func cartField(productID, size string) string {
	return "cart." + productID + "." + size
}

func (r *accountRepository) IncrementCartItem(ctx context.Context, accountID, productID, size string, delta int) error {
	return r.updateOne(ctx, accountID, bson.M{
		"$inc": bson.M{cartField(productID, size): delta},
	})
}

func (r *accountRepository) SetCartItem(ctx context.Context, accountID, productID, size string, qty int) error {
	if qty <= 0 {
		return r.RemoveCartItem(ctx, accountID, productID, size)
	}
	return r.updateOne(ctx, accountID, bson.M{
		"$set": bson.M{cartField(productID, size): qty},
	})
}

func (r *accountRepository) RemoveCartItem(ctx context.Context, accountID, productID, size string) error {
	if err := r.updateOne(ctx, accountID, bson.M{
		"$unset": bson.M{cartField(productID, size): ""},
	}); err != nil {
		return err
	}

	// Drop the product entry once its last size is gone
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": accountID, "cart." + productID: bson.M{}},
		bson.M{"$unset": bson.M{"cart." + productID: ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to prune cart: %w", err)
	}
	return nil
}

func (r *accountRepository) ReplaceCart(ctx context.Context, accountID string, cart domain.Cart) error {
	cart = cart.Clone()
	cart.Prune()
	return r.updateOne(ctx, accountID, bson.M{
		"$set": bson.M{"cart": cart},
	})
}

func (r *accountRepository) ClearCart(ctx context.Context, accountID string) error {
	return r.updateOne(ctx, accountID, bson.M{
		"$set": bson.M{"cart": bson.M{}},
	})
}
