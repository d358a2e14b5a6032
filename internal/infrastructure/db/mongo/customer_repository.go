package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopstack/customer-service/internal/core/domain"
	"github.com/shopstack/customer-service/internal/core/ports"
)

const customerCollection = "customers"

type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(customerCollection)}
}

type mongoCustomer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCustomer{
		Name:         customer.Name,
		Email:        customer.Email,
		PasswordHash: customer.PasswordHash,
		Role:         customer.Role,
		CreatedAt:    customer.CreatedAt.Unix(),
		UpdatedAt:    customer.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, wrapDriverError("insert customer", err)
	}

	created := *customer
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCustomer
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, wrapDriverError("find customer by email", err)
	}
	return mc.toDomain(), nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCustomerNotFound
	}

	var mc mongoCustomer
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, wrapDriverError("find customer by id", err)
	}
	return mc.toDomain(), nil
}

func (r *CustomerRepository) Update(ctx context.Context, id string, update ports.CustomerUpdate) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCustomerNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mc mongoCustomer
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, wrapDriverError("update customer", err)
	}
	return mc.toDomain(), nil
}

// Delete removes the customer document. A missing document is not an error:
// the caller has already cleared any cached session, and absence is the
// desired end state either way.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return wrapDriverError("delete customer", err)
	}
	return nil
}

// List returns all customers plus the total count. The count runs as a
// separate query concurrent with the find, matching how the totals were
// always produced; under concurrent writes the two may briefly disagree.
func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	type countResult struct {
		n   int64
		err error
	}
	countCh := make(chan countResult, 1)
	go func() {
		n, err := r.coll.CountDocuments(ctx, bson.M{})
		countCh <- countResult{n: n, err: err}
	}()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		<-countCh
		return nil, 0, wrapDriverError("list customers", err)
	}
	defer cursor.Close(ctx)

	var customers []*domain.Customer
	for cursor.Next(ctx) {
		var mc mongoCustomer
		if err := cursor.Decode(&mc); err != nil {
			<-countCh
			return nil, 0, wrapDriverError("decode customer", err)
		}
		customers = append(customers, mc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		<-countCh
		return nil, 0, wrapDriverError("list customers", err)
	}

	count := <-countCh
	if count.err != nil {
		return nil, 0, wrapDriverError("count customers", count.err)
	}
	return customers, count.n, nil
}

// EnsureIndexes creates the unique email index. Duplicate-email
// registration is rejected at this level and surfaces as ErrEmailTaken.
func (r *CustomerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (mc *mongoCustomer) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:           mc.ID.Hex(),
		Name:         mc.Name,
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		Role:         mc.Role,
		CreatedAt:    unixToTime(mc.CreatedAt),
		UpdatedAt:    unixToTime(mc.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// wrapDriverError classifies unexpected driver failures as infrastructure
// faults, which the boundary layer may retry with backoff.
func wrapDriverError(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrDependencyUnavailable)
}
