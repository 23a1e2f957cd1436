package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safesphere/models"
)

// MongoStore persists every collection in MongoDB. Integer ids come from a
// counters collection incremented with $inc.
type MongoStore struct {
	client    *mongo.Client
	users     *mongo.Collection
	requests  *mongo.Collection
	edges     *mongo.Collection
	alerts    *mongo.Collection
	locations *mongo.Collection
	counters  *mongo.Collection
}

// ConnectMongo dials uri, pings the server and ensures indexes.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	slog.Info("Connected to MongoDB", "database", database)

	db := client.Database(database)
	s := &MongoStore{
		client:    client,
		users:     db.Collection("users"),
		requests:  db.Collection("friend_requests"),
		edges:     db.Collection("friend_edges"),
		alerts:    db.Collection("alerts"),
		locations: db.Collection("locations"),
		counters:  db.Collection("counters"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		// One pending request per ordered pair; terminal requests fall out of the index.
		{s.requests, mongo.IndexModel{
			Keys: bson.D{{Key: "from_user_id", Value: 1}, {Key: "to_user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(models.FriendRequestPending)}),
		}},
		{s.edges, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "friend_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.alerts, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		{s.locations, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return models.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}
	id, err := s.nextID(ctx, "users")
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := s.findSorted(ctx, s.users, bson.M{}, &out)
	return out, err
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (models.User, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Latitude != nil {
		set["latitude"] = *upd.Latitude
	}
	if upd.Longitude != nil {
		set["longitude"] = *upd.Longitude
	}
	if len(set) == 0 {
		return s.GetUser(ctx, id)
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *MongoStore) SetStatus(ctx context.Context, id int64, status models.SafetyStatus, at time.Time, alert *models.Alert) (models.User, *models.Alert, error) {
	var prev models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":           status,
			"is_safe":          status == models.StatusSafe,
			"last_safe_update": at,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, nil, ErrNotFound
	}
	if err != nil {
		return models.User{}, nil, fmt.Errorf("set status: %w", err)
	}

	updated := prev
	updated.Status = status
	updated.IsSafe = status == models.StatusSafe
	updated.LastSafeUpdate = at
	if alert == nil {
		return updated, nil, nil
	}

	created, err := s.insertAlert(ctx, id, *alert)
	if err != nil {
		// Put the previous status back so the caller never observes a
		// transition without its alert.
		_, rollbackErr := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"status":           prev.Status,
			"is_safe":          prev.IsSafe,
			"last_safe_update": prev.LastSafeUpdate,
		}})
		if rollbackErr != nil {
			slog.Error("Failed to roll back status", "user_id", id, "error", rollbackErr)
		}
		return models.User{}, nil, err
	}
	return updated, &created, nil
}

func (s *MongoStore) insertAlert(ctx context.Context, userID int64, a models.Alert) (models.Alert, error) {
	id, err := s.nextID(ctx, "alerts")
	if err != nil {
		return models.Alert{}, err
	}
	a.ID = id
	a.UserID = userID
	if _, err := s.alerts.InsertOne(ctx, a); err != nil {
		return models.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	return a, nil
}

func (s *MongoStore) CreateFriendRequest(ctx context.Context, r models.FriendRequest) (models.FriendRequest, error) {
	edges, err := s.edges.CountDocuments(ctx, bson.M{"user_id": r.FromUserID, "friend_id": r.ToUserID})
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("count edges: %w", err)
	}
	if edges > 0 {
		return models.FriendRequest{}, ErrAlreadyFriends
	}
	id, err := s.nextID(ctx, "friend_requests")
	if err != nil {
		return models.FriendRequest{}, err
	}
	r.ID = id
	r.Status = models.FriendRequestPending
	if _, err := s.requests.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.FriendRequest{}, ErrDuplicateRequest
		}
		return models.FriendRequest{}, fmt.Errorf("insert friend request: %w", err)
	}
	return r, nil
}

func (s *MongoStore) GetFriendRequest(ctx context.Context, id int64) (models.FriendRequest, error) {
	var r models.FriendRequest
	err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.FriendRequest{}, ErrNotFound
	}
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("find friend request: %w", err)
	}
	return r, nil
}

func (s *MongoStore) ListIncomingRequests(ctx context.Context, toUserID int64) ([]models.FriendRequest, error) {
	out := []models.FriendRequest{}
	err := s.findSorted(ctx, s.requests, bson.M{"to_user_id": toUserID, "status": models.FriendRequestPending}, &out)
	return out, err
}

func (s *MongoStore) ResolveFriendRequest(ctx context.Context, id, toUserID int64, status models.FriendRequestStatus, at time.Time) (models.FriendRequest, *models.FriendEdge, error) {
	var r models.FriendRequest
	err := s.requests.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "to_user_id": toUserID, "status": models.FriendRequestPending},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		existing, getErr := s.GetFriendRequest(ctx, id)
		if getErr != nil || existing.ToUserID != toUserID {
			return models.FriendRequest{}, nil, ErrNotFound
		}
		return models.FriendRequest{}, nil, ErrRequestNotPending
	}
	if err != nil {
		return models.FriendRequest{}, nil, fmt.Errorf("resolve friend request: %w", err)
	}
	if status != models.FriendRequestAccepted {
		return r, nil, nil
	}

	edge, err := s.insertEdge(ctx, r, at)
	if err != nil {
		_, rollbackErr := s.requests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": models.FriendRequestPending}})
		if rollbackErr != nil {
			slog.Error("Failed to roll back friend request", "request_id", id, "error", rollbackErr)
		}
		return models.FriendRequest{}, nil, err
	}
	return r, &edge, nil
}

func (s *MongoStore) insertEdge(ctx context.Context, r models.FriendRequest, at time.Time) (models.FriendEdge, error) {
	id, err := s.nextID(ctx, "friend_edges")
	if err != nil {
		return models.FriendEdge{}, err
	}
	e := models.FriendEdge{
		ID:        id,
		UserID:    r.FromUserID,
		FriendID:  r.ToUserID,
		Status:    models.FriendRequestAccepted,
		CreatedAt: at,
	}
	if _, err := s.edges.InsertOne(ctx, e); err != nil {
		return models.FriendEdge{}, fmt.Errorf("insert friend edge: %w", err)
	}
	return e, nil
}

func (s *MongoStore) ListFriendEdges(ctx context.Context, userID int64) ([]models.FriendEdge, error) {
	out := []models.FriendEdge{}
	err := s.findSorted(ctx, s.edges, bson.M{"user_id": userID, "status": models.FriendRequestAccepted}, &out)
	return out, err
}

func (s *MongoStore) ListAlerts(ctx context.Context, userIDs []int64) ([]models.Alert, error) {
	out := []models.Alert{}
	if len(userIDs) == 0 {
		return out, nil
	}
	err := s.findSorted(ctx, s.alerts, bson.M{"user_id": bson.M{"$in": userIDs}}, &out)
	return out, err
}

func (s *MongoStore) CreateLocation(ctx context.Context, l models.Location) (models.Location, error) {
	id, err := s.nextID(ctx, "locations")
	if err != nil {
		return models.Location{}, err
	}
	l.ID = id
	if _, err := s.locations.InsertOne(ctx, l); err != nil {
		return models.Location{}, fmt.Errorf("insert location: %w", err)
	}
	return l, nil
}

func (s *MongoStore) ListLocations(ctx context.Context, userID int64) ([]models.Location, error) {
	out := []models.Location{}
	err := s.findSorted(ctx, s.locations, bson.M{"user_id": userID}, &out)
	return out, err
}

// findSorted decodes every document matching filter, ordered by _id, into results.
func (s *MongoStore) findSorted(ctx context.Context, coll *mongo.Collection, filter bson.M, results any) error {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return nil
}
