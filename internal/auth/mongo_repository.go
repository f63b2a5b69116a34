package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for the MongoDB user repository.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. arsenal
	Collection string // e.g. users
}

// MongoUserRepo implements UserRepository on a MongoDB backend. Users are
// single documents with the equipment state embedded, so every equipment
// mutation is one filtered UpdateOne: the capacity and membership guards
// live in the filter and the server applies check+write atomically.
type MongoUserRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

// userDoc is the persisted document layout.
type userDoc struct {
	ID                primitive.ObjectID   `bson:"_id"`
	Username          string               `bson:"username"`
	UsernameLower     string               `bson:"username_lower"`
	Email             string               `bson:"email"`
	PasswordHash      string               `bson:"password_hash"`
	Role              string               `bson:"role"`
	Avatar            string               `bson:"avatar"`
	SelectedCharacter *primitive.ObjectID  `bson:"selected_character,omitempty"`
	Loadout           []primitive.ObjectID `bson:"loadout"`
	Loadouts          []namedLoadoutDoc    `bson:"loadouts"`
	Stats             Stats                `bson:"stats"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

type namedLoadoutDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	Weapons   []primitive.ObjectID `bson:"weapons"`
	CreatedAt time.Time            `bson:"created_at"`
}

// NewMongoUserRepo establishes the connection and returns the repository.
func NewMongoUserRepo(cfg MongoConfig) (*MongoUserRepo, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "arsenal"
	}
	if cfg.Collection == "" {
		cfg.Collection = "users"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	// ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	repo := &MongoUserRepo{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}

	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (m *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	usernameIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "username_lower", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}
	emailIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{usernameIdx, emailIdx})
	return err
}

// GetUserByID implements UserRepository.
func (m *MongoUserRepo) GetUserByID(id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return m.findOne(bson.M{"_id": oid})
}

// GetUserByUsername implements UserRepository.
func (m *MongoUserRepo) GetUserByUsername(username string) (*User, error) {
	return m.findOne(bson.M{"username_lower": strings.ToLower(username)})
}

// GetUserByEmail implements UserRepository.
func (m *MongoUserRepo) GetUserByEmail(email string) (*User, error) {
	return m.findOne(bson.M{"email": strings.ToLower(email)})
}

func (m *MongoUserRepo) findOne(filter bson.M) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	var doc userDoc
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toUser(), nil
}

// CreateUser inserts a new account document with empty equipment state.
func (m *MongoUserRepo) CreateUser(username, email, passwordHash string, role Role) (*User, error) {
	now := time.Now()
	doc := userDoc{
		ID:            primitive.NewObjectID(),
		Username:      username,
		UsernameLower: strings.ToLower(username),
		Email:         strings.ToLower(email),
		PasswordHash:  passwordHash,
		Role:          string(role),
		Loadout:       []primitive.ObjectID{},
		Loadouts:      []namedLoadoutDoc{},
		Stats:         DefaultStats(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	_, err := m.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email_unique") {
			return nil, ErrEmailExists
		}
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	return doc.toUser(), nil
}

// ValidateCredentials implements UserRepository.
func (m *MongoUserRepo) ValidateCredentials(email, password string) (*User, error) {
	user, err := m.GetUserByEmail(email)
	if err == ErrUserNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers implements UserRepository.
func (m *MongoUserRepo) ListUsers() ([]*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	cursor, err := m.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*User
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toUser())
	}
	return users, cursor.Err()
}

// CountUsers implements UserRepository.
func (m *MongoUserRepo) CountUsers() (int64, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	total, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}
	admins, err := m.collection.CountDocuments(ctx, bson.M{"role": string(RoleAdmin)})
	if err != nil {
		return 0, 0, err
	}
	return total, admins, nil
}

// AddLoadoutWeapon implements UserRepository. The filter excludes documents
// that already contain the weapon or already hold MaxLoadoutWeapons entries,
// so the push can never create a duplicate or a sixth slot no matter how
// many requests race.
func (m *MongoUserRepo) AddLoadoutWeapon(userID, weaponID string) (*User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	wid, err := primitive.ObjectIDFromHex(weaponID)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	lastSlot := fmt.Sprintf("loadout.%d", MaxLoadoutWeapons-1)
	res, err := m.collection.UpdateOne(ctx,
		bson.M{
			"_id":     uid,
			"loadout": bson.M{"$ne": wid},
			lastSlot:  bson.M{"$exists": false},
		},
		bson.M{
			"$push": bson.M{"loadout": wid},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 1 {
		return m.findOne(bson.M{"_id": uid})
	}

	// No match: either the user is gone, the weapon is already present
	// (idempotent success) or the loadout is full.
	user, err := m.findOne(bson.M{"_id": uid})
	if err != nil {
		return nil, err
	}
	for _, id := range user.Loadout {
		if id == weaponID {
			return user, nil
		}
	}
	return nil, ErrLoadoutFull
}

// RemoveLoadoutWeapon implements UserRepository.
func (m *MongoUserRepo) RemoveLoadoutWeapon(userID, weaponID string) (*User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	wid, err := primitive.ObjectIDFromHex(weaponID)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{
			"$pull": bson.M{"loadout": wid},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return m.findOne(bson.M{"_id": uid})
}

// SetSelectedCharacter implements UserRepository.
func (m *MongoUserRepo) SetSelectedCharacter(userID, characterID string) (*User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	cid, err := primitive.ObjectIDFromHex(characterID)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"selected_character": cid, "updated_at": time.Now()}},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return m.findOne(bson.M{"_id": uid})
}

// AddNamedLoadout implements UserRepository. The last-slot exists guard in
// the filter keeps the collection at MaxNamedLoadouts under concurrency.
func (m *MongoUserRepo) AddNamedLoadout(userID, name string, weaponIDs []string) (*NamedLoadout, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	wids := make([]primitive.ObjectID, 0, len(weaponIDs))
	for _, id := range weaponIDs {
		wid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, ErrInvalidID
		}
		wids = append(wids, wid)
	}

	entry := namedLoadoutDoc{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Weapons:   wids,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	lastSlot := fmt.Sprintf("loadouts.%d", MaxNamedLoadouts-1)
	res, err := m.collection.UpdateOne(ctx,
		bson.M{
			"_id":    uid,
			lastSlot: bson.M{"$exists": false},
		},
		bson.M{
			"$push": bson.M{"loadouts": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		if _, err := m.findOne(bson.M{"_id": uid}); err != nil {
			return nil, err
		}
		return nil, ErrLoadoutLimit
	}
	return entry.toNamedLoadout(), nil
}

// RemoveNamedLoadout implements UserRepository.
func (m *MongoUserRepo) RemoveNamedLoadout(userID, loadoutID string) (*User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	lid, err := primitive.ObjectIDFromHex(loadoutID)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{
			"$pull": bson.M{"loadouts": bson.M{"_id": lid}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return m.findOne(bson.M{"_id": uid})
}

// Close terminates the connection.
func (m *MongoUserRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (d *userDoc) toUser() *User {
	loadout := make([]string, len(d.Loadout))
	for i, id := range d.Loadout {
		loadout[i] = id.Hex()
	}
	loadouts := make([]NamedLoadout, len(d.Loadouts))
	for i, l := range d.Loadouts {
		loadouts[i] = *l.toNamedLoadout()
	}
	user := &User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         Role(d.Role),
		Avatar:       d.Avatar,
		Loadout:      loadout,
		Loadouts:     loadouts,
		Stats:        d.Stats,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.SelectedCharacter != nil {
		user.SelectedCharacter = d.SelectedCharacter.Hex()
	}
	return user
}

func (d *namedLoadoutDoc) toNamedLoadout() *NamedLoadout {
	weapons := make([]string, len(d.Weapons))
	for i, id := range d.Weapons {
		weapons[i] = id.Hex()
	}
	return &NamedLoadout{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Weapons:   weapons,
		CreatedAt: d.CreatedAt,
	}
}
