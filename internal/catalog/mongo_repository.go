package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogConfig contains connection settings for the MongoDB catalog.
type MongoCatalogConfig struct {
	URI        string
	Database   string
	Weapons    string // collection name, default "weapons"
	Characters string // collection name, default "characters"
}

// MongoRepository implements Repository on MongoDB.
type MongoRepository struct {
	client     *mongo.Client
	weapons    *mongo.Collection
	characters *mongo.Collection
	ctxTimeout time.Duration
}

type weaponDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Subtitle    string             `bson:"subtitle"`
	Category    string             `bson:"category"`
	Tier        string             `bson:"tier"`
	Stats       WeaponStats        `bson:"stats"`
	Description string             `bson:"description"`
	Lore        string             `bson:"lore"`
	Image       string             `bson:"image"`
	ModelColor  string             `bson:"model_color"`
	AccentColor string             `bson:"accent_color"`
	UnlockLevel int                `bson:"unlock_level"`
	Tags        []string           `bson:"tags"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type characterDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Codename     string             `bson:"codename"`
	Role         string             `bson:"role"`
	Faction      string             `bson:"faction"`
	Tier         string             `bson:"tier"`
	Description  string             `bson:"description"`
	Lore         string             `bson:"lore"`
	Abilities    []Ability          `bson:"abilities"`
	Stats        CharacterStats     `bson:"stats"`
	Image        string             `bson:"image"`
	ModelColor   string             `bson:"model_color"`
	AccentColor  string             `bson:"accent_color"`
	SkinVariants []SkinVariant      `bson:"skin_variants"`
	UnlockLevel  int                `bson:"unlock_level"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// NewMongoRepository establishes the connection and returns the repository.
func NewMongoRepository(cfg MongoCatalogConfig) (*MongoRepository, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "arsenal"
	}
	if cfg.Weapons == "" {
		cfg.Weapons = "weapons"
	}
	if cfg.Characters == "" {
		cfg.Characters = "characters"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database)
	repo := &MongoRepository{
		client:     client,
		weapons:    db.Collection(cfg.Weapons),
		characters: db.Collection(cfg.Characters),
		ctxTimeout: 5 * time.Second,
	}

	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (m *MongoRepository) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	categoryTierIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "tier", Value: 1}},
	}
	textIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
	}
	_, err := m.weapons.Indexes().CreateMany(ctx, []mongo.IndexModel{categoryTierIdx, textIdx})
	return err
}

// FindWeapon implements Repository.
func (m *MongoRepository) FindWeapon(id string) (*Weapon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	var doc weaponDoc
	err = m.weapons.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrWeaponNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toWeapon(), nil
}

// ListWeapons implements Repository.
func (m *MongoRepository) ListWeapons(filter WeaponFilter) ([]*Weapon, int64, error) {
	filter.Normalize()
	query := bson.M{}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Tier != "" {
		query["tier"] = string(filter.Tier)
	}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	total, err := m.weapons.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cursor, err := m.weapons.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	weapons := []*Weapon{}
	for cursor.Next(ctx) {
		var doc weaponDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		weapons = append(weapons, doc.toWeapon())
	}
	return weapons, total, cursor.Err()
}

// CreateWeapon implements Repository.
func (m *MongoRepository) CreateWeapon(w *Weapon) (*Weapon, error) {
	now := time.Now()
	doc := weaponDocFrom(w)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	if _, err := m.weapons.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toWeapon(), nil
}

// UpdateWeapon implements Repository.
func (m *MongoRepository) UpdateWeapon(id string, w *Weapon) (*Weapon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	doc := weaponDocFrom(w)

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"name": doc.Name, "subtitle": doc.Subtitle, "category": doc.Category,
		"tier": doc.Tier, "stats": doc.Stats, "description": doc.Description,
		"lore": doc.Lore, "image": doc.Image, "model_color": doc.ModelColor,
		"accent_color": doc.AccentColor, "unlock_level": doc.UnlockLevel,
		"tags": doc.Tags, "is_active": doc.IsActive, "updated_at": time.Now(),
	}}
	var updated weaponDoc
	err = m.weapons.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrWeaponNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated.toWeapon(), nil
}

// DeleteWeapon implements Repository.
func (m *MongoRepository) DeleteWeapon(id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.weapons.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrWeaponNotFound
	}
	return nil
}

// FindCharacter implements Repository.
func (m *MongoRepository) FindCharacter(id string) (*Character, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	var doc characterDoc
	err = m.characters.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toCharacter(), nil
}

// ListCharacters implements Repository.
func (m *MongoRepository) ListCharacters(activeOnly bool) ([]*Character, error) {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	cursor, err := m.characters.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	characters := []*Character{}
	for cursor.Next(ctx) {
		var doc characterDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		characters = append(characters, doc.toCharacter())
	}
	return characters, cursor.Err()
}

// CreateCharacter implements Repository.
func (m *MongoRepository) CreateCharacter(c *Character) (*Character, error) {
	now := time.Now()
	doc := characterDocFrom(c)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	if _, err := m.characters.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toCharacter(), nil
}

// UpdateCharacter implements Repository.
func (m *MongoRepository) UpdateCharacter(id string, c *Character) (*Character, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	doc := characterDocFrom(c)

	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"name": doc.Name, "codename": doc.Codename, "role": doc.Role,
		"faction": doc.Faction, "tier": doc.Tier, "description": doc.Description,
		"lore": doc.Lore, "abilities": doc.Abilities, "stats": doc.Stats,
		"image": doc.Image, "model_color": doc.ModelColor,
		"accent_color": doc.AccentColor, "skin_variants": doc.SkinVariants,
		"unlock_level": doc.UnlockLevel, "is_active": doc.IsActive,
		"updated_at": time.Now(),
	}}
	var updated characterDoc
	err = m.characters.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated.toCharacter(), nil
}

// DeleteCharacter implements Repository.
func (m *MongoRepository) DeleteCharacter(id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	res, err := m.characters.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// Counts implements Repository.
func (m *MongoRepository) Counts() (int64, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	weapons, err := m.weapons.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, 0, err
	}
	characters, err := m.characters.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, 0, err
	}
	return weapons, characters, nil
}

// Close terminates the connection.
func (m *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func weaponDocFrom(w *Weapon) *weaponDoc {
	return &weaponDoc{
		Name:        w.Name,
		Subtitle:    w.Subtitle,
		Category:    string(w.Category),
		Tier:        string(w.Tier),
		Stats:       w.Stats,
		Description: w.Description,
		Lore:        w.Lore,
		Image:       w.Image,
		ModelColor:  w.ModelColor,
		AccentColor: w.AccentColor,
		UnlockLevel: w.UnlockLevel,
		Tags:        w.Tags,
		IsActive:    w.IsActive,
	}
}

func (d *weaponDoc) toWeapon() *Weapon {
	return &Weapon{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Subtitle:    d.Subtitle,
		Category:    WeaponCategory(d.Category),
		Tier:        Tier(d.Tier),
		Stats:       d.Stats,
		Description: d.Description,
		Lore:        d.Lore,
		Image:       d.Image,
		ModelColor:  d.ModelColor,
		AccentColor: d.AccentColor,
		UnlockLevel: d.UnlockLevel,
		Tags:        d.Tags,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func characterDocFrom(c *Character) *characterDoc {
	return &characterDoc{
		Name:         c.Name,
		Codename:     c.Codename,
		Role:         c.Role,
		Faction:      string(c.Faction),
		Tier:         string(c.Tier),
		Description:  c.Description,
		Lore:         c.Lore,
		Abilities:    c.Abilities,
		Stats:        c.Stats,
		Image:        c.Image,
		ModelColor:   c.ModelColor,
		AccentColor:  c.AccentColor,
		SkinVariants: c.SkinVariants,
		UnlockLevel:  c.UnlockLevel,
		IsActive:     c.IsActive,
	}
}

func (d *characterDoc) toCharacter() *Character {
	return &Character{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Codename:     d.Codename,
		Role:         d.Role,
		Faction:      Faction(d.Faction),
		Tier:         Tier(d.Tier),
		Description:  d.Description,
		Lore:         d.Lore,
		Abilities:    d.Abilities,
		Stats:        d.Stats,
		Image:        d.Image,
		ModelColor:   d.ModelColor,
		AccentColor:  d.AccentColor,
		SkinVariants: d.SkinVariants,
		UnlockLevel:  d.UnlockLevel,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
