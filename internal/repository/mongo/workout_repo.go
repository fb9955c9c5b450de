// internal/repository/mongo/workout_repo.go
package mongo

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// workoutDocument is the stored shape of a workout. Exactly one of the four
// content sub-documents is set, selected by documentType.
type workoutDocument struct {
	ID                  primitive.ObjectID          `bson:"_id,omitempty"`
	CoachID             primitive.ObjectID          `bson:"coachId"`
	Name                string                      `bson:"name"`
	DocumentType        domain.DocumentType         `bson:"documentType"`
	Date                time.Time                   `bson:"date"`
	DurationMinutes     int                         `bson:"durationMinutes"`
	Location            *string                     `bson:"location,omitempty"`
	AssignedPlayerIDs   []string                    `bson:"assignedPlayerIds"`
	AssignedTeamIDs     []string                    `bson:"assignedTeamIds"`
	Intensity           *domain.Intensity           `bson:"intensity,omitempty"`
	Tags                []string                    `bson:"tags,omitempty"`
	Notes               *string                     `bson:"notes,omitempty"`
	StrengthContent     *domain.StrengthContent     `bson:"strengthContent,omitempty"`
	ConditioningContent *domain.ConditioningContent `bson:"conditioningContent,omitempty"`
	HybridContent       *domain.HybridContent       `bson:"hybridContent,omitempty"`
	AgilityContent      *domain.AgilityContent      `bson:"agilityContent,omitempty"`
	Version             int                         `bson:"version"`
	ArchiveKey          string                      `bson:"archiveKey,omitempty"`
	CreatedAt           time.Time                   `bson:"createdAt"`
	UpdatedAt           time.Time                   `bson:"updatedAt"`
}

// toWorkoutDocument flattens the content sum type into its tagged sub-document.
func toWorkoutDocument(w *domain.Workout) (*workoutDocument, error) {
	d := w.Draft
	if d == nil {
		return nil, errors.New("workout has no draft")
	}
	if err := d.CheckContent(); err != nil {
		return nil, err
	}
	doc := &workoutDocument{
		ID:                w.ID,
		CoachID:           w.CoachID,
		Name:              d.Name,
		DocumentType:      d.DocumentType,
		Date:              d.Date,
		DurationMinutes:   d.DurationMinutes,
		Location:          d.Location,
		AssignedPlayerIDs: d.AssignedPlayerIDs,
		AssignedTeamIDs:   d.AssignedTeamIDs,
		Intensity:         d.Intensity,
		Tags:              d.Tags,
		Notes:             d.Notes,
		Version:           w.Version,
		ArchiveKey:        w.ArchiveKey,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
	switch c := d.Content.(type) {
	case *domain.StrengthContent:
		doc.StrengthContent = c
	case *domain.ConditioningContent:
		doc.ConditioningContent = c
	case *domain.HybridContent:
		doc.HybridContent = c
	case *domain.AgilityContent:
		doc.AgilityContent = c
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrContentMismatch, c)
	}
	return doc, nil
}

// toWorkout picks the sub-document that matches documentType. A missing
// sub-document decodes as empty content of the right type.
func (doc *workoutDocument) toWorkout() (*domain.Workout, error) {
	if !doc.DocumentType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDocumentType, doc.DocumentType)
	}
	d := &domain.WorkoutDraft{
		Name:              doc.Name,
		DocumentType:      doc.DocumentType,
		Date:              domain.NormalizeDate(doc.Date),
		DurationMinutes:   doc.DurationMinutes,
		Location:          doc.Location,
		AssignedPlayerIDs: domain.NormalizeIDs(doc.AssignedPlayerIDs),
		AssignedTeamIDs:   domain.NormalizeIDs(doc.AssignedTeamIDs),
		Intensity:         doc.Intensity,
		Tags:              doc.Tags,
		Notes:             doc.Notes,
		Content:           domain.EmptyContent(doc.DocumentType),
	}
	switch doc.DocumentType {
	case domain.DocumentStrength:
		if doc.StrengthContent != nil {
			d.Content = doc.StrengthContent
		}
	case domain.DocumentConditioning:
		if doc.ConditioningContent != nil {
			d.Content = doc.ConditioningContent
		}
	case domain.DocumentHybrid:
		if doc.HybridContent != nil {
			d.Content = doc.HybridContent
		}
	case domain.DocumentAgility:
		if doc.AgilityContent != nil {
			d.Content = doc.AgilityContent
		}
	}
	return &domain.Workout{
		ID:         doc.ID,
		CoachID:    doc.CoachID,
		Draft:      d,
		Version:    doc.Version,
		ArchiveKey: doc.ArchiveKey,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires a coachId")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	workout.Version = 1

	doc, err := toWorkoutDocument(workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var doc workoutDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toWorkout()
}

// GetByCoachID lists a coach's workouts, newest date first.
func (r *mongoWorkoutRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	workouts := make([]domain.Workout, 0, len(docs))
	for i := range docs {
		w, err := docs[i].toWorkout()
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, nil
}

// Update overwrites the draft fields. The content sub-documents of the other
// variants are unset so the stored record keeps a single payload.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	doc, err := toWorkoutDocument(workout)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	set := bson.M{
		"name":              doc.Name,
		"date":              doc.Date,
		"durationMinutes":   doc.DurationMinutes,
		"location":          doc.Location,
		"assignedPlayerIds": doc.AssignedPlayerIDs,
		"assignedTeamIds":   doc.AssignedTeamIDs,
		"intensity":         doc.Intensity,
		"tags":              doc.Tags,
		"notes":             doc.Notes,
		"updatedAt":         now,
	}
	unset := bson.M{}
	contentKeys := map[domain.DocumentType]string{
		domain.DocumentStrength:     "strengthContent",
		domain.DocumentConditioning: "conditioningContent",
		domain.DocumentHybrid:       "hybridContent",
		domain.DocumentAgility:      "agilityContent",
	}
	for t, key := range contentKeys {
		if t == doc.DocumentType {
			set[key] = workout.Draft.Content
		} else {
			unset[key] = ""
		}
	}

	// documentType and coachId are part of the filter: neither may change on update.
	filter := bson.M{"_id": workout.ID, "coachId": workout.CoachID, "documentType": doc.DocumentType}
	update := bson.M{"$set": set, "$unset": unset, "$inc": bson.M{"version": 1}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"version": 1})
	var out struct {
		Version int `bson:"version"`
	}
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}
	workout.Version = out.Version
	workout.UpdatedAt = now
	return nil
}

// SetArchiveKey records where the newest archive of a workout lives.
func (r *mongoWorkoutRepository) SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"archiveKey": key}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// A coach's workout list, newest first
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			// Player calendar lookups
			Keys:    bson.D{{Key: "assignedPlayerIds", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedTeamIds", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
