package mongo

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const medicalCollectionName = "medical_reports"

type medicalDocument struct {
	domain.MedicalRecord `bson:",inline"`
	UpdatedAt            time.Time `bson:"updatedAt"`
}

// mongoMedicalRepository implements repository.MedicalRepository with one
// document per player.
type mongoMedicalRepository struct {
	collection *mongo.Collection
}

func NewMongoMedicalRepository(db *mongo.Database) repository.MedicalRepository {
	return &mongoMedicalRepository{
		collection: db.Collection(medicalCollectionName),
	}
}

// Lookup returns the reports for the given players. Players without a
// report are simply absent from the result.
func (r *mongoMedicalRepository) Lookup(ctx context.Context, playerIDs []string) ([]domain.MedicalRecord, error) {
	records := []domain.MedicalRecord{}
	if len(playerIDs) == 0 {
		return records, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "playerId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"playerId": bson.M{"$in": playerIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []medicalDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		records = append(records, doc.MedicalRecord)
	}
	return records, nil
}

// Upsert replaces the player's report.
func (r *mongoMedicalRepository) Upsert(ctx context.Context, record domain.MedicalRecord) error {
	if record.PlayerID == "" {
		return errors.New("medical record requires a playerId")
	}
	doc := medicalDocument{MedicalRecord: record, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"playerId": record.PlayerID}, doc, opts)
	return err
}

// EnsureMedicalIndexes keeps one report per player.
func EnsureMedicalIndexes(ctx context.Context, collection *mongo.Collection) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "playerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
