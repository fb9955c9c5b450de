package mongo

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/repository"
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	playerCollectionName = "players"
	teamCollectionName   = "teams"
)

// RosterRepository serves both players and teams. The roster is
// maintained elsewhere; this side only reads it.
type RosterRepository struct {
	players *mongo.Collection
	teams   *mongo.Collection
}

// NewMongoRosterRepository returns a repository satisfying both
// repository.PlayerRepository and repository.TeamRepository.
func NewMongoRosterRepository(db *mongo.Database) *RosterRepository {
	return &RosterRepository{
		players: db.Collection(playerCollectionName),
		teams:   db.Collection(teamCollectionName),
	}
}

var (
	_ repository.PlayerRepository = (*RosterRepository)(nil)
	_ repository.TeamRepository   = (*RosterRepository)(nil)
)

// PlayersByIDs loads the given players sorted by id. Unknown ids are skipped.
func (r *RosterRepository) PlayersByIDs(ctx context.Context, ids []string) ([]domain.Player, error) {
	players := []domain.Player{}
	if len(ids) == 0 {
		return players, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.players.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// TeamsByIDs loads the given teams with their current members.
func (r *RosterRepository) TeamsByIDs(ctx context.Context, ids []string) ([]domain.Team, error) {
	teams := []domain.Team{}
	if len(ids) == 0 {
		return teams, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.teams.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// EnsureRosterIndexes indexes team membership on the players collection.
func EnsureRosterIndexes(ctx context.Context, db *mongo.Database) {
	collection := db.Collection(playerCollectionName)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "teamIds", Value: 1}},
		Options: options.Index(),
	})
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
