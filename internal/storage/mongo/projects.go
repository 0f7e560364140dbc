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

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

type projectDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	UserID      primitive.ObjectID `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *projectDocument) model() *models.Project {
	return &models.Project{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Store) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	uid, err := objectID(userID)
	if err != nil {
		return []*models.Project{}, nil
	}

	cursor, err := db.Collection(projectsCollection).Find(
		ctx,
		bson.M{"userId": uid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find projects: %w", err)
	}

	var docs []projectDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}

	projects := make([]*models.Project, 0, len(docs))
	for i := range docs {
		projects = append(projects, docs[i].model())
	}
	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("found projects by user id")
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, userID, id string) (*models.Project, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}
	return s.findProject(ctx, db, userID, id)
}

func (s *Store) findProject(ctx context.Context, db *mongo.Database, userID, id string) (*models.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	var doc projectDocument
	err = db.Collection(projectsCollection).FindOne(
		ctx,
		bson.M{"_id": oid, "userId": uid},
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	uid, err := objectID(project.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", project.UserID)
	}

	now := time.Now()
	doc := projectDocument{
		ID:          primitive.NewObjectID(),
		Title:       project.Title,
		Description: project.Description,
		UserID:      uid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = db.Collection(projectsCollection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	*project = *doc.model()
	s.logger.Debug().
		Str("project_id", project.ID).
		Msg("inserted project")
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	oid, err := objectID(project.ID)
	if err != nil {
		return err
	}
	uid, err := objectID(project.UserID)
	if err != nil {
		return err
	}

	var doc projectDocument
	err = db.Collection(projectsCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "userId": uid},
		bson.M{"$set": bson.M{
			"title":       project.Title,
			"description": project.Description,
			"updatedAt":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	*project = *doc.model()
	s.logger.Debug().
		Str("project_id", project.ID).
		Msg("updated project")
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, userID, id string) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	return s.withTransaction(ctx, func(ctx context.Context) error {
		project, err := s.findProject(ctx, db, userID, id)
		if err != nil {
			return err
		}
		oid, _ := objectID(project.ID)
		uid, _ := objectID(project.UserID)

		res, err := db.Collection(tasksCollection).DeleteMany(ctx, bson.M{"projectId": oid})
		if err != nil {
			return fmt.Errorf("failed to delete tasks by project id: %w", err)
		}
		s.logger.Debug().
			Str("project_id", id).
			Int64("affected", res.DeletedCount).
			Msg("deleted tasks by project id")

		res, err = db.Collection(projectsCollection).DeleteOne(ctx, bson.M{"_id": oid, "userId": uid})
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if res.DeletedCount == 0 {
			return storage.ErrNotFound
		}

		s.logger.Debug().
			Str("project_id", id).
			Msg("deleted project")
		return nil
	})
}
