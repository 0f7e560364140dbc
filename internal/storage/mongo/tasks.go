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

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	DueDate     time.Time          `bson:"dueDate"`
	ProjectID   primitive.ObjectID `bson:"projectId"`
	UserID      primitive.ObjectID `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) model(titles map[primitive.ObjectID]string) *models.Task {
	task := &models.Task{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      models.TaskStatus(d.Status),
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if title, ok := titles[d.ProjectID]; ok {
		task.Project = models.ProjectSummary{
			ID:    d.ProjectID.Hex(),
			Title: title,
		}
	} else {
		task.Project = models.ProjectID(d.ProjectID.Hex())
	}
	return task
}

func (s *Store) ListTasks(ctx context.Context, userID string, filter storage.TaskFilter, sort storage.TaskSort) ([]*models.Task, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	uid, err := objectID(userID)
	if err != nil {
		return []*models.Task{}, nil
	}

	query := bson.M{"userId": uid}
	if filter.ProjectID != "" {
		pid, err := objectID(filter.ProjectID)
		if err != nil {
			return []*models.Task{}, nil
		}
		query["projectId"] = pid
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	sort = storage.NormalizeTaskSort(sort)
	direction := 1
	if sort.Descending {
		direction = -1
	}

	cursor, err := db.Collection(tasksCollection).Find(
		ctx,
		query,
		options.Find().SetSort(bson.D{{Key: sort.Field, Value: direction}, {Key: "_id", Value: direction}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	var docs []taskDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	titles, err := s.projectTitles(ctx, db, uid, docs...)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].model(titles))
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("found tasks")
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	var doc taskDocument
	err = db.Collection(tasksCollection).FindOne(
		ctx,
		bson.M{"_id": oid, "userId": uid},
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	titles, err := s.projectTitles(ctx, db, uid, doc)
	if err != nil {
		return nil, err
	}
	return doc.model(titles), nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	return s.withTransaction(ctx, func(ctx context.Context) error {
		project, err := s.findProject(ctx, db, task.UserID, task.ProjectID())
		if err != nil {
			return err
		}
		pid, _ := objectID(project.ID)
		uid, _ := objectID(project.UserID)

		now := time.Now()
		doc := taskDocument{
			ID:          primitive.NewObjectID(),
			Title:       task.Title,
			Description: task.Description,
			Status:      string(task.Status),
			DueDate:     task.DueDate,
			ProjectID:   pid,
			UserID:      uid,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		_, err = db.Collection(tasksCollection).InsertOne(ctx, doc)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}

		*task = *doc.model(map[primitive.ObjectID]string{pid: project.Title})
		s.logger.Debug().
			Str("task_id", task.ID).
			Msg("inserted task")
		return nil
	})
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	oid, err := objectID(task.ID)
	if err != nil {
		return err
	}
	uid, err := objectID(task.UserID)
	if err != nil {
		return err
	}
	pid, err := objectID(task.ProjectID())
	if err != nil {
		return err
	}

	var doc taskDocument
	err = db.Collection(tasksCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "userId": uid},
		bson.M{"$set": bson.M{
			"title":       task.Title,
			"description": task.Description,
			"status":      string(task.Status),
			"dueDate":     task.DueDate,
			"projectId":   pid,
			"updatedAt":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	titles, err := s.projectTitles(ctx, db, uid, doc)
	if err != nil {
		return err
	}

	*task = *doc.model(titles)
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	oid, err := objectID(id)
	if err != nil {
		return err
	}
	uid, err := objectID(userID)
	if err != nil {
		return err
	}

	res, err := db.Collection(tasksCollection).DeleteOne(ctx, bson.M{"_id": oid, "userId": uid})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

// projectTitles loads the titles of the caller-owned projects the
// given tasks reference, keyed by project id.
func (s *Store) projectTitles(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, docs ...taskDocument) (map[primitive.ObjectID]string, error) {
	titles := make(map[primitive.ObjectID]string)
	if len(docs) == 0 {
		return titles, nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(docs))
	ids := make([]primitive.ObjectID, 0, len(docs))
	for i := range docs {
		if _, ok := seen[docs[i].ProjectID]; ok {
			continue
		}
		seen[docs[i].ProjectID] = struct{}{}
		ids = append(ids, docs[i].ProjectID)
	}

	cursor, err := db.Collection(projectsCollection).Find(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}, "userId": userID},
		options.Find().SetProjection(bson.M{"title": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find project titles: %w", err)
	}

	var projects []projectDocument
	err = cursor.All(ctx, &projects)
	if err != nil {
		return nil, fmt.Errorf("failed to decode project titles: %w", err)
	}

	for i := range projects {
		titles[projects[i].ID] = projects[i].Title
	}
	return titles, nil
}
