package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catalog-hub-service/internal/models"
)

// ImportLogSink writes one audit document per import run to MongoDB. A nil
// sink is valid and drops everything, so callers never have to branch on
// whether auditing is configured.
type ImportLogSink struct {
	collection *mongo.Collection
	logger     *logrus.Entry
}

type importLogDocument struct {
	ImportID          string     `bson:"importId"`
	ImportType        string     `bson:"importType"`
	StartTime         time.Time  `bson:"startTime"`
	EndTime           *time.Time `bson:"endTime,omitempty"`
	Status            string     `bson:"status"`
	ItemsProcessed    int        `bson:"itemsProcessed"`
	Created           int        `bson:"created"`
	Updated           int        `bson:"updated"`
	Failed            int        `bson:"failed"`
	ErrorMessages     []string   `bson:"errorMessages"`
	DurationInSeconds float64    `bson:"durationInSeconds"`
	InitiatedBy       string     `bson:"initiatedBy,omitempty"`
}

// NewImportLogSink connects to MongoDB and returns a sink backed by the
// import_logs collection of the given database.
func NewImportLogSink(ctx context.Context, uri, database string, logger *logrus.Logger) (*ImportLogSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &ImportLogSink{
		collection: client.Database(database).Collection("import_logs"),
		logger:     logger.WithField("component", "import_log_sink"),
	}, nil
}

// Record writes the audit document for a completed run. Failures are logged
// and swallowed, an unreachable audit store must not fail an import.
func (s *ImportLogSink) Record(ctx context.Context, run *models.ImportRun) {
	if s == nil || s.collection == nil {
		return
	}

	status := "Failed"
	if run.Success {
		status = "Completed"
	}

	doc := importLogDocument{
		ImportID:       run.ID.String(),
		ImportType:     string(run.Kind),
		StartTime:      run.StartedAt,
		EndTime:        run.CompletedAt,
		Status:         status,
		ItemsProcessed: run.CreatedCount + run.UpdatedCount + run.FailedCount,
		Created:        run.CreatedCount,
		Updated:        run.UpdatedCount,
		Failed:         run.FailedCount,
		ErrorMessages:  run.Errors,
		InitiatedBy:    run.InitiatedBy,
	}
	if run.CompletedAt != nil {
		doc.DurationInSeconds = run.CompletedAt.Sub(run.StartedAt).Seconds()
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := s.collection.InsertOne(writeCtx, doc); err != nil {
		s.logger.WithError(err).Warn("Failed to write import audit log")
	}
}
