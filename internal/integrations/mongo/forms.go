package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
)

const defaultCollection = "forms"

// formDocument is one form; fields are stored in position order.
type formDocument struct {
	ID     string          `bson:"_id"`
	Title  string          `bson:"title,omitempty"`
	Fields []fieldDocument `bson:"fields"`
}

type fieldDocument struct {
	Title   string   `bson:"title"`
	Kind    string   `bson:"kind"`
	Choices []string `bson:"choices"`
}

// Forms is a form service over a MongoDB collection.
type Forms struct {
	client     *mongo.Client
	database   string
	collection string
	logger     *zap.Logger
}

// NewForms connects to the database named in the URI path. The collection
// comes from the "collection" query parameter, "forms" by default.
func NewForms(ctx context.Context, uri *url.URL, logger *zap.Logger) (*Forms, error) {
	clean, database, collection, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(clean))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		if derr := client.Disconnect(ctx); derr != nil {
			logger.Warn("MongoDB disconnect after failed ping", zap.Error(derr))
		}
		return nil, err
	}

	logger.Info("MongoDB forms connected",
		zap.String("database", database),
		zap.String("collection", collection))

	return &Forms{
		client:     client,
		database:   database,
		collection: collection,
		logger:     logger,
	}, nil
}

func parseURI(uri *url.URL) (string, string, string, error) {
	database := strings.TrimPrefix(uri.Path, "/")
	if database == "" {
		return "", "", "", fmt.Errorf("database must be specified in URL path")
	}

	query := uri.Query()
	collection := query.Get("collection")
	if collection == "" {
		collection = defaultCollection
	}
	query.Del("collection")

	clean := *uri
	clean.RawQuery = query.Encode()
	return clean.String(), database, collection, nil
}

func (f *Forms) coll() *mongo.Collection {
	return f.client.Database(f.database).Collection(f.collection)
}

func (f *Forms) Close(ctx context.Context) error {
	return f.client.Disconnect(ctx)
}

// PutForm inserts or replaces a whole form.
func (f *Forms) PutForm(ctx context.Context, id string, fields ...internal.FieldSpec) error {
	doc := formDocument{ID: id, Fields: make([]fieldDocument, len(fields))}
	for i, spec := range fields {
		choices := spec.Choices
		if choices == nil {
			choices = []string{}
		}
		doc.Fields[i] = fieldDocument{Title: spec.Title, Kind: spec.Kind, Choices: choices}
	}

	_, err := f.coll().ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (f *Forms) load(ctx context.Context, formID string) (*formDocument, error) {
	var doc formDocument
	err := f.coll().FindOne(ctx, bson.M{"_id": formID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %q", internal.ErrFormNotFound, formID)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (f *Forms) OpenForm(ctx context.Context, formID string) (internal.Form, error) {
	doc, err := f.load(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &Form{forms: f, doc: doc}, nil
}

type Form struct {
	forms *Forms
	doc   *formDocument
}

func (f *Form) ID() string {
	return f.doc.ID
}

func (f *Form) FieldAt(ctx context.Context, index int) (internal.Field, error) {
	if index < 0 || index >= len(f.doc.Fields) {
		return nil, fmt.Errorf("form %q: %w: index %d of %d", f.doc.ID, internal.ErrFieldNotFound, index, len(f.doc.Fields))
	}
	if kind := f.doc.Fields[index].Kind; kind != internal.FieldKindList {
		return nil, fmt.Errorf("form %q, field %d (%s): %w", f.doc.ID, index, kind, internal.ErrNotChoiceField)
	}
	return &Field{forms: f.forms, formID: f.doc.ID, position: index}, nil
}

type Field struct {
	forms    *Forms
	formID   string
	position int
}

func (f *Field) Choices(ctx context.Context) ([]string, error) {
	doc, err := f.forms.load(ctx, f.formID)
	if err != nil {
		return nil, err
	}
	if f.position >= len(doc.Fields) {
		return nil, fmt.Errorf("form %q: %w: index %d", f.formID, internal.ErrFieldNotFound, f.position)
	}
	return doc.Fields[f.position].Choices, nil
}

func (f *Field) SetChoices(ctx context.Context, choices []string) error {
	if choices == nil {
		choices = []string{}
	}

	res, err := f.forms.coll().UpdateOne(ctx,
		bson.M{"_id": f.formID},
		bson.M{"$set": bson.M{fmt.Sprintf("fields.%d.choices", f.position): choices}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %q", internal.ErrFormNotFound, f.formID)
	}

	f.forms.logger.Debug("choices stored",
		zap.String("form_id", f.formID),
		zap.Int("position", f.position),
		zap.Int("choices", len(choices)),
	)
	return nil
}

var (
	_ internal.FormService = (*Forms)(nil)
	_ internal.Form        = (*Form)(nil)
	_ internal.Field       = (*Field)(nil)
)
