package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver abstracts the Cypher endpoint so repositories can be unit
// tested against a mock.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// BoltDriver talks to a Neo4j- or Memgraph-compatible server over bolt.
type BoltDriver struct {
	Driver neo4j.DriverWithContext
}

func NewBoltDriver(uri, username, password string) (*BoltDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	slog.Info("connected to graph store", "uri", uri)
	return &BoltDriver{Driver: driver}, nil
}

func (d *BoltDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *BoltDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *BoltDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :StoryAnalysis(story_id);",
		"CREATE INDEX ON :Relation(pair_key);",
		"CREATE INDEX ON :Relation(id);",
		"CREATE INDEX ON :Relation(requester_id);",
		"CREATE INDEX ON :Relation(recipient_id);",
		"CREATE INDEX ON :Story(id);",
		"CREATE INDEX ON :Circle(id);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Index may already exist; keep going.
			slog.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
