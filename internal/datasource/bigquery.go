package datasource

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// bigQueryConnector is the one Connector implementation not built on
// database/sql: BigQuery's Go SDK exposes its own client and row
// iterator, so Query drives that instead of sqlConnector's scan loop.
type bigQueryConnector struct {
	client *bigquery.Client
}

func newBigQueryConnector(ctx context.Context, cfg Config) (Connector, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: new client: %w", err)
	}
	return &bigQueryConnector{client: client}, nil
}

func (c *bigQueryConnector) Query(ctx context.Context, sql string) (*QueryResult, error) {
	q := c.client.Query(sql)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery: query: %w", err)
	}

	result := &QueryResult{}
	for _, f := range it.Schema {
		result.Columns = append(result.Columns, f.Name)
	}

	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery: row iteration: %w", err)
		}
		row := make(Row, len(values))
		for i, v := range values {
			row[i] = normalize(v)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func (c *bigQueryConnector) Ping(ctx context.Context) error {
	_, err := c.client.Query("SELECT 1").Read(ctx)
	return err
}

func (c *bigQueryConnector) Close() error { return c.client.Close() }

func (c *bigQueryConnector) Type() Type { return TypeBigQuery }
