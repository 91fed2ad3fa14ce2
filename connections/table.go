package connections

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
)

const (
	// KeyAttribute is the table's partition key.
	KeyAttribute = "connectionId"
	// ExpireAttribute holds the epoch second after which a row is stale. It
	// is meant to be the table's dynamodb ttl attribute.
	ExpireAttribute = "expire"

	// DefaultTTL matches the two hour lifetime of an api gateway websocket.
	DefaultTTL = 7200
	// DefaultRetryWait is the pause, in milliseconds, between retries of a
	// transient failure.
	DefaultRetryWait = 500

	maxAttempts = 12
)

// Table stores the ids of open websocket connections in dynamodb. Each row
// expires TTL seconds after it was written so connections that never
// disconnected cleanly age out.
//
// RetryWait (milliseconds) is used to pace retries of transient failures.
type Table struct {
	Region    string
	Table     string
	TTL       int64
	RetryWait int64

	mu       sync.Mutex
	provider client.ConfigProvider
	client   dynamodbiface.DynamoDBAPI

	nowFunc func() time.Time
	svcFunc func(client.ConfigProvider) dynamodbiface.DynamoDBAPI
}

// NewTable returns a connection table in the given region.
func NewTable(region string, table string, ttl int64, retry int64) *Table {
	t := &Table{Region: region, Table: table, TTL: ttl, RetryWait: retry}
	t.defaults()
	return t
}

// WithSession makes the table reuse an existing aws session instead of
// creating its own on first use.
func (t *Table) WithSession(p client.ConfigProvider) *Table {
	t.provider = p
	return t
}

func (t *Table) defaults() {
	if t.TTL == 0 {
		t.TTL = DefaultTTL
	}

	if t.RetryWait == 0 {
		t.RetryWait = DefaultRetryWait
	}
}

// now is used internally to assist stubs on time.Now() for testing
func (t *Table) now() time.Time {
	if t.nowFunc != nil {
		return t.nowFunc()
	}

	return time.Now()
}

// svc lazily builds the dynamodb client; svcFunc stubs it in tests.
func (t *Table) svc() (dynamodbiface.DynamoDBAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}

	if t.provider == nil {
		s, err := session.NewSession(&aws.Config{Region: aws.String(t.Region)})
		if err != nil {
			return nil, errors.Wrap(err, "failed getting session")
		}
		t.provider = s
	}

	if t.svcFunc != nil {
		t.client = t.svcFunc(t.provider)
	} else {
		t.client = dynamodb.New(t.provider)
	}

	return t.client, nil
}

// expires returns the current time + ttl in Epoch format as a string
func (t *Table) expires() string {
	d := time.Duration(t.TTL) * time.Second
	return strconv.FormatInt(t.now().Add(d).Unix(), 10)
}

func (t *Table) key(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		KeyAttribute: {S: aws.String(id)},
	}
}

// putItemInput constructs the row written when a socket connects. A
// reconnect under the same id overwrites the row and refreshes its expiry.
func (t *Table) putItemInput(id string) *dynamodb.PutItemInput {
	return &dynamodb.PutItemInput{
		Item: map[string]*dynamodb.AttributeValue{
			KeyAttribute:    {S: aws.String(id)},
			ExpireAttribute: {N: aws.String(t.expires())},
		},
		TableName: aws.String(t.Table),
	}
}

func (t *Table) deleteItemInput(id string) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		Key:       t.key(id),
		TableName: aws.String(t.Table),
	}
}

func (t *Table) getItemInput(id string) *dynamodb.GetItemInput {
	return &dynamodb.GetItemInput{
		Key:            t.key(id),
		TableName:      aws.String(t.Table),
		ConsistentRead: aws.Bool(true),
	}
}

// retry runs fn until it succeeds, fails with a non transient error, or the
// attempts run out.
func (t *Table) retry(ctx context.Context, fn func() error) error {
	var err error

	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = fn()
		if err == nil || !strings.Contains(err.Error(), "connection reset by peer") {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), err.Error())
		case <-time.After(time.Duration(t.RetryWait) * time.Millisecond):
		}
	}

	return err
}

// Put records id as an open connection.
func (t *Table) Put(ctx context.Context, id string) error {
	svc, err := t.svc()
	if err != nil {
		return err
	}

	input := t.putItemInput(id)
	err = t.retry(ctx, func() error {
		_, err := svc.PutItemWithContext(ctx, input)
		return err
	})

	return errors.Wrapf(err, "failed put %v to %v", id, t.Table)
}

// Delete removes id. Deleting an unknown id is not an error.
func (t *Table) Delete(ctx context.Context, id string) error {
	svc, err := t.svc()
	if err != nil {
		return err
	}

	input := t.deleteItemInput(id)
	err = t.retry(ctx, func() error {
		_, err := svc.DeleteItemWithContext(ctx, input)
		return err
	})

	return errors.Wrapf(err, "failed delete %v from %v", id, t.Table)
}

// Exists reports whether id has an unexpired row.
func (t *Table) Exists(ctx context.Context, id string) (bool, error) {
	svc, err := t.svc()
	if err != nil {
		return false, err
	}

	var output *dynamodb.GetItemOutput
	input := t.getItemInput(id)
	err = t.retry(ctx, func() error {
		var err error
		output, err = svc.GetItemWithContext(ctx, input)
		return err
	})

	if err != nil {
		return false, errors.Wrapf(err, "failed get %v from %v", id, t.Table)
	}

	if output == nil || len(output.Item) == 0 {
		return false, nil
	}

	expire, ok := output.Item[ExpireAttribute]
	if !ok || expire.N == nil {
		return true, nil
	}

	epoch, err := strconv.ParseInt(*expire.N, 10, 64)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s for %v", ExpireAttribute, id)
	}

	return t.now().Unix() <= epoch, nil
}
